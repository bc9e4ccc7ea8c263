// Copyright 2026 The go-tze Authors
// This file is part of the go-tze library.
//
// The go-tze library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-tze library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-tze library. If not, see <http://www.gnu.org/licenses/>.

package amount

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		in      int64
		wantErr error
	}{
		{0, nil},
		{1, nil},
		{MaxMoney, nil},
		{-1, ErrNegative},
		{math.MinInt64, ErrNegative},
		{MaxMoney + 1, ErrOutOfRange},
		{math.MaxInt64, ErrOutOfRange},
	}
	for _, tt := range tests {
		a, err := New(tt.in)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, "input %d", tt.in)
			continue
		}
		require.NoError(t, err, "input %d", tt.in)
		assert.Equal(t, tt.in, a.Int64())
	}
}

func TestSum(t *testing.T) {
	total, err := Sum(MustNew(1), MustNew(2), MustNew(3))
	require.NoError(t, err)
	assert.Equal(t, int64(6), total.Int64())

	_, err = Sum(MustNew(MaxMoney), MustNew(1))
	assert.True(t, errors.Is(err, ErrOutOfRange))

	zero, err := Sum()
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

func TestJSON(t *testing.T) {
	enc, err := json.Marshal(MustNew(12345))
	require.NoError(t, err)
	assert.Equal(t, `"12345"`, string(enc))

	var a Amount
	require.NoError(t, json.Unmarshal(enc, &a))
	assert.Equal(t, int64(12345), a.Int64())

	assert.ErrorIs(t, json.Unmarshal([]byte(`"-5"`), &a), ErrNegative)
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &a))
}

func TestMustNewPanics(t *testing.T) {
	assert.Panics(t, func() { MustNew(-1) })
}
