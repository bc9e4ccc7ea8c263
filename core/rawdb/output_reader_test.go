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

package rawdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tzelabs/go-tze/common"
	"github.com/tzelabs/go-tze/core/types"
	"github.com/tzelabs/go-tze/tzedb"
	"github.com/tzelabs/go-tze/tzedb/memorydb"
)

func TestOutputReader(t *testing.T) {
	db := memorydb.New()
	hash := common.Hash{0x0c}
	bundle := newTestBundle(4)
	require.NoError(t, WriteTzeOutputs(db, hash, bundle.Outputs))

	r := NewOutputReader(db, 1<<20)
	op := types.NewTzeOutPoint(hash, 1)
	for i := 0; i < 3; i++ {
		out, err := r.Lookup(op)
		require.NoError(t, err)
		assert.Equal(t, &bundle.Outputs[1], out)
	}
	hits, misses := r.Stats()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(1), misses)

	// Served from the cache until forgotten.
	require.NoError(t, DeleteTzeOutput(db, op))
	_, err := r.Lookup(op)
	require.NoError(t, err)
	r.Forget(op)
	_, err = r.Lookup(op)
	assert.ErrorIs(t, err, tzedb.ErrNotFound)

	_, err = r.Lookup(types.NewTzeOutPoint(common.Hash{0x0d}, 0))
	assert.ErrorIs(t, err, tzedb.ErrNotFound)
}

func TestOutputReaderUncached(t *testing.T) {
	db := memorydb.New()
	hash := common.Hash{0x0e}
	op := types.NewTzeOutPoint(hash, 0)
	require.NoError(t, db.Put(tzeOutputKey(op), []byte{0xff}))

	r := NewOutputReader(db, 0)
	_, err := r.Lookup(op)
	assert.ErrorIs(t, err, ErrCorruptEntry)
	_, err = r.Lookup(op)
	assert.ErrorIs(t, err, ErrCorruptEntry)
	hits, misses := r.Stats()
	assert.Zero(t, hits)
	assert.Equal(t, uint64(2), misses)
	r.Reset()
}
