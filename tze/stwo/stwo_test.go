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

package stwo

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tzelabs/go-tze/core/types"
	"github.com/tzelabs/go-tze/log"
	"github.com/tzelabs/go-tze/tze"
)

type recordingBackend struct {
	proof        []byte
	withPedersen bool
	err          error
}

func (b *recordingBackend) VerifyCairoProof(proof []byte, withPedersen bool) error {
	b.proof, b.withPedersen = proof, withPedersen
	return b.err
}

func data(mode types.Mode, payload string) *types.TzeData {
	return &types.TzeData{ExtensionID: ExtensionID, Mode: mode, Payload: []byte(payload)}
}

func TestExtractProof(t *testing.T) {
	tests := []struct {
		pre, wit     string
		withPedersen bool
		proof        string
		err          error
	}{
		{pre: "\x01", wit: "{}", withPedersen: true, proof: "{}"},
		{pre: "\x00", wit: "{}", withPedersen: false, proof: "{}"},
		{pre: "", wit: "\x01{}", withPedersen: true, proof: "{}"},
		{pre: "", wit: "\x00", withPedersen: false, proof: ""},
		{pre: "", wit: "", err: ErrMissingProof},
	}
	for i, test := range tests {
		flag, proof, err := ExtractProof(data(0, test.pre), data(0, test.wit))
		if test.err != nil {
			assert.ErrorIs(t, err, test.err, "test %d", i)
			continue
		}
		require.NoError(t, err, "test %d", i)
		assert.Equal(t, test.withPedersen, flag, "test %d", i)
		assert.Equal(t, test.proof, string(proof), "test %d", i)
	}
}

func TestVerifier(t *testing.T) {
	backend := new(recordingBackend)
	r := tze.NewRegistry()
	require.NoError(t, Register(r, backend))
	assert.True(t, r.Supports(ExtensionID, 0))
	assert.False(t, r.Supports(ExtensionID, 1))

	require.NoError(t, r.Verify(ExtensionID, 0, data(0, "\x01"), data(0, `{"claim":[1,2]}`)))
	assert.Equal(t, `{"claim":[1,2]}`, string(backend.proof))
	assert.True(t, backend.withPedersen)

	backend.err = errors.New("fri check failed")
	err := r.Verify(ExtensionID, 0, data(0, ""), data(0, "\x00{}"))
	var verr *tze.VerifyError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, backend.err)
	assert.False(t, backend.withPedersen)
}

func TestVerifierRejects(t *testing.T) {
	v := NewVerifier(new(recordingBackend))

	err := v.Verify(ExtensionID, 0, data(1, ""), data(0, "\x00{}"))
	assert.ErrorIs(t, err, tze.ErrUnsupportedMode)
	assert.EqualError(t, err, "stwo: unsupported mode 0")

	assert.ErrorIs(t, v.Verify(ExtensionID, 0, data(0, ""), data(0, "")), ErrMissingProof)
	assert.ErrorIs(t, v.Verify(ExtensionID, 0, data(0, "\x01"), data(0, "\xff\xfe")), ErrInvalidEncoding)
	assert.ErrorIs(t, v.Verify(ExtensionID, 0, data(0, "\x01"), data(0, "{")), ErrInvalidProof)
}

func TestMismatchedIdsLoggedOnce(t *testing.T) {
	defer log.SetDefault(log.Root())
	var buf bytes.Buffer
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(&buf, log.LevelDebug, false)))

	r := tze.NewRegistry()
	require.NoError(t, Register(r, new(recordingBackend)))
	wit := data(0, "\x01{}")
	wit.ExtensionID = 8
	require.NoError(t, r.Verify(ExtensionID, 0, data(0, ""), wit))

	assert.Equal(t, 1, strings.Count(buf.String(), "mismatched extension ids"))
}
