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

// Package stwo implements the envelope of the STWO Cairo transparent
// extension: extension and mode checks and proof extraction. Checking the
// STARK proof itself is delegated to a ProofVerifier.
package stwo

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/tzelabs/go-tze/core/types"
	"github.com/tzelabs/go-tze/log"
	"github.com/tzelabs/go-tze/tze"
)

// ExtensionID is the provisional identifier of the extension ("STWO" in ASCII).
const ExtensionID types.ExtensionID = 0x5354574F

// SupportedModes lists the modes accepted by the verifier.
var SupportedModes = []types.Mode{0}

var (
	ErrMissingProof    = errors.New("stwo: witness payload must contain at least one byte")
	ErrInvalidEncoding = errors.New("stwo: proof must be valid UTF-8")
	ErrInvalidProof    = errors.New("stwo: proof is not valid JSON")
)

// UnsupportedModeError reports a mode outside SupportedModes.
type UnsupportedModeError struct {
	Mode types.Mode
}

func (err *UnsupportedModeError) Error() string {
	return fmt.Sprintf("stwo: unsupported mode %d", err.Mode)
}

// Is makes UnsupportedModeError match tze.ErrUnsupportedMode.
func (err *UnsupportedModeError) Is(target error) bool {
	return target == tze.ErrUnsupportedMode
}

// ProofVerifier checks a JSON encoded Cairo proof.
type ProofVerifier interface {
	VerifyCairoProof(proof []byte, withPedersen bool) error
}

// Verifier is a tze.Verifier for the STWO extension.
type Verifier struct {
	backend ProofVerifier
}

// NewVerifier creates a verifier that hands extracted proofs to backend.
func NewVerifier(backend ProofVerifier) *Verifier {
	return &Verifier{backend: backend}
}

// Register installs a verifier backed by backend in r.
func Register(r *tze.Registry, backend ProofVerifier) error {
	return r.Register(ExtensionID, NewVerifier(backend), SupportedModes...)
}

// Verify implements tze.Verifier.
func (v *Verifier) Verify(id types.ExtensionID, mode types.Mode, precondition, witness *types.TzeData) error {
	if id != ExtensionID || precondition.ExtensionID != ExtensionID || witness.ExtensionID != ExtensionID {
		log.Debug("STWO verifier received mismatched extension ids", "request", id,
			"precondition", precondition.ExtensionID, "witness", witness.ExtensionID)
	}
	for _, m := range []types.Mode{mode, precondition.Mode, witness.Mode} {
		if !slices.Contains(SupportedModes, m) {
			return &UnsupportedModeError{Mode: mode}
		}
	}
	withPedersen, proof, err := ExtractProof(precondition, witness)
	if err != nil {
		return err
	}
	if !utf8.Valid(proof) {
		return ErrInvalidEncoding
	}
	if !json.Valid(proof) {
		return ErrInvalidProof
	}
	return v.backend.VerifyCairoProof(proof, withPedersen)
}

// ExtractProof locates the Pedersen flag and the proof bytes. A non-empty
// precondition payload carries the flag in its first byte and the whole
// witness payload is the proof. Otherwise the witness starts with the flag.
func ExtractProof(precondition, witness *types.TzeData) (withPedersen bool, proof []byte, err error) {
	if len(precondition.Payload) > 0 {
		return precondition.Payload[0] != 0, witness.Payload, nil
	}
	if len(witness.Payload) > 0 {
		return witness.Payload[0] != 0, witness.Payload[1:], nil
	}
	return false, nil, ErrMissingProof
}
