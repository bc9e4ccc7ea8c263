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

// Package tze dispatches transparent extension verification to registered
// verifiers, keyed by extension identifier and mode.
package tze

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/tzelabs/go-tze/core/types"
	"github.com/tzelabs/go-tze/log"
)

var (
	ErrUnknownExtension  = errors.New("tze: unknown extension")
	ErrUnsupportedMode   = errors.New("tze: unsupported mode")
	ErrDuplicateVerifier = errors.New("tze: verifier already registered")
	ErrNoModes           = errors.New("tze: verifier registered without modes")
)

// Verifier checks that witness satisfies precondition under the given
// extension and mode. The caller has already checked that the pair is
// registered.
type Verifier interface {
	Verify(id types.ExtensionID, mode types.Mode, precondition, witness *types.TzeData) error
}

// VerifierFunc adapts an ordinary function to the Verifier interface.
type VerifierFunc func(id types.ExtensionID, mode types.Mode, precondition, witness *types.TzeData) error

// Verify calls f.
func (f VerifierFunc) Verify(id types.ExtensionID, mode types.Mode, precondition, witness *types.TzeData) error {
	return f(id, mode, precondition, witness)
}

// VerifyError is returned when a registered verifier rejects a witness.
type VerifyError struct {
	ID   types.ExtensionID
	Mode types.Mode
	Err  error
}

func (err *VerifyError) Error() string {
	return fmt.Sprintf("tze: extension %v mode %d: %v", err.ID, err.Mode, err.Err)
}

func (err *VerifyError) Unwrap() error { return err.Err }

type extension struct {
	verifier Verifier
	modes    mapset.Set[types.Mode]
}

// Registry maps extension identifiers to verifiers. It is safe for
// concurrent use.
type Registry struct {
	mu   sync.RWMutex
	exts map[types.ExtensionID]*extension
	log  log.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		exts: make(map[types.ExtensionID]*extension),
		log:  log.New("module", "tze"),
	}
}

// Register installs v for extension id, accepting the listed modes.
func (r *Registry) Register(id types.ExtensionID, v Verifier, modes ...types.Mode) error {
	if len(modes) == 0 {
		return fmt.Errorf("%w: %v", ErrNoModes, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.exts[id]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateVerifier, id)
	}
	r.exts[id] = &extension{verifier: v, modes: mapset.NewThreadUnsafeSet(modes...)}
	r.log.Debug("Registered TZE verifier", "extension", id, "modes", len(modes))
	return nil
}

// Unregister removes the verifier for id, if any.
func (r *Registry) Unregister(id types.ExtensionID) {
	r.mu.Lock()
	delete(r.exts, id)
	r.mu.Unlock()
}

// Supports reports whether a verifier is registered for the pair.
func (r *Registry) Supports(id types.ExtensionID, mode types.Mode) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ext, ok := r.exts[id]
	return ok && ext.modes.Contains(mode)
}

// Modes returns the sorted modes registered for id, or nil.
func (r *Registry) Modes(id types.ExtensionID) []types.Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ext, ok := r.exts[id]
	if !ok {
		return nil
	}
	modes := ext.modes.ToSlice()
	slices.Sort(modes)
	return modes
}

// Extensions returns the sorted identifiers of all registered extensions.
func (r *Registry) Extensions() []types.ExtensionID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]types.ExtensionID, 0, len(r.exts))
	for id := range r.exts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Verify runs the verifier registered for (id, mode).
func (r *Registry) Verify(id types.ExtensionID, mode types.Mode, precondition, witness *types.TzeData) error {
	r.mu.RLock()
	ext, ok := r.exts[id]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownExtension, id)
	}
	if !ext.modes.Contains(mode) {
		return fmt.Errorf("%w: extension %v mode %d", ErrUnsupportedMode, id, mode)
	}
	if err := ext.verifier.Verify(id, mode, precondition, witness); err != nil {
		return &VerifyError{ID: id, Mode: mode, Err: err}
	}
	r.log.Trace("Verified TZE witness", "extension", id, "mode", mode)
	return nil
}

// VerifyInput checks that in's witness satisfies the precondition of the
// output it spends. Dispatch uses the precondition's extension and mode.
func (r *Registry) VerifyInput(out *types.TzeOut, in *types.TzeIn) error {
	pre := &out.Precondition
	return r.Verify(pre.ExtensionID, pre.Mode, pre, &in.Witness)
}

// VerifyBundle checks every input of bundle against the output it spends,
// as returned by lookup.
func (r *Registry) VerifyBundle(bundle *types.TzeBundle, lookup func(types.TzeOutPoint) (*types.TzeOut, error)) error {
	for i := range bundle.Inputs {
		in := &bundle.Inputs[i]
		out, err := lookup(in.PrevOut)
		if err != nil {
			return fmt.Errorf("input %d: prevout %v: %w", i, in.PrevOut, err)
		}
		if err := r.VerifyInput(out, in); err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
	}
	return nil
}
