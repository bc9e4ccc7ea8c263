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

// Package types contains the Transparent Zcash Extension data types and their
// consensus wire encodings.
package types

import (
	"fmt"
	"io"

	"github.com/tzelabs/go-tze/common"
	"github.com/tzelabs/go-tze/common/amount"
	"github.com/tzelabs/go-tze/params"
	"github.com/tzelabs/go-tze/wire"
)

// Minimum serialized sizes, used to derive preallocation bounds.
const (
	// MinTzeDataSize is the size of a TzeData with a one-byte extension id, a
	// one-byte mode and an empty payload.
	MinTzeDataSize uint64 = 1 + 1 + 1

	// MinTzeInputSize is a 32-byte hash, a 4-byte index and a minimal witness.
	MinTzeInputSize = common.HashLength + 4 + MinTzeDataSize

	// MinTzeOutputSize is an 8-byte value and a minimal precondition.
	MinTzeOutputSize = 8 + MinTzeDataSize
)

// ExtensionID identifies a registered extension type.
type ExtensionID uint64

func (id ExtensionID) String() string { return fmt.Sprintf("%#x", uint64(id)) }

// Mode selects one of the verification programs an extension offers.
type Mode uint64

// TzeData is the extension-tagged payload carried by both preconditions and
// witnesses. The payload is opaque to this package.
type TzeData struct {
	ExtensionID ExtensionID
	Mode        Mode
	Payload     []byte
}

// EncodeWire implements wire.Encoder.
func (d *TzeData) EncodeWire(w io.Writer) error {
	if err := wire.WriteCompactSize(w, uint64(d.ExtensionID)); err != nil {
		return err
	}
	if err := wire.WriteCompactSize(w, uint64(d.Mode)); err != nil {
		return err
	}
	return wire.WriteBytes(w, d.Payload)
}

// DecodeWire implements wire.Decoder.
func (d *TzeData) DecodeWire(s *wire.Stream) error {
	id, err := s.CompactSize()
	if err != nil {
		return wire.WrapError(err, ".ExtensionID")
	}
	mode, err := s.CompactSize()
	if err != nil {
		return wire.WrapError(err, ".Mode")
	}
	payload, err := s.Bytes()
	if err != nil {
		return wire.WrapError(err, ".Payload")
	}
	d.ExtensionID, d.Mode, d.Payload = ExtensionID(id), Mode(mode), payload
	return nil
}

// EncodedSize returns the number of bytes EncodeWire writes for d.
func (d *TzeData) EncodedSize() int {
	return wire.CompactSizeLen(uint64(d.ExtensionID)) +
		wire.CompactSizeLen(uint64(d.Mode)) +
		wire.CompactSizeLen(uint64(len(d.Payload))) + len(d.Payload)
}

// Copy returns a deep copy of d.
func (d TzeData) Copy() TzeData {
	d.Payload = common.CopyBytes(d.Payload)
	return d
}

func (d TzeData) String() string {
	return fmt.Sprintf("tze.Data{extension: %v, mode: %d, payload: %d bytes}", d.ExtensionID, d.Mode, len(d.Payload))
}

// TzeOutPoint references an output of an earlier transaction's TZE bundle.
type TzeOutPoint struct {
	Hash  common.Hash // hash of the transaction holding the output
	Index uint32      // position in that transaction's TZE outputs
}

// NewTzeOutPoint creates an outpoint from a host-sized index. It panics if
// index is negative or does not fit in 32 bits; callers are expected to index
// into an existing output list, so this is a programming error.
func NewTzeOutPoint(hash common.Hash, index int) TzeOutPoint {
	if index < 0 || uint64(index) > 0xFFFFFFFF {
		panic(fmt.Sprintf("tze: output index %d out of range", index))
	}
	return TzeOutPoint{Hash: hash, Index: uint32(index)}
}

// EncodeWire implements wire.Encoder.
func (op *TzeOutPoint) EncodeWire(w io.Writer) error {
	if _, err := w.Write(op.Hash[:]); err != nil {
		return err
	}
	return wire.WriteUint32(w, op.Index)
}

// DecodeWire implements wire.Decoder.
func (op *TzeOutPoint) DecodeWire(s *wire.Stream) error {
	if err := s.ReadBytes(op.Hash[:]); err != nil {
		return wire.WrapError(err, ".Hash")
	}
	index, err := s.Uint32()
	if err != nil {
		return wire.WrapError(err, ".Index")
	}
	op.Index = index
	return nil
}

func (op TzeOutPoint) String() string {
	return fmt.Sprintf("%s:%d", op.Hash.Hex(), op.Index)
}

// TzeIn spends a TZE output, supplying a witness for its precondition.
type TzeIn struct {
	PrevOut TzeOutPoint `json:"prevout"`
	Witness TzeData     `json:"witness"`
}

// EncodeWire implements wire.Encoder.
func (in *TzeIn) EncodeWire(w io.Writer) error {
	if err := in.PrevOut.EncodeWire(w); err != nil {
		return err
	}
	return in.Witness.EncodeWire(w)
}

// DecodeWire implements wire.Decoder.
func (in *TzeIn) DecodeWire(s *wire.Stream) error {
	if err := in.PrevOut.DecodeWire(s); err != nil {
		return wire.WrapError(err, ".PrevOut")
	}
	if err := in.Witness.DecodeWire(s); err != nil {
		return wire.WrapError(err, ".Witness")
	}
	return nil
}

// MaxAllocation implements wire.Preallocator. Every input is at least
// MinTzeInputSize bytes, and a list of them must fit in one block.
func (*TzeIn) MaxAllocation() uint64 {
	return wire.MaxAllocation(params.MaxBlockBytes, MinTzeInputSize)
}

func (in TzeIn) String() string {
	return fmt.Sprintf("tze.In{prevout: %v, witness: %v}", in.PrevOut, in.Witness)
}

// TzeOut locks a value under an extension precondition.
type TzeOut struct {
	Value        amount.Amount `json:"value"`
	Precondition TzeData       `json:"precondition"`
}

// EncodeWire implements wire.Encoder.
func (out *TzeOut) EncodeWire(w io.Writer) error {
	if err := wire.WriteInt64(w, out.Value.Int64()); err != nil {
		return err
	}
	return out.Precondition.EncodeWire(w)
}

// DecodeWire implements wire.Decoder. Values outside [0, MaxMoney] are
// rejected as malformed.
func (out *TzeOut) DecodeWire(s *wire.Stream) error {
	v, err := s.Int64()
	if err != nil {
		return wire.WrapError(err, ".Value")
	}
	value, err := amount.New(v)
	if err != nil {
		return wire.WrapError(wire.Malformed(err), ".Value")
	}
	if err := out.Precondition.DecodeWire(s); err != nil {
		return wire.WrapError(err, ".Precondition")
	}
	out.Value = value
	return nil
}

// MaxAllocation implements wire.Preallocator.
func (*TzeOut) MaxAllocation() uint64 {
	return wire.MaxAllocation(params.MaxBlockBytes, MinTzeOutputSize)
}

func (out TzeOut) String() string {
	return fmt.Sprintf("tze.Out{value: %v, precondition: %v}", out.Value, out.Precondition)
}

// TzeBundle is the TZE part of a transaction.
type TzeBundle struct {
	Inputs  []TzeIn  `json:"inputs"`
	Outputs []TzeOut `json:"outputs"`
}

// EncodeWire implements wire.Encoder.
func (b *TzeBundle) EncodeWire(w io.Writer) error {
	if err := wire.EncodeList(w, b.Inputs); err != nil {
		return err
	}
	return wire.EncodeList(w, b.Outputs)
}

// DecodeWire implements wire.Decoder.
func (b *TzeBundle) DecodeWire(s *wire.Stream) error {
	inputs, err := wire.DecodeList[TzeIn](s)
	if err != nil {
		return wire.WrapError(err, ".Inputs")
	}
	outputs, err := wire.DecodeList[TzeOut](s)
	if err != nil {
		return wire.WrapError(err, ".Outputs")
	}
	b.Inputs, b.Outputs = inputs, outputs
	return nil
}

// MaxAllocation implements wire.Preallocator. A transaction carries at most
// one bundle.
func (*TzeBundle) MaxAllocation() uint64 {
	return params.MaxTzeBundlesPerTx
}

// IsEmpty reports whether the bundle has neither inputs nor outputs.
func (b *TzeBundle) IsEmpty() bool {
	return len(b.Inputs) == 0 && len(b.Outputs) == 0
}

// ValueOut returns the sum of the output values.
func (b *TzeBundle) ValueOut() (amount.Amount, error) {
	values := make([]amount.Amount, len(b.Outputs))
	for i := range b.Outputs {
		values[i] = b.Outputs[i].Value
	}
	return amount.Sum(values...)
}

// Copy returns a deep copy of b.
func (b *TzeBundle) Copy() *TzeBundle {
	cpy := new(TzeBundle)
	if b.Inputs != nil {
		cpy.Inputs = make([]TzeIn, len(b.Inputs))
		for i, in := range b.Inputs {
			cpy.Inputs[i] = TzeIn{PrevOut: in.PrevOut, Witness: in.Witness.Copy()}
		}
	}
	if b.Outputs != nil {
		cpy.Outputs = make([]TzeOut, len(b.Outputs))
		for i, out := range b.Outputs {
			cpy.Outputs[i] = TzeOut{Value: out.Value, Precondition: out.Precondition.Copy()}
		}
	}
	return cpy
}

func (b *TzeBundle) String() string {
	return fmt.Sprintf("tze.Bundle{inputs: %d, outputs: %d}", len(b.Inputs), len(b.Outputs))
}

// EncodeOptionalTzeBundle writes a transaction's bundle slot: a count of zero
// when b is nil, or a count of one followed by the bundle.
func EncodeOptionalTzeBundle(w io.Writer, b *TzeBundle) error {
	if b == nil {
		return wire.EncodeList[TzeBundle](w, nil)
	}
	return wire.EncodeList(w, []TzeBundle{*b})
}

// DecodeOptionalTzeBundle reads a bundle slot written by
// EncodeOptionalTzeBundle. It returns nil when no bundle is present, and
// rejects a count above one before decoding anything else.
func DecodeOptionalTzeBundle(s *wire.Stream) (*TzeBundle, error) {
	bundles, err := wire.DecodeList[TzeBundle](s)
	if err != nil || len(bundles) == 0 {
		return nil, err
	}
	return &bundles[0], nil
}
