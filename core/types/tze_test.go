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

package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tzelabs/go-tze/common"
	"github.com/tzelabs/go-tze/common/amount"
	"github.com/tzelabs/go-tze/params"
	"github.com/tzelabs/go-tze/wire"
)

const stwoExtensionID ExtensionID = 0x5354574F

func unhex(str string) []byte {
	b, err := hex.DecodeString(strings.ReplaceAll(str, " ", ""))
	if err != nil {
		panic("invalid hex string: " + str)
	}
	return b
}

func testBundle() *TzeBundle {
	return &TzeBundle{
		Inputs: []TzeIn{
			{
				PrevOut: NewTzeOutPoint(common.Hash{1}, 0),
				Witness: TzeData{ExtensionID: stwoExtensionID, Mode: 0, Payload: []byte{1}},
			},
			{
				PrevOut: NewTzeOutPoint(common.Hash{31: 0xff}, 7),
				Witness: TzeData{ExtensionID: 1, Mode: 0xFFFF, Payload: bytes.Repeat([]byte{0xaa}, 300)},
			},
		},
		Outputs: []TzeOut{
			{Value: amount.MustNew(0), Precondition: TzeData{ExtensionID: stwoExtensionID}},
			{Value: amount.MustNew(amount.MaxMoney), Precondition: TzeData{ExtensionID: 2, Mode: 3, Payload: []byte{4, 5}}},
		},
	}
}

func TestTzeInScenario(t *testing.T) {
	in := TzeIn{
		PrevOut: TzeOutPoint{},
		Witness: TzeData{ExtensionID: stwoExtensionID, Mode: 0, Payload: []byte{1}},
	}
	enc, err := wire.EncodeToBytes(&in)
	require.NoError(t, err)
	// The extension id takes the 5-byte CompactSize form.
	assert.Len(t, enc, 32+4+(5+1+(1+1)))
	assert.Equal(t, unhex("fe4f575453 00 01 01"), enc[36:])
	assert.Equal(t, len(enc), 36+in.Witness.EncodedSize())

	var dec TzeIn
	require.NoError(t, wire.DecodeBytes(enc, &dec))
	assert.Equal(t, in, dec)

	// With a single-byte extension id the input is 40 bytes.
	in.Witness.ExtensionID = 1
	enc, err = wire.EncodeToBytes(&in)
	require.NoError(t, err)
	assert.Len(t, enc, 32+4+(1+1+(1+1)))
}

func TestEmptyBundle(t *testing.T) {
	enc, err := wire.EncodeToBytes(&TzeBundle{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0}, enc)

	var dec TzeBundle
	require.NoError(t, wire.DecodeBytes(enc, &dec))
	assert.True(t, dec.IsEmpty())
	assert.Equal(t, TzeBundle{}, dec)
}

func TestRoundTrip(t *testing.T) {
	b := testBundle()
	enc, err := wire.EncodeToBytes(b)
	require.NoError(t, err)
	var dec TzeBundle
	require.NoError(t, wire.DecodeBytes(enc, &dec))
	assert.Equal(t, b, &dec)

	for i := range b.Inputs {
		enc, err := wire.EncodeToBytes(&b.Inputs[i])
		require.NoError(t, err)
		var in TzeIn
		require.NoError(t, wire.DecodeBytes(enc, &in))
		assert.Equal(t, b.Inputs[i], in)

		enc, err = wire.EncodeToBytes(&b.Inputs[i].PrevOut)
		require.NoError(t, err)
		assert.Len(t, enc, 36)
		var op TzeOutPoint
		require.NoError(t, wire.DecodeBytes(enc, &op))
		assert.Equal(t, b.Inputs[i].PrevOut, op)
	}
	for i := range b.Outputs {
		enc, err := wire.EncodeToBytes(&b.Outputs[i])
		require.NoError(t, err)
		var out TzeOut
		require.NoError(t, wire.DecodeBytes(enc, &out))
		assert.Equal(t, b.Outputs[i], out)

		enc, err = wire.EncodeToBytes(&b.Outputs[i].Precondition)
		require.NoError(t, err)
		assert.Len(t, enc, b.Outputs[i].Precondition.EncodedSize())
		var d TzeData
		require.NoError(t, wire.DecodeBytes(enc, &d))
		assert.Equal(t, b.Outputs[i].Precondition, d)
	}
}

func TestOutPointWireOrder(t *testing.T) {
	op := NewTzeOutPoint(common.HexToHash(strings.Repeat("00", 31)+"01"), 0x0102)
	enc, err := wire.EncodeToBytes(&op)
	require.NoError(t, err)
	// Display order is reversed, so the 0x01 lands in the first wire byte.
	assert.Equal(t, byte(0x01), enc[0])
	assert.Equal(t, unhex("02010000"), enc[32:])
}

func TestNewTzeOutPointPanics(t *testing.T) {
	assert.Panics(t, func() { NewTzeOutPoint(common.Hash{}, -1) })
	assert.NotPanics(t, func() { NewTzeOutPoint(common.Hash{}, 0xFFFFFFFF) })
	if math.MaxInt > math.MaxUint32 {
		var big int64 = 1 << 32
		assert.Panics(t, func() { NewTzeOutPoint(common.Hash{}, int(big)) })
	}
}

func TestInputCountBound(t *testing.T) {
	limit := params.MaxBlockBytes / MinTzeInputSize
	assert.Equal(t, uint64(51282), limit)
	assert.Equal(t, limit, new(TzeIn).MaxAllocation())
	assert.Equal(t, uint64(181818), new(TzeOut).MaxAllocation())
	assert.Equal(t, uint64(1), new(TzeBundle).MaxAllocation())

	input := wire.AppendCompactSize(nil, limit+1)
	var (
		dec TzeBundle
		err error
	)
	allocs := testing.AllocsPerRun(10, func() {
		err = wire.DecodeBytes(input, &dec)
	})
	assert.ErrorIs(t, err, wire.ErrDisallowedLength)
	var lenErr *wire.DisallowedLengthError
	require.True(t, errors.As(err, &lenErr))
	assert.Equal(t, limit+1, lenErr.Count)
	assert.Equal(t, limit, lenErr.Max)
	assert.Less(t, allocs, float64(16))
	assert.Nil(t, dec.Inputs)

	// A count at the bound passes the check and then runs out of input.
	input = wire.AppendCompactSize(nil, limit)
	err = wire.DecodeBytes(input, &dec)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.NotErrorIs(t, err, wire.ErrDisallowedLength)
}

func TestOutputCountBound(t *testing.T) {
	input := append([]byte{0}, wire.AppendCompactSize(nil, params.MaxBlockBytes/MinTzeOutputSize+1)...)
	var dec TzeBundle
	err := wire.DecodeBytes(input, &dec)
	assert.ErrorIs(t, err, wire.ErrDisallowedLength)
	assert.Contains(t, err.Error(), ".Outputs")
}

func TestTzeOutValueRange(t *testing.T) {
	precondition := unhex("01 00 00")

	var out TzeOut
	err := wire.DecodeBytes(append(unhex("ffffffffffffffff"), precondition...), &out)
	assert.ErrorIs(t, err, wire.ErrMalformed)
	assert.ErrorIs(t, err, amount.ErrNegative)
	assert.Contains(t, err.Error(), "(types.TzeOut).Value")

	var over [8]byte
	enc, err := wire.EncodeToBytes(&TzeOut{Value: amount.MustNew(amount.MaxMoney)})
	require.NoError(t, err)
	copy(over[:], enc[:8])
	over[0]++
	err = wire.DecodeBytes(append(over[:], precondition...), &out)
	assert.ErrorIs(t, err, wire.ErrMalformed)
	assert.ErrorIs(t, err, amount.ErrOutOfRange)

	require.NoError(t, wire.DecodeBytes(append(make([]byte, 8), precondition...), &out))
	assert.True(t, out.Value.IsZero())
	assert.Equal(t, ExtensionID(1), out.Precondition.ExtensionID)
}

func TestNonCanonicalCompactSize(t *testing.T) {
	// Extension id 1 in the 9-byte form.
	input := unhex("ff0100000000000000 00 00")
	var d TzeData
	err := wire.DecodeBytes(input, &d)
	assert.ErrorIs(t, err, wire.ErrNonCanonicalSize)
	assert.Contains(t, err.Error(), ".ExtensionID")
}

func TestTruncatedPayload(t *testing.T) {
	input := unhex("01 00 05 aabb")
	s := wire.NewStream(bytes.NewReader(input), uint64(len(input)))
	var d TzeData
	err := s.Decode(&d)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "unexpected EOF, decoding into (types.TzeData).Payload", err.Error())
	// Only the three prefix bytes were consumed.
	assert.Equal(t, uint64(3), s.Offset())
}

func TestNestedErrorContext(t *testing.T) {
	enc, err := wire.EncodeToBytes(testBundle())
	require.NoError(t, err)
	var dec TzeBundle
	err = wire.DecodeBytes(enc[:len(enc)-1], &dec)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "unexpected EOF, decoding into (types.TzeBundle).Outputs[1].Precondition.Payload", err.Error())
}

func TestOptionalBundle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeOptionalTzeBundle(&buf, nil))
	assert.Equal(t, []byte{0}, buf.Bytes())
	b, err := DecodeOptionalTzeBundle(wire.NewStream(&buf, 0))
	require.NoError(t, err)
	assert.Nil(t, b)

	buf.Reset()
	require.NoError(t, EncodeOptionalTzeBundle(&buf, &TzeBundle{}))
	assert.Equal(t, []byte{1, 0, 0}, buf.Bytes())
	b, err = DecodeOptionalTzeBundle(wire.NewStream(&buf, 0))
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.True(t, b.IsEmpty())

	// Two bundles exceed the per-transaction bound.
	_, err = DecodeOptionalTzeBundle(wire.NewStream(bytes.NewReader([]byte{2, 0, 0, 0, 0}), 0))
	assert.ErrorIs(t, err, wire.ErrDisallowedLength)
}

func TestBundleHelpers(t *testing.T) {
	b := testBundle()
	total, err := b.ValueOut()
	require.NoError(t, err)
	assert.Equal(t, amount.MaxMoney, total.Int64())

	cpy := b.Copy()
	assert.Equal(t, b, cpy)
	cpy.Inputs[0].Witness.Payload[0] = 0xee
	assert.Equal(t, byte(1), b.Inputs[0].Witness.Payload[0])

	assert.Equal(t, "tze.Bundle{inputs: 2, outputs: 2}", b.String())
	assert.Equal(t, "tze.Data{extension: 0x5354574f, mode: 0, payload: 1 bytes}", b.Inputs[0].Witness.String())
}

func TestJSON(t *testing.T) {
	b := testBundle()
	enc, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(enc), `"extensionId":"0x5354574f"`)
	assert.Contains(t, string(enc), `"payload":"0x01"`)
	assert.Contains(t, string(enc), `"value":"2100000000000000"`)

	var dec TzeBundle
	require.NoError(t, json.Unmarshal(enc, &dec))
	assert.Equal(t, b, &dec)

	var d TzeData
	assert.EqualError(t, json.Unmarshal([]byte(`{"extensionId":"0x1","mode":"0x0"}`), &d),
		"missing required field 'payload' for TzeData")
	require.NoError(t, json.Unmarshal([]byte(`{"extensionId":"0x1","mode":"0x0","payload":"0x"}`), &d))
	assert.Nil(t, d.Payload)

	var out TzeOut
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"value":"-1","precondition":{"extensionId":"0x1","mode":"0x0","payload":"0x"}}`), &out), amount.ErrNegative)
	assert.EqualError(t, json.Unmarshal([]byte(`{"precondition":{"extensionId":"0x1","mode":"0x0","payload":"0x"}}`), &out),
		"missing required field 'value' for TzeOut")
	assert.EqualError(t, json.Unmarshal([]byte(`{"value":"5"}`), &out),
		"missing required field 'precondition' for TzeOut")
	require.NoError(t, json.Unmarshal([]byte(`{"value":"0","precondition":{"extensionId":"0x1","mode":"0x0","payload":"0x"}}`), &out))
	assert.True(t, out.Value.IsZero())

	var in TzeIn
	assert.EqualError(t, json.Unmarshal([]byte(`{"witness":{"extensionId":"0x1","mode":"0x0","payload":"0x"}}`), &in),
		"missing required field 'prevout' for TzeIn")
	noWitness := `{"prevout":{"hash":"0x` + strings.Repeat("00", 32) + `","index":"0x0"}}`
	assert.EqualError(t, json.Unmarshal([]byte(noWitness), &in), "missing required field 'witness' for TzeIn")
}
