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

/*
Package wire implements the Zcash consensus serialization used by transparent
extension (TZE) data.

The format has no self-describing type information. Every value is written as
the concatenation of its fields in a fixed order, so encoder and decoder must
agree on the layout of each type. This package provides the primitives that
the layouts are composed from.

# CompactSize

Unsigned integers used as identifiers and element counts are encoded in the
CompactSize form:

	value < 0xFD          1 byte:  value
	value <= 0xFFFF       3 bytes: 0xFD, uint16 little-endian
	value <= 0xFFFFFFFF   5 bytes: 0xFE, uint32 little-endian
	otherwise             9 bytes: 0xFF, uint64 little-endian

Only the shortest form is valid. Decoding a longer form than necessary, for
example 0xFF followed by the 8 byte encoding of 1, fails with
ErrNonCanonicalSize. This keeps the mapping between values and bytes one to
one, which matters because serialized data is hashed.

# Byte strings

A byte string is a CompactSize length followed by that many raw bytes. The
empty string is the single byte 0x00 and decodes as a nil slice.

# Fixed-width integers

Fixed-width integers are little-endian. Stream.Uint32 and Stream.Int64 read
them; WriteUint32 and WriteInt64 write them.

# Lists and preallocation bounds

A list is a CompactSize element count followed by the elements. Because the
count comes from untrusted input, DecodeList refuses any count above the
element type's preallocation bound before allocating. Types report their bound
through the Preallocator interface. The bound is derived from the largest
container a value can appear in and the smallest number of bytes one element
can occupy:

	bound = MaxAllocation(maxContainerBytes, minElementBytes)

No well-formed container can hold more elements than that, so a larger count
is rejected with a *DisallowedLengthError.

# Encoders and decoders

Types take part in encoding by implementing Encoder and Decoder. EncodeWire
writes the fields in order; DecodeWire reads them back from a Stream and
returns the first error it meets. Decode errors raised inside a type are
annotated with the field path at which they happened, and still match the
package's sentinel errors through errors.Is.

Truncated input always produces io.ErrUnexpectedEOF.
*/
package wire
