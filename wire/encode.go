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

package wire

import (
	"encoding/binary"
	"io"
)

// Encoder is implemented by types that can be written to the wire.
//
// EncodeWire writes the fields of the value in order. Encoding a well-formed
// value never fails on its own; the only errors are those returned by w.
type Encoder interface {
	EncodeWire(io.Writer) error
}

// Encode writes the encoding of val to w.
func Encode(w io.Writer, val Encoder) error {
	// Optimization: reuse *encBuffer when called by EncodeWire.
	if buf := encBufferFromWriter(w); buf != nil {
		return val.EncodeWire(buf)
	}

	buf := getEncBuffer()
	defer encBufferPool.Put(buf)
	if err := val.EncodeWire(buf); err != nil {
		return err
	}
	return buf.writeTo(w)
}

// EncodeToBytes returns the encoding of val.
func EncodeToBytes(val Encoder) ([]byte, error) {
	buf := getEncBuffer()
	defer encBufferPool.Put(buf)

	if err := val.EncodeWire(buf); err != nil {
		return nil, err
	}
	return buf.makeBytes(), nil
}

// WriteCompactSize writes v to w in CompactSize form.
func WriteCompactSize(w io.Writer, v uint64) error {
	if buf := encBufferFromWriter(w); buf != nil {
		buf.writeCompactSize(v)
		return nil
	}
	var tmp [9]byte
	_, err := w.Write(AppendCompactSize(tmp[:0], v))
	return err
}

// WriteBytes writes b to w as a length-prefixed byte string.
func WriteBytes(w io.Writer, b []byte) error {
	if buf := encBufferFromWriter(w); buf != nil {
		buf.writeBytes(b)
		return nil
	}
	if err := WriteCompactSize(w, uint64(len(b))); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	_, err := w.Write(b)
	return err
}

// WriteUint32 writes v to w as 4 little-endian bytes.
func WriteUint32(w io.Writer, v uint32) error {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	_, err := w.Write(tmp[:])
	return err
}

// WriteUint64 writes v to w as 8 little-endian bytes.
func WriteUint64(w io.Writer, v uint64) error {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	_, err := w.Write(tmp[:])
	return err
}

// WriteInt64 writes v to w as 8 little-endian two's complement bytes.
func WriteInt64(w io.Writer, v int64) error {
	return WriteUint64(w, uint64(v))
}
