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

// CompactSizeLen returns the number of bytes in the CompactSize encoding of v.
func CompactSizeLen(v uint64) int {
	switch {
	case v < 0xFD:
		return 1
	case v <= 0xFFFF:
		return 3
	case v <= 0xFFFFFFFF:
		return 5
	default:
		return 9
	}
}

// AppendCompactSize appends the CompactSize encoding of v to dst.
func AppendCompactSize(dst []byte, v uint64) []byte {
	switch {
	case v < 0xFD:
		return append(dst, byte(v))
	case v <= 0xFFFF:
		return binary.LittleEndian.AppendUint16(append(dst, 0xFD), uint16(v))
	case v <= 0xFFFFFFFF:
		return binary.LittleEndian.AppendUint32(append(dst, 0xFE), uint32(v))
	default:
		return binary.LittleEndian.AppendUint64(append(dst, 0xFF), v)
	}
}

// SplitCompactSize decodes one CompactSize integer from the front of b and
// returns it together with the remaining bytes.
func SplitCompactSize(b []byte) (v uint64, rest []byte, err error) {
	if len(b) == 0 {
		return 0, b, io.ErrUnexpectedEOF
	}
	var (
		size int
		min  uint64
	)
	switch b[0] {
	case 0xFD:
		size, min = 2, 0xFD
	case 0xFE:
		size, min = 4, 0x10000
	case 0xFF:
		size, min = 8, 0x100000000
	default:
		return uint64(b[0]), b[1:], nil
	}
	if len(b) < 1+size {
		return 0, b, io.ErrUnexpectedEOF
	}
	switch size {
	case 2:
		v = uint64(binary.LittleEndian.Uint16(b[1:]))
	case 4:
		v = uint64(binary.LittleEndian.Uint32(b[1:]))
	default:
		v = binary.LittleEndian.Uint64(b[1:])
	}
	if v < min {
		return 0, b, ErrNonCanonicalSize
	}
	return v, b[1+size:], nil
}
