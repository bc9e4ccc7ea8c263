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

package common

import (
	"encoding/hex"
	"fmt"
	"reflect"

	"github.com/tzelabs/go-tze/common/hexutil"
)

// HashLength is the expected length of a transaction hash.
const HashLength = 32

var hashT = reflect.TypeOf(Hash{})

// Hash represents the 32 byte transaction identifier. The bytes are kept in
// wire order; the textual forms print them reversed, which is how Zcash and
// Bitcoin tooling display transaction ids.
type Hash [HashLength]byte

// BytesToHash sets b to hash.
// If b is larger than len(h), b will be cropped from the left.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash parses a display-order hex string (with or without 0x prefix)
// into a Hash. Invalid input yields the zero hash.
func HexToHash(s string) Hash {
	var h Hash
	if err := h.UnmarshalText([]byte(s)); err != nil {
		return Hash{}
	}
	return h
}

// Bytes gets the byte representation of the underlying hash in wire order.
func (h Hash) Bytes() []byte { return h[:] }

// Hex converts a hash to its display-order hex string.
func (h Hash) Hex() string {
	return hex.EncodeToString(h.reversed())
}

// TerminalString implements log.TerminalStringer, formatting a string for console
// output during logging.
func (h Hash) TerminalString() string {
	s := h.Hex()
	return s[:6] + "…" + s[len(s)-6:]
}

// String implements the stringer interface and is used also by the logger when
// doing full logging into a file.
func (h Hash) String() string {
	return h.Hex()
}

// Format implements fmt.Formatter.
// Hash supports the %v, %s, %q, %x, %X and %d format verbs.
func (h Hash) Format(s fmt.State, c rune) {
	switch c {
	case 'x', 'X':
		if s.Flag('#') {
			s.Write([]byte("0x"))
		}
		format := "%x"
		if c == 'X' {
			format = "%X"
		}
		fmt.Fprintf(s, format, h.reversed())
	case 'v', 's':
		s.Write([]byte(h.Hex()))
	case 'q':
		q := []byte{'"'}
		s.Write(q)
		s.Write([]byte(h.Hex()))
		s.Write(q)
	case 'd':
		fmt.Fprint(s, [len(h)]byte(h))
	default:
		fmt.Fprintf(s, "%%!%c(hash=%x)", c, h.reversed())
	}
}

// SetBytes sets the hash to the value of b (wire order).
// If b is larger than len(h), b will be cropped from the left.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// MarshalText returns the display-order hex representation of h.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText parses a display-order hash in hex syntax. The 0x prefix is
// optional.
func (h *Hash) UnmarshalText(input []byte) error {
	var rev Hash
	if len(input) >= 2 && input[0] == '0' && (input[1] == 'x' || input[1] == 'X') {
		input = input[2:]
	}
	if err := hexutil.UnmarshalFixedText("Hash", append([]byte("0x"), input...), rev[:]); err != nil {
		return err
	}
	for i := range rev {
		h[i] = rev[HashLength-1-i]
	}
	return nil
}

// UnmarshalJSON parses a hash in hex syntax.
func (h *Hash) UnmarshalJSON(input []byte) error {
	if len(input) < 2 || input[0] != '"' || input[len(input)-1] != '"' {
		return fmt.Errorf("json: cannot unmarshal non-string into Go value of type %v", hashT)
	}
	return h.UnmarshalText(input[1 : len(input)-1])
}

func (h Hash) reversed() []byte {
	out := make([]byte, HashLength)
	for i := range h {
		out[i] = h[HashLength-1-i]
	}
	return out
}
