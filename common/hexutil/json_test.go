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

package hexutil

import (
	"bytes"
	"encoding/json"
	"testing"
)

func checkError(t *testing.T, input string, got, want error) bool {
	if got == nil {
		if want != nil {
			t.Errorf("input %s: got no error, want %q", input, want)
			return false
		}
		return true
	}
	if want == nil {
		t.Errorf("input %s: unexpected error %q", input, got)
	} else if got.Error() != want.Error() {
		t.Errorf("input %s: got error %q, want %q", input, got, want)
	}
	return false
}

var unmarshalBytesTests = []struct {
	input   string
	want    []byte
	wantErr error
}{
	{input: `""`, want: []byte{}},
	{input: `"0x"`, want: []byte{}},
	{input: `"0x02"`, want: []byte{0x02}},
	{input: `"0X02"`, want: []byte{0x02}},
	{input: `"0xffffffffff"`, want: []byte{0xff, 0xff, 0xff, 0xff, 0xff}},
	{input: `"0x0"`, wantErr: wrapTypeError(ErrOddLength, bytesT)},
	{input: `"02"`, wantErr: wrapTypeError(ErrMissingPrefix, bytesT)},
	{input: `"0xgg"`, wantErr: wrapTypeError(ErrSyntax, bytesT)},
	{input: `10`, wantErr: errNonString(bytesT)},
}

func TestUnmarshalBytes(t *testing.T) {
	for _, test := range unmarshalBytesTests {
		var v Bytes
		err := json.Unmarshal([]byte(test.input), &v)
		if !checkError(t, test.input, err, test.wantErr) {
			continue
		}
		if !bytes.Equal(test.want, v) {
			t.Errorf("input %s: value mismatch: got %x, want %x", test.input, v, test.want)
		}
	}
}

func TestMarshalBytes(t *testing.T) {
	for _, test := range []struct {
		in   []byte
		want string
	}{
		{[]byte{}, `"0x"`},
		{[]byte{0}, `"0x00"`},
		{[]byte{0x53, 0x54, 0x57, 0x4f}, `"0x5354574f"`},
	} {
		out, err := json.Marshal(Bytes(test.in))
		if err != nil {
			t.Errorf("%x: %v", test.in, err)
			continue
		}
		if string(out) != test.want {
			t.Errorf("%x: MarshalJSON output mismatch: got %s, want %s", test.in, out, test.want)
		}
	}
}

func TestUnmarshalUint64(t *testing.T) {
	for _, test := range []struct {
		input   string
		want    uint64
		wantErr error
	}{
		{input: `"0x0"`, want: 0},
		{input: `"0x5354574f"`, want: 0x5354574f},
		{input: `"0xffffffffffffffff"`, want: 0xffffffffffffffff},
		{input: `"0x01"`, wantErr: wrapTypeError(ErrLeadingZero, uint64T)},
		{input: `"0x10000000000000000"`, wantErr: wrapTypeError(ErrUint64Range, uint64T)},
		{input: `"0x"`, wantErr: wrapTypeError(ErrEmptyNumber, uint64T)},
	} {
		var v Uint64
		err := json.Unmarshal([]byte(test.input), &v)
		if !checkError(t, test.input, err, test.wantErr) {
			continue
		}
		if uint64(v) != test.want {
			t.Errorf("input %s: value mismatch: got %d, want %d", test.input, v, test.want)
		}
	}
}

func TestDecodeUint64(t *testing.T) {
	if v, err := DecodeUint64("0x2a"); err != nil || v != 42 {
		t.Fatalf("DecodeUint64(0x2a) = %d, %v", v, err)
	}
	if _, err := DecodeUint64("2a"); err != ErrMissingPrefix {
		t.Fatalf("got %v, want %v", err, ErrMissingPrefix)
	}
	if s := EncodeUint64(0x5354574f); s != "0x5354574f" {
		t.Fatalf("EncodeUint64 = %s", s)
	}
}
