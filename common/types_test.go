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
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestHashDisplayOrder(t *testing.T) {
	var h Hash
	h[0] = 0x01
	h[31] = 0xff

	want := "ff" + strings.Repeat("00", 30) + "01"
	if got := h.Hex(); got != want {
		t.Fatalf("Hex mismatch: got %s, want %s", got, want)
	}
	if got := fmt.Sprintf("%#x", h); got != "0x"+want {
		t.Fatalf("%%#x mismatch: got %s", got)
	}
	if got := HexToHash("0x" + want); got != h {
		t.Fatalf("HexToHash round trip mismatch: got %x", got)
	}
	if got := HexToHash(want); got != h {
		t.Fatalf("HexToHash without prefix mismatch: got %x", got)
	}
}

func TestHashJSON(t *testing.T) {
	h := BytesToHash([]byte{1, 2, 3})
	enc, err := json.Marshal(h)
	if err != nil {
		t.Fatal(err)
	}
	var dec Hash
	if err := json.Unmarshal(enc, &dec); err != nil {
		t.Fatal(err)
	}
	if dec != h {
		t.Fatalf("JSON round trip mismatch: got %v, want %v", dec, h)
	}
	if err := json.Unmarshal([]byte(`"0x01"`), &dec); err == nil {
		t.Fatal("expected error for short hash")
	}
	if err := json.Unmarshal([]byte(`12`), &dec); err == nil {
		t.Fatal("expected error for non-string hash")
	}
}

func TestBytesToHashCrop(t *testing.T) {
	b := make([]byte, 40)
	b[8] = 0xaa
	h := BytesToHash(b)
	if h[0] != 0xaa {
		t.Fatalf("expected left crop, got %x", h.Bytes())
	}
}

func TestCopyBytes(t *testing.T) {
	if CopyBytes(nil) != nil {
		t.Fatal("copy of nil should be nil")
	}
	in := []byte{1, 2, 3}
	out := CopyBytes(in)
	out[0] = 9
	if in[0] != 1 {
		t.Fatal("CopyBytes aliases its input")
	}
	if got := FromHex("0x102"); len(got) != 2 || got[0] != 0x01 || got[1] != 0x02 {
		t.Fatalf("FromHex odd length: got %x", got)
	}
}
