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
	"io"
	"reflect"
	"strconv"
)

// Preallocator is implemented by list element types. MaxAllocation returns the
// largest element count a decoder may trust before reading the elements. It
// must be a constant for the type and must not depend on the receiver.
type Preallocator interface {
	MaxAllocation() uint64
}

// MaxAllocation returns how many values of at least minSize bytes can fit in a
// container of maxContainer bytes. It panics if minSize is zero, since every
// value occupies at least one byte on the wire.
func MaxAllocation(maxContainer, minSize uint64) uint64 {
	if minSize == 0 {
		panic("wire: zero minimum serialized size")
	}
	return maxContainer / minSize
}

// DecodeList reads a CompactSize count followed by that many elements of type
// T. A count above T's preallocation bound is rejected with a
// *DisallowedLengthError before anything is allocated for the elements. A zero
// count yields a nil slice. On error no partial list is returned.
func DecodeList[T any, PT interface {
	*T
	Decoder
	Preallocator
}](s *Stream) ([]T, error) {
	count, err := s.CompactSize()
	if err != nil {
		return nil, err
	}
	var zero T
	if limit := PT(&zero).MaxAllocation(); count > limit {
		return nil, &DisallowedLengthError{
			Type:  reflect.TypeOf(zero).String(),
			Count: count,
			Max:   limit,
		}
	}
	if count == 0 {
		return nil, nil
	}
	list := make([]T, count)
	for i := range list {
		if err := PT(&list[i]).DecodeWire(s); err != nil {
			return nil, WrapError(err, "["+strconv.Itoa(i)+"]")
		}
	}
	return list, nil
}

// EncodeList writes the length of list followed by each element in order.
func EncodeList[T any, PT interface {
	*T
	Encoder
}](w io.Writer, list []T) error {
	if err := WriteCompactSize(w, uint64(len(list))); err != nil {
		return err
	}
	for i := range list {
		if err := PT(&list[i]).EncodeWire(w); err != nil {
			return err
		}
	}
	return nil
}
