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
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
)

var (
	ErrNonCanonicalSize = errors.New("wire: non-canonical compact size")
	ErrDisallowedLength = errors.New("wire: disallowed collection length")
	ErrMalformed        = errors.New("wire: malformed value")
	ErrTrailingData     = errors.New("wire: input contains trailing data")

	// internal errors
	errDecodeIntoNil = errors.New("wire: value given to Decode must not be nil")

	streamPool = sync.Pool{
		New: func() interface{} { return new(Stream) },
	}
)

// maxChunk caps how much is allocated ahead of data actually received when a
// byte string is read from a stream with no known input limit.
const maxChunk = 64 * 1024

// Decoder is implemented by types that can be read from the wire.
//
// DecodeWire must read exactly the fields of one value, in order, and return
// the first error encountered. On error the receiver may be partially filled
// and must not be used.
type Decoder interface {
	DecodeWire(*Stream) error
}

// DisallowedLengthError is returned when a list count exceeds the
// preallocation bound of its element type.
type DisallowedLengthError struct {
	Type  string // element type
	Count uint64 // count read from the input
	Max   uint64 // preallocation bound of Type
}

func (err *DisallowedLengthError) Error() string {
	return fmt.Sprintf("wire: %s count %d exceeds preallocation bound %d", err.Type, err.Count, err.Max)
}

// Is makes DisallowedLengthError match ErrDisallowedLength.
func (err *DisallowedLengthError) Is(target error) bool {
	return target == ErrDisallowedLength
}

// Malformed wraps cause so that the result matches both ErrMalformed and cause.
func Malformed(cause error) error {
	return fmt.Errorf("%w: %w", ErrMalformed, cause)
}

type decodeError struct {
	err error
	ctx []string // field path, innermost first
}

func (err *decodeError) Error() string {
	if len(err.ctx) == 0 {
		return err.err.Error()
	}
	var ctx strings.Builder
	ctx.WriteString(", decoding into ")
	for i := len(err.ctx) - 1; i >= 0; i-- {
		ctx.WriteString(err.ctx[i])
	}
	return err.err.Error() + ctx.String()
}

func (err *decodeError) Unwrap() error { return err.err }

// WrapError annotates a decode error with the name of the field, or the list
// index, that was being decoded when it happened. Context added by an outer
// decoder is printed before context added by an inner one.
func WrapError(err error, ctx string) error {
	if err == nil {
		return nil
	}
	if decErr, ok := err.(*decodeError); ok {
		decErr.ctx = append(decErr.ctx, ctx)
		return decErr
	}
	return &decodeError{err: err, ctx: []string{ctx}}
}

// Decode parses one value from r into val.
//
// If r does not implement ByteReader, Decode will do its own buffering. Unless
// r is a *bytes.Reader, *bytes.Buffer or *strings.Reader, no input limit is
// known and byte strings are read incrementally. To enforce a limit use
//
//	NewStream(r, limit).Decode(val)
func Decode(r io.Reader, val Decoder) error {
	stream := streamPool.Get().(*Stream)
	defer streamPool.Put(stream)

	stream.Reset(r, 0)
	return stream.Decode(val)
}

// DecodeBytes parses data from b into val. The input must contain exactly one
// value and no trailing data.
func DecodeBytes(b []byte, val Decoder) error {
	r := (*sliceReader)(&b)

	stream := streamPool.Get().(*Stream)
	defer streamPool.Put(stream)

	stream.Reset(r, uint64(len(b)))
	if err := stream.Decode(val); err != nil {
		return err
	}
	if len(b) > 0 {
		return ErrTrailingData
	}
	return nil
}

// ByteReader must be implemented by any input reader for a Stream. It
// is implemented by e.g. bufio.Reader and bytes.Reader.
type ByteReader interface {
	io.Reader
	io.ByteReader
}

// Stream reads wire-encoded values from an input reader, front to back with
// no lookahead. After a value is decoded the reader is positioned just after
// its last byte.
//
// Stream supports an optional input limit. When a limit is in effect, any read
// that would go past it fails with io.ErrUnexpectedEOF before touching the
// underlying reader, and byte strings longer than the remaining input are
// rejected before their buffer is allocated.
//
// Stream is not safe for concurrent use.
type Stream struct {
	r ByteReader

	remaining uint64 // number of bytes remaining to be read from r
	limited   bool   // true if input limit is in effect
	offset    uint64 // number of bytes consumed since Reset

	uintbuf [8]byte // auxiliary buffer for integer decoding
}

// NewStream creates a new decoding stream reading from r.
//
// If r implements the ByteReader interface, Stream will not introduce any
// buffering. A non-zero inputLimit caps the number of bytes the stream will
// consume. If inputLimit is zero and r is a bytes.Reader, bytes.Buffer or
// strings.Reader, the limit is set to the length of r's remaining data.
func NewStream(r io.Reader, inputLimit uint64) *Stream {
	s := new(Stream)
	s.Reset(r, inputLimit)
	return s
}

// Reset discards the current decoding context and starts reading from r.
// It allows a Stream to be reused across many decoding operations.
func (s *Stream) Reset(r io.Reader, inputLimit uint64) {
	if inputLimit > 0 {
		s.remaining = inputLimit
		s.limited = true
	} else {
		// Attempt to automatically discover
		// the limit when reading from a byte slice.
		switch br := r.(type) {
		case *bytes.Reader:
			s.remaining = uint64(br.Len())
			s.limited = true
		case *bytes.Buffer:
			s.remaining = uint64(br.Len())
			s.limited = true
		case *strings.Reader:
			s.remaining = uint64(br.Len())
			s.limited = true
		default:
			s.remaining = 0
			s.limited = false
		}
	}
	// Wrap r with a buffer if it doesn't have one.
	bufr, ok := r.(ByteReader)
	if !ok {
		bufr = bufio.NewReader(r)
	}
	s.r = bufr
	s.offset = 0
	s.uintbuf = [8]byte{}
}

// Remaining returns the number of bytes left before the input limit, and
// whether a limit is in effect at all.
func (s *Stream) Remaining() (uint64, bool) {
	return s.remaining, s.limited
}

// Offset returns the number of bytes consumed since the last Reset.
func (s *Stream) Offset() uint64 {
	return s.offset
}

// Decode reads one value into val.
func (s *Stream) Decode(val Decoder) error {
	if val == nil {
		return errDecodeIntoNil
	}
	rval := reflect.ValueOf(val)
	if rval.Kind() == reflect.Ptr && rval.IsNil() {
		return errDecodeIntoNil
	}
	err := val.DecodeWire(s)
	if decErr, ok := err.(*decodeError); ok && len(decErr.ctx) > 0 {
		// Add decode target type to error so context has more meaning.
		typ := rval.Type()
		if typ.Kind() == reflect.Ptr {
			typ = typ.Elem()
		}
		decErr.ctx = append(decErr.ctx, fmt.Sprint("(", typ, ")"))
	}
	return err
}

// CompactSize reads a CompactSize integer, rejecting non-minimal encodings.
func (s *Stream) CompactSize() (uint64, error) {
	b, err := s.readByte()
	if err != nil {
		return 0, err
	}
	switch b {
	case 0xFD:
		if err := s.readFull(s.uintbuf[:2]); err != nil {
			return 0, err
		}
		v := uint64(binary.LittleEndian.Uint16(s.uintbuf[:2]))
		if v < 0xFD {
			return 0, ErrNonCanonicalSize
		}
		return v, nil
	case 0xFE:
		if err := s.readFull(s.uintbuf[:4]); err != nil {
			return 0, err
		}
		v := uint64(binary.LittleEndian.Uint32(s.uintbuf[:4]))
		if v <= 0xFFFF {
			return 0, ErrNonCanonicalSize
		}
		return v, nil
	case 0xFF:
		if err := s.readFull(s.uintbuf[:8]); err != nil {
			return 0, err
		}
		v := binary.LittleEndian.Uint64(s.uintbuf[:8])
		if v <= 0xFFFFFFFF {
			return 0, ErrNonCanonicalSize
		}
		return v, nil
	default:
		return uint64(b), nil
	}
}

// Bytes reads a length-prefixed byte string. A zero length yields nil.
//
// The declared length is not trusted: with an input limit in effect, a length
// beyond the remaining input fails with io.ErrUnexpectedEOF without consuming
// any payload byte. Without a limit the payload is read in chunks, so memory
// use follows the bytes actually delivered by the reader.
func (s *Stream) Bytes() ([]byte, error) {
	size, err := s.CompactSize()
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	if s.limited {
		if size > s.remaining {
			return nil, io.ErrUnexpectedEOF
		}
		b := make([]byte, size)
		if err := s.readFull(b); err != nil {
			return nil, err
		}
		return b, nil
	}
	var b []byte
	for left := size; left > 0; {
		n := left
		if n > maxChunk {
			n = maxChunk
		}
		b = append(b, make([]byte, n)...)
		if err := s.readFull(b[uint64(len(b))-n:]); err != nil {
			return nil, err
		}
		left -= n
	}
	return b, nil
}

// ReadBytes fills b with the next len(b) raw bytes of input.
func (s *Stream) ReadBytes(b []byte) error {
	return s.readFull(b)
}

// Uint32 reads a 4 byte little-endian unsigned integer.
func (s *Stream) Uint32() (uint32, error) {
	if err := s.readFull(s.uintbuf[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(s.uintbuf[:4]), nil
}

// Uint64 reads an 8 byte little-endian unsigned integer.
func (s *Stream) Uint64() (uint64, error) {
	if err := s.readFull(s.uintbuf[:8]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(s.uintbuf[:8]), nil
}

// Int64 reads an 8 byte little-endian two's complement integer.
func (s *Stream) Int64() (int64, error) {
	v, err := s.Uint64()
	return int64(v), err
}

// readFull reads into buf from the underlying stream.
func (s *Stream) readFull(buf []byte) (err error) {
	if err := s.willRead(uint64(len(buf))); err != nil {
		return err
	}
	var nn, n int
	for n < len(buf) && err == nil {
		nn, err = s.r.Read(buf[n:])
		n += nn
	}
	s.offset += uint64(n)
	if err == io.EOF {
		if n < len(buf) {
			err = io.ErrUnexpectedEOF
		} else {
			// Readers are allowed to give EOF even though the read succeeded.
			// In such cases, we discard the EOF, like io.ReadFull() does.
			err = nil
		}
	}
	return err
}

// readByte reads a single byte from the underlying stream.
func (s *Stream) readByte() (byte, error) {
	if err := s.willRead(1); err != nil {
		return 0, err
	}
	b, err := s.r.ReadByte()
	if err == io.EOF {
		return 0, io.ErrUnexpectedEOF
	}
	if err == nil {
		s.offset++
	}
	return b, err
}

// willRead is called before any read from the underlying stream. It checks
// n against the input limit, and updates the limit if n doesn't overflow it.
func (s *Stream) willRead(n uint64) error {
	if s.limited {
		if n > s.remaining {
			return io.ErrUnexpectedEOF
		}
		s.remaining -= n
	}
	return nil
}

type sliceReader []byte

func (sr *sliceReader) Read(b []byte) (int, error) {
	if len(*sr) == 0 {
		return 0, io.EOF
	}
	n := copy(b, *sr)
	*sr = (*sr)[n:]
	return n, nil
}

func (sr *sliceReader) ReadByte() (byte, error) {
	if len(*sr) == 0 {
		return 0, io.EOF
	}
	b := (*sr)[0]
	*sr = (*sr)[1:]
	return b, nil
}
