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

// Package tzedb defines the interfaces for the key-value store holding TZE
// bundles and outputs.
package tzedb

import (
	"errors"
	"io"
)

// IdealBatchSize is the amount of data to buffer in a batch before writing it
// out.
const IdealBatchSize = 100 * 1024

var (
	// ErrNotFound is returned by Get when the key is absent. Every backend maps
	// its own not-found error to this value.
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned when operating on a closed store.
	ErrClosed = errors.New("database closed")
)

// KeyValueReader wraps the Has and Get methods of a backing data store.
type KeyValueReader interface {
	// Has retrieves if a key is present in the key-value data store.
	Has(key []byte) (bool, error)

	// Get retrieves the given key if it's present in the key-value data store.
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter wraps the Put and Delete methods of a backing data store.
type KeyValueWriter interface {
	// Put inserts the given value into the key-value data store.
	Put(key []byte, value []byte) error

	// Delete removes the key from the key-value data store.
	Delete(key []byte) error
}

// KeyValueStater wraps the Stat method of a backing data store.
type KeyValueStater interface {
	// Stat returns backend statistics in a human readable form.
	Stat() (string, error)
}

// Batch is a write-only store that commits changes to its host store when
// Write is called. A batch cannot be used concurrently.
type Batch interface {
	KeyValueWriter

	// ValueSize retrieves the amount of data queued up for writing.
	ValueSize() int

	// Write flushes any accumulated data to disk.
	Write() error

	// Reset resets the batch for reuse.
	Reset()
}

// Batcher wraps the NewBatch method of a backing data store.
type Batcher interface {
	NewBatch() Batch
}

// Iterator iterates over a store's key/value pairs in ascending key order.
type Iterator interface {
	// Next moves the iterator to the next key/value pair. It returns whether
	// the iterator is exhausted.
	Next() bool

	// Error returns any accumulated error. Exhausting all the key/value pairs
	// is not considered to be an error.
	Error() error

	// Key returns the key of the current pair, or nil if done. The slice is
	// only valid until the next call to Next.
	Key() []byte

	// Value returns the value of the current pair, or nil if done. The slice is
	// only valid until the next call to Next.
	Value() []byte

	// Release releases associated resources. It can be called multiple times.
	Release()
}

// Iteratee wraps the NewIterator method of a backing data store.
type Iteratee interface {
	// NewIterator iterates over the keys starting with prefix, beginning at
	// prefix+start. The prefix is not part of start.
	NewIterator(prefix []byte, start []byte) Iterator
}

// KeyValueStore contains all the methods required of a backing store.
type KeyValueStore interface {
	KeyValueReader
	KeyValueWriter
	KeyValueStater
	Batcher
	Iteratee
	io.Closer
}
