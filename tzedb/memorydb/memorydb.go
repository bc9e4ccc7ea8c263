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

// Package memorydb implements the key-value store on a Go map.
package memorydb

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/tzelabs/go-tze/common"
	"github.com/tzelabs/go-tze/tzedb"
)

// Database is an ephemeral key-value store, mainly for tests and the
// "memory" engine of tzetool.
type Database struct {
	db   map[string][]byte
	lock sync.RWMutex
}

// New returns an empty memory store.
func New() *Database {
	return &Database{db: make(map[string][]byte)}
}

// Close drops the contents. Later operations fail with tzedb.ErrClosed.
func (db *Database) Close() error {
	db.lock.Lock()
	defer db.lock.Unlock()

	db.db = nil
	return nil
}

func (db *Database) Has(key []byte) (bool, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.db == nil {
		return false, tzedb.ErrClosed
	}
	_, ok := db.db[string(key)]
	return ok, nil
}

func (db *Database) Get(key []byte) ([]byte, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.db == nil {
		return nil, tzedb.ErrClosed
	}
	if entry, ok := db.db[string(key)]; ok {
		return common.CopyBytes(entry), nil
	}
	return nil, tzedb.ErrNotFound
}

func (db *Database) Put(key []byte, value []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.db == nil {
		return tzedb.ErrClosed
	}
	db.db[string(key)] = common.CopyBytes(value)
	return nil
}

func (db *Database) Delete(key []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.db == nil {
		return tzedb.ErrClosed
	}
	delete(db.db, string(key))
	return nil
}

// NewBatch returns a batch that applies its writes atomically on Write.
func (db *Database) NewBatch() tzedb.Batch {
	return &batch{db: db}
}

// NewIterator snapshots the matching keys, so later writes are not visible
// through it.
func (db *Database) NewIterator(prefix []byte, start []byte) tzedb.Iterator {
	db.lock.RLock()
	defer db.lock.RUnlock()

	var (
		pr   = string(prefix)
		st   = pr + string(start)
		keys []string
	)
	for key := range db.db {
		if strings.HasPrefix(key, pr) && key >= st {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	values := make([][]byte, len(keys))
	for i, key := range keys {
		values[i] = db.db[key]
	}
	return &iterator{index: -1, keys: keys, values: values}
}

func (db *Database) Stat() (string, error) {
	return fmt.Sprintf("memorydb: %d entries", db.Len()), nil
}

// Len returns the number of entries.
func (db *Database) Len() int {
	db.lock.RLock()
	defer db.lock.RUnlock()

	return len(db.db)
}

type keyvalue struct {
	key    string
	value  []byte
	delete bool
}

type batch struct {
	db     *Database
	writes []keyvalue
	size   int
}

func (b *batch) Put(key, value []byte) error {
	b.writes = append(b.writes, keyvalue{string(key), common.CopyBytes(value), false})
	b.size += len(key) + len(value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.writes = append(b.writes, keyvalue{key: string(key), delete: true})
	b.size += len(key)
	return nil
}

func (b *batch) ValueSize() int {
	return b.size
}

func (b *batch) Write() error {
	b.db.lock.Lock()
	defer b.db.lock.Unlock()

	if b.db.db == nil {
		return tzedb.ErrClosed
	}
	for _, kv := range b.writes {
		if kv.delete {
			delete(b.db.db, kv.key)
		} else {
			b.db.db[kv.key] = kv.value
		}
	}
	return nil
}

func (b *batch) Reset() {
	b.writes = b.writes[:0]
	b.size = 0
}

type iterator struct {
	index  int
	keys   []string
	values [][]byte
}

func (it *iterator) Next() bool {
	if it.index >= len(it.keys) {
		return false
	}
	it.index++
	return it.index < len(it.keys)
}

func (it *iterator) Error() error {
	return nil
}

func (it *iterator) Key() []byte {
	if it.index < 0 || it.index >= len(it.keys) {
		return nil
	}
	return []byte(it.keys[it.index])
}

func (it *iterator) Value() []byte {
	if it.index < 0 || it.index >= len(it.keys) {
		return nil
	}
	return it.values[it.index]
}

func (it *iterator) Release() {
	it.index, it.keys, it.values = -1, nil, nil
}
