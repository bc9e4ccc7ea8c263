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

// Package pebble implements the key-value store on Pebble.
package pebble

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/tzelabs/go-tze/log"
	"github.com/tzelabs/go-tze/tzedb"
)

const (
	// minCache is the minimum amount of memory in megabytes to allocate to
	// pebble read and write caching, split half and half.
	minCache = 16

	// minHandles is the minimum number of files handles to allocate to the
	// open database files.
	minHandles = 16
)

// Database is a persistent key-value store backed by Pebble.
type Database struct {
	fn string
	db *pebble.DB

	quitLock sync.RWMutex // guards closed against in-flight operations
	closed   bool

	log          log.Logger
	writeOptions *pebble.WriteOptions
}

// New opens (or creates) the Pebble store at file.
func New(file string, cache int, handles int, readonly bool) (*Database, error) {
	if cache < minCache {
		cache = minCache
	}
	if handles < minHandles {
		handles = minHandles
	}
	logger := log.New("database", file)
	logger.Debug("Allocated cache and file handles", "cache", cache, "handles", handles, "readonly", readonly)

	// Two memory tables, a frozen one and a live one, as in leveldb.
	memTableLimit := 2
	memTableSize := cache * 1024 * 1024 / 2 / memTableLimit

	opt := &pebble.Options{
		Cache:                       pebble.NewCache(int64(cache * 1024 * 1024)),
		MaxOpenFiles:                handles,
		MemTableSize:                uint64(memTableSize),
		MemTableStopWritesThreshold: memTableLimit,
		MaxConcurrentCompactions:    runtime.NumCPU,
		Levels: []pebble.LevelOptions{
			{TargetFileSize: 2 * 1024 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
			{TargetFileSize: 4 * 1024 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
			{TargetFileSize: 8 * 1024 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
			{TargetFileSize: 16 * 1024 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
		},
		ReadOnly: readonly,
	}
	return open(file, opt, logger)
}

// NewMemory returns a Pebble store on an in-memory filesystem.
func NewMemory() (*Database, error) {
	return open("", &pebble.Options{FS: vfs.NewMem()}, log.New("database", "pebble-memory"))
}

func open(file string, opt *pebble.Options, logger log.Logger) (*Database, error) {
	opt.Logger = pebbleLogger{logger}
	opt.EventListener = &pebble.EventListener{
		CompactionEnd: func(info pebble.CompactionInfo) {
			logger.Trace("Pebble compaction finished", "reason", info.Reason, "duration", info.TotalDuration)
		},
		WriteStallBegin: func(info pebble.WriteStallBeginInfo) {
			logger.Warn("Pebble write stall", "reason", info.Reason)
		},
	}
	db, err := pebble.Open(file, opt)
	if err != nil {
		return nil, err
	}
	return &Database{
		fn:           file,
		db:           db,
		log:          logger,
		writeOptions: pebble.NoSync,
	}, nil
}

// Close flushes pending data and closes the store. It is safe to call twice.
func (d *Database) Close() error {
	d.quitLock.Lock()
	defer d.quitLock.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return d.db.Close()
}

func (d *Database) Has(key []byte) (bool, error) {
	d.quitLock.RLock()
	defer d.quitLock.RUnlock()
	if d.closed {
		return false, tzedb.ErrClosed
	}
	_, closer, err := d.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	if err = closer.Close(); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Database) Get(key []byte) ([]byte, error) {
	d.quitLock.RLock()
	defer d.quitLock.RUnlock()
	if d.closed {
		return nil, tzedb.ErrClosed
	}
	dat, closer, err := d.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, tzedb.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	ret := make([]byte, len(dat))
	copy(ret, dat)
	if err = closer.Close(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (d *Database) Put(key []byte, value []byte) error {
	d.quitLock.RLock()
	defer d.quitLock.RUnlock()
	if d.closed {
		return tzedb.ErrClosed
	}
	return d.db.Set(key, value, d.writeOptions)
}

func (d *Database) Delete(key []byte) error {
	d.quitLock.RLock()
	defer d.quitLock.RUnlock()
	if d.closed {
		return tzedb.ErrClosed
	}
	return d.db.Delete(key, d.writeOptions)
}

func (d *Database) NewBatch() tzedb.Batch {
	return &batch{b: d.db.NewBatch(), db: d}
}

// Stat returns the Pebble metrics report.
func (d *Database) Stat() (string, error) {
	return d.db.Metrics().String(), nil
}

// Path returns the path to the database directory.
func (d *Database) Path() string {
	return d.fn
}

// upperBound returns the smallest key greater than every key with the given
// prefix, or nil if there is none.
func upperBound(prefix []byte) (limit []byte) {
	for i := len(prefix) - 1; i >= 0; i-- {
		c := prefix[i]
		if c == 0xff {
			continue
		}
		limit = make([]byte, i+1)
		copy(limit, prefix)
		limit[i] = c + 1
		break
	}
	return limit
}

type batch struct {
	b    *pebble.Batch
	db   *Database
	size int
}

func (b *batch) Put(key, value []byte) error {
	if err := b.b.Set(key, value, nil); err != nil {
		return err
	}
	b.size += len(key) + len(value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	if err := b.b.Delete(key, nil); err != nil {
		return err
	}
	b.size += len(key)
	return nil
}

func (b *batch) ValueSize() int {
	return b.size
}

func (b *batch) Write() error {
	b.db.quitLock.RLock()
	defer b.db.quitLock.RUnlock()
	if b.db.closed {
		return tzedb.ErrClosed
	}
	return b.b.Commit(b.db.writeOptions)
}

func (b *batch) Reset() {
	b.b.Reset()
	b.size = 0
}

// pebbleIterator adapts pebble's positioned iterator to the Next-first style
// of tzedb.Iterator.
type pebbleIterator struct {
	iter     *pebble.Iterator
	err      error
	moved    bool
	released bool
}

func (d *Database) NewIterator(prefix []byte, start []byte) tzedb.Iterator {
	iter, err := d.db.NewIter(&pebble.IterOptions{
		LowerBound: append(append([]byte{}, prefix...), start...),
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return &pebbleIterator{err: err, released: true}
	}
	iter.First()
	return &pebbleIterator{iter: iter, moved: true}
}

func (iter *pebbleIterator) Next() bool {
	if iter.iter == nil || iter.released {
		return false
	}
	if iter.moved {
		iter.moved = false
		return iter.iter.Valid()
	}
	return iter.iter.Next()
}

func (iter *pebbleIterator) Error() error {
	if iter.err != nil {
		return iter.err
	}
	if iter.iter == nil || iter.released {
		return nil
	}
	return iter.iter.Error()
}

func (iter *pebbleIterator) Key() []byte {
	if iter.iter == nil || iter.released || iter.moved || !iter.iter.Valid() {
		return nil
	}
	return iter.iter.Key()
}

func (iter *pebbleIterator) Value() []byte {
	if iter.iter == nil || iter.released || iter.moved || !iter.iter.Valid() {
		return nil
	}
	return iter.iter.Value()
}

func (iter *pebbleIterator) Release() {
	if !iter.released {
		iter.iter.Close()
		iter.released = true
	}
}

// pebbleLogger routes Pebble's internal messages to the database logger.
type pebbleLogger struct{ l log.Logger }

func (p pebbleLogger) Infof(format string, args ...interface{}) {
	p.l.Trace(fmt.Sprintf(format, args...))
}

func (p pebbleLogger) Errorf(format string, args ...interface{}) {
	p.l.Error(fmt.Sprintf(format, args...))
}

func (p pebbleLogger) Fatalf(format string, args ...interface{}) {
	p.l.Crit(fmt.Sprintf(format, args...))
	panic(fmt.Sprintf(format, args...))
}
