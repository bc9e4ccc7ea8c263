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

//go:build !js

// Package leveldb implements the key-value store on LevelDB.
package leveldb

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
	"github.com/tzelabs/go-tze/log"
	"github.com/tzelabs/go-tze/tzedb"
)

const (
	// minCache is the minimum amount of memory in megabytes to allocate to
	// leveldb read and write caching, split half and half.
	minCache = 16

	// minHandles is the minimum number of files handles to allocate to the
	// open database files.
	minHandles = 16
)

// Database is a persistent key-value store backed by LevelDB.
type Database struct {
	fn  string
	db  *leveldb.DB
	log log.Logger
}

// New opens (or creates) the LevelDB store at file.
func New(file string, cache int, handles int, readonly bool) (*Database, error) {
	if cache < minCache {
		cache = minCache
	}
	if handles < minHandles {
		handles = minHandles
	}
	options := &opt.Options{
		Filter:                 filter.NewBloomFilter(10),
		DisableSeeksCompaction: true,
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB, // Two of these are used internally
		ReadOnly:               readonly,
	}
	logger := log.New("database", file)
	logger.Debug("Allocated cache and file handles", "cache", cache, "handles", handles, "readonly", readonly)

	db, err := leveldb.OpenFile(file, options)
	if _, corrupted := err.(*lerrors.ErrCorrupted); corrupted {
		logger.Warn("Recovering corrupted database")
		db, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}
	return &Database{fn: file, db: db, log: logger}, nil
}

// NewMemory returns a LevelDB store kept entirely in memory.
func NewMemory() (*Database, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &Database{db: db, log: log.New("database", "leveldb-memory")}, nil
}

// Close flushes pending data and closes the store.
func (db *Database) Close() error {
	if err := db.db.Close(); err != nil && !errors.Is(err, leveldb.ErrClosed) {
		return err
	}
	return nil
}

func (db *Database) Has(key []byte) (bool, error) {
	ok, err := db.db.Has(key, nil)
	return ok, convertError(err)
}

func (db *Database) Get(key []byte) ([]byte, error) {
	dat, err := db.db.Get(key, nil)
	if err != nil {
		return nil, convertError(err)
	}
	return dat, nil
}

func (db *Database) Put(key []byte, value []byte) error {
	return convertError(db.db.Put(key, value, nil))
}

func (db *Database) Delete(key []byte) error {
	return convertError(db.db.Delete(key, nil))
}

func (db *Database) NewBatch() tzedb.Batch {
	return &batch{db: db.db, b: new(leveldb.Batch)}
}

func (db *Database) NewIterator(prefix []byte, start []byte) tzedb.Iterator {
	return db.db.NewIterator(bytesPrefixRange(prefix, start), nil)
}

// Stat returns the LevelDB internal statistics.
func (db *Database) Stat() (string, error) {
	var stats leveldb.DBStats
	if err := db.db.Stats(&stats); err != nil {
		return "", convertError(err)
	}
	var tables int
	for _, n := range stats.LevelTablesCounts {
		tables += n
	}
	return fmt.Sprintf("leveldb: levels=%d tables=%d size=%d read=%d write=%d memcomp=%d level0comp=%d nonlevel0comp=%d",
		len(stats.LevelSizes), tables, stats.LevelSizes.Sum(), stats.IORead, stats.IOWrite,
		stats.MemComp, stats.Level0Comp, stats.NonLevel0Comp), nil
}

// Path returns the path to the database directory.
func (db *Database) Path() string {
	return db.fn
}

type batch struct {
	db   *leveldb.DB
	b    *leveldb.Batch
	size int
}

func (b *batch) Put(key, value []byte) error {
	b.b.Put(key, value)
	b.size += len(key) + len(value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.b.Delete(key)
	b.size += len(key)
	return nil
}

func (b *batch) ValueSize() int {
	return b.size
}

func (b *batch) Write() error {
	return convertError(b.db.Write(b.b, nil))
}

func (b *batch) Reset() {
	b.b.Reset()
	b.size = 0
}

func convertError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, leveldb.ErrNotFound):
		return tzedb.ErrNotFound
	case errors.Is(err, leveldb.ErrClosed):
		return tzedb.ErrClosed
	}
	return err
}

// bytesPrefixRange returns the key range that satisfies both the prefix and
// the start position.
func bytesPrefixRange(prefix, start []byte) *util.Range {
	r := util.BytesPrefix(prefix)
	r.Start = append(r.Start, start...)
	return r
}
