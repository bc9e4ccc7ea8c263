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

package rawdb

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tzelabs/go-tze/log"
	"github.com/tzelabs/go-tze/tzedb"
	"github.com/tzelabs/go-tze/tzedb/leveldb"
	"github.com/tzelabs/go-tze/tzedb/memorydb"
	"github.com/tzelabs/go-tze/tzedb/pebble"
)

// DatabaseVersion is the schema version written by this package.
const DatabaseVersion = 1

// Supported storage engines.
const (
	DBPebble  = "pebble"
	DBLeveldb = "leveldb"
	DBMemory  = "memory"
)

// OpenOptions contains the options to apply when opening a database.
type OpenOptions struct {
	Type      string // "leveldb" | "pebble" | "memory"; empty picks the existing one or pebble
	Directory string
	Cache     int // megabytes
	Handles   int
	ReadOnly  bool
}

// Open opens the key-value store described by o and checks its schema
// version. A fresh writable store gets the current version.
//
//	                   type == ""         type != ""
//	db is non-existent pebble default     specified type
//	db is existent     from db            specified type (if compatible)
func Open(o OpenOptions) (tzedb.KeyValueStore, error) {
	db, err := openKeyValueDatabase(o)
	if err != nil {
		return nil, err
	}
	version, err := ReadDatabaseVersion(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	switch {
	case version == nil && !o.ReadOnly:
		if err := WriteDatabaseVersion(db, DatabaseVersion); err != nil {
			db.Close()
			return nil, err
		}
	case version != nil && *version > DatabaseVersion:
		db.Close()
		return nil, fmt.Errorf("database version %d is newer than supported version %d", *version, DatabaseVersion)
	}
	return db, nil
}

func openKeyValueDatabase(o OpenOptions) (tzedb.KeyValueStore, error) {
	if o.Type == DBMemory {
		log.Info("Using in-memory database")
		return memorydb.New(), nil
	}
	if len(o.Type) != 0 && o.Type != DBLeveldb && o.Type != DBPebble {
		return nil, fmt.Errorf("unknown db.engine %v", o.Type)
	}
	existingDb := PreexistingDatabase(o.Directory)
	if len(existingDb) != 0 && len(o.Type) != 0 && o.Type != existingDb {
		return nil, fmt.Errorf("db.engine choice was %v but found pre-existing %v database in specified data directory", o.Type, existingDb)
	}
	if o.Type == DBLeveldb || existingDb == DBLeveldb {
		log.Info("Using leveldb as the backing database", "dir", o.Directory)
		db, err := leveldb.New(o.Directory, o.Cache, o.Handles, o.ReadOnly)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	log.Info("Using pebble as the backing database", "dir", o.Directory)
	db, err := pebble.New(o.Directory, o.Cache, o.Handles, o.ReadOnly)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// PreexistingDatabase checks whether a database is already present at path
// and returns its type, or the empty string.
func PreexistingDatabase(path string) string {
	if _, err := os.Stat(filepath.Join(path, "CURRENT")); err != nil {
		return ""
	}
	if matches, err := filepath.Glob(filepath.Join(path, "OPTIONS*")); len(matches) > 0 || err != nil {
		if err != nil {
			panic(err) // only possible if the pattern is malformed
		}
		return DBPebble
	}
	return DBLeveldb
}

// Stats summarises the contents of a TZE store.
type Stats struct {
	Bundles     uint64
	BundleBytes uint64 // compressed
	Outputs     uint64
	OutputBytes uint64
	Other       uint64
}

// InspectDatabase walks the whole keyspace and counts the entries of each
// table.
func InspectDatabase(db tzedb.Iteratee) (Stats, error) {
	it := db.NewIterator(nil, nil)
	defer it.Release()

	var stats Stats
	for it.Next() {
		key, size := it.Key(), uint64(len(it.Key())+len(it.Value()))
		switch {
		case isBundleKey(key):
			stats.Bundles++
			stats.BundleBytes += size
		case isOutputKey(key):
			stats.Outputs++
			stats.OutputBytes += size
		default:
			stats.Other++
		}
	}
	return stats, it.Error()
}
