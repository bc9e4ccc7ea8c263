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
	"sync/atomic"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/tzelabs/go-tze/core/types"
	"github.com/tzelabs/go-tze/tzedb"
	"github.com/tzelabs/go-tze/wire"
)

// OutputReader resolves spent outpoints to their stored outputs through a
// memory cache of encoded outputs. It is safe for concurrent use.
type OutputReader struct {
	db     tzedb.KeyValueReader
	cleans *fastcache.Cache // nil if caching is disabled

	hits, misses atomic.Uint64
}

// NewOutputReader creates a reader over db with a cache of cacheSize bytes.
// A zero size disables caching.
func NewOutputReader(db tzedb.KeyValueReader, cacheSize int) *OutputReader {
	r := &OutputReader{db: db}
	if cacheSize > 0 {
		r.cleans = fastcache.New(cacheSize)
	}
	return r
}

// Lookup returns the output spent by op. It has the signature expected by
// tze.Registry.VerifyBundle.
func (r *OutputReader) Lookup(op types.TzeOutPoint) (*types.TzeOut, error) {
	key := tzeOutputKey(op)
	var enc []byte
	if r.cleans != nil {
		enc = r.cleans.Get(nil, key)
	}
	if enc != nil {
		r.hits.Add(1)
	} else {
		r.misses.Add(1)
		var err error
		if enc, err = r.db.Get(key); err != nil {
			return nil, err
		}
		if r.cleans != nil {
			r.cleans.Set(key, enc)
		}
	}
	out := new(types.TzeOut)
	if err := wire.DecodeBytes(enc, out); err != nil {
		return nil, fmt.Errorf("%w: output %v: %w", ErrCorruptEntry, op, err)
	}
	return out, nil
}

// Forget drops op from the cache, e.g. after the output was deleted.
func (r *OutputReader) Forget(op types.TzeOutPoint) {
	if r.cleans != nil {
		r.cleans.Del(tzeOutputKey(op))
	}
}

// Stats returns the number of cache hits and misses so far.
func (r *OutputReader) Stats() (hits, misses uint64) {
	return r.hits.Load(), r.misses.Load()
}

// Reset empties the cache.
func (r *OutputReader) Reset() {
	if r.cleans != nil {
		r.cleans.Reset()
	}
}
