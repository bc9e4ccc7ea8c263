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

// Package dbtest holds the conformance tests every tzedb backend must pass.
package dbtest

import (
	"bytes"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tzelabs/go-tze/tzedb"
)

// TestDatabaseSuite runs the backend-independent tests against stores made
// by New. Every call to New must return a fresh, empty store.
func TestDatabaseSuite(t *testing.T, New func() tzedb.KeyValueStore) {
	t.Run("Iterator", func(t *testing.T) {
		tests := []struct {
			content map[string]string
			prefix  string
			start   string
			order   []string
		}{
			// Empty databases should be iterable
			{map[string]string{}, "", "", nil},
			{map[string]string{}, "non-existent-prefix", "", nil},

			// Single-item databases should be iterable
			{map[string]string{"key": "val"}, "", "", []string{"key"}},
			{map[string]string{"key": "val"}, "k", "", []string{"key"}},
			{map[string]string{"key": "val"}, "l", "", nil},

			// Multi-item databases should be fully iterable
			{
				map[string]string{"k1": "v1", "k5": "v5", "k2": "v2", "k4": "v4", "k3": "v3"},
				"k", "",
				[]string{"k1", "k2", "k3", "k4", "k5"},
			},
			// Prefixes exclude neighbouring keyspaces
			{
				map[string]string{"z1": "a", "zo1": "b", "zo2": "c", "zp": "d", "y": "e"},
				"zo", "",
				[]string{"zo1", "zo2"},
			},
			// Start is relative to the prefix
			{
				map[string]string{"ka1": "a", "ka3": "c", "ka5": "e", "kb1": "f"},
				"ka", "2",
				[]string{"ka3", "ka5"},
			},
			{
				map[string]string{"ka1": "a", "ka3": "c"},
				"ka", "9",
				nil,
			},
		}
		for i, tt := range tests {
			db := New()
			for key, val := range tt.content {
				require.NoError(t, db.Put([]byte(key), []byte(val)), "test %d", i)
			}
			it := db.NewIterator([]byte(tt.prefix), []byte(tt.start))
			var got []string
			for it.Next() {
				got = append(got, string(it.Key()))
				assert.Equal(t, tt.content[string(it.Key())], string(it.Value()), "test %d", i)
			}
			require.NoError(t, it.Error(), "test %d", i)
			it.Release()
			assert.Equal(t, tt.order, got, "test %d", i)
			db.Close()
		}
	})

	t.Run("KeyValueOperations", func(t *testing.T) {
		db := New()
		defer db.Close()

		key := []byte("zfoo")
		ok, err := db.Has(key)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = db.Get(key)
		assert.ErrorIs(t, err, tzedb.ErrNotFound)

		value := []byte("hello world")
		require.NoError(t, db.Put(key, value))
		ok, err = db.Has(key)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := db.Get(key)
		require.NoError(t, err)
		assert.Equal(t, value, got)

		// The store keeps its own copy of the value.
		value[0] = 'H'
		got, err = db.Get(key)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello world"), got)

		require.NoError(t, db.Put(key, []byte("v2")))
		got, err = db.Get(key)
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)

		require.NoError(t, db.Delete(key))
		_, err = db.Get(key)
		assert.ErrorIs(t, err, tzedb.ErrNotFound)

		// Deleting a missing key is not an error.
		require.NoError(t, db.Delete([]byte("missing")))

		_, err = db.Stat()
		assert.NoError(t, err)
	})

	t.Run("Batch", func(t *testing.T) {
		db := New()
		defer db.Close()

		require.NoError(t, db.Put([]byte("gone"), []byte{1}))
		b := db.NewBatch()
		for _, k := range []string{"1", "2", "3", "4"} {
			require.NoError(t, b.Put([]byte(k), []byte{0x42}))
		}
		require.NoError(t, b.Delete([]byte("gone")))
		assert.Equal(t, 4*2+len("gone"), b.ValueSize())

		// Nothing is visible before Write.
		ok, err := db.Has([]byte("1"))
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, b.Write())
		assert.Equal(t, []string{"1", "2", "3", "4"}, iterateKeys(db.NewIterator(nil, nil)))

		b.Reset()
		assert.Equal(t, 0, b.ValueSize())
		require.NoError(t, b.Put([]byte("5"), nil))
		require.NoError(t, b.Write())
		assert.Equal(t, []string{"1", "2", "3", "4", "5"}, iterateKeys(db.NewIterator(nil, nil)))
	})

	t.Run("IteratorSnapshotKeys", func(t *testing.T) {
		db := New()
		defer db.Close()

		for _, k := range []string{"a", "b", "c"} {
			require.NoError(t, db.Put([]byte(k), []byte(k)))
		}
		it := db.NewIterator(nil, nil)
		defer it.Release()
		var keys [][]byte
		for it.Next() {
			keys = append(keys, bytes.Clone(it.Key()))
		}
		assert.Len(t, keys, 3)
		assert.True(t, slices.IsSortedFunc(keys, bytes.Compare))
		// Release is idempotent.
		it.Release()
	})
}

func iterateKeys(it tzedb.Iterator) []string {
	defer it.Release()
	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	return keys
}
