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

package pebble

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tzelabs/go-tze/tzedb"
	"github.com/tzelabs/go-tze/tzedb/dbtest"
)

func TestUpperBound(t *testing.T) {
	assert.Equal(t, []byte{0x01, 0x03}, upperBound([]byte{0x01, 0x02}), "upper bound should increment last byte")
	assert.Equal(t, []byte{0x02}, upperBound([]byte{0x01, 0xff}), "upper bound should increment previous byte")
	assert.Nil(t, upperBound([]byte{0xff, 0xff}), "upper bound should be nil for all 0xff")
	assert.Nil(t, upperBound([]byte{}), "upper bound should be nil for empty prefix")
}

func TestPebbleDB(t *testing.T) {
	t.Run("DatabaseSuite", func(t *testing.T) {
		dbtest.TestDatabaseSuite(t, func() tzedb.KeyValueStore {
			db, err := NewMemory()
			if err != nil {
				t.Fatal(err)
			}
			return db
		})
	})
}

func TestClosed(t *testing.T) {
	db, err := NewMemory()
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.NoError(t, db.Close())

	_, err = db.Get([]byte("k"))
	assert.ErrorIs(t, err, tzedb.ErrClosed)
	assert.ErrorIs(t, db.Put([]byte("k"), nil), tzedb.ErrClosed)
}

func TestReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pebble")
	db, err := New(dir, 0, 0, false)
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("zo"), []byte{1, 2, 3}))
	require.NoError(t, db.Close())

	db, err = New(dir, 0, 0, false)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.Get([]byte("zo"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
}
