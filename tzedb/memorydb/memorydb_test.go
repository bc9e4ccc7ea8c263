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

package memorydb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tzelabs/go-tze/tzedb"
	"github.com/tzelabs/go-tze/tzedb/dbtest"
)

func TestMemoryDB(t *testing.T) {
	t.Run("DatabaseSuite", func(t *testing.T) {
		dbtest.TestDatabaseSuite(t, func() tzedb.KeyValueStore {
			return New()
		})
	})
}

func TestClosed(t *testing.T) {
	db := New()
	assert.NoError(t, db.Put([]byte("k"), []byte("v")))
	b := db.NewBatch()
	b.Put([]byte("x"), nil)
	assert.NoError(t, db.Close())

	_, err := db.Get([]byte("k"))
	assert.ErrorIs(t, err, tzedb.ErrClosed)
	_, err = db.Has([]byte("k"))
	assert.ErrorIs(t, err, tzedb.ErrClosed)
	assert.ErrorIs(t, db.Put([]byte("k"), nil), tzedb.ErrClosed)
	assert.ErrorIs(t, db.Delete([]byte("k")), tzedb.ErrClosed)
	assert.ErrorIs(t, b.Write(), tzedb.ErrClosed)
}
