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

// Package rawdb contains the low level accessors of the TZE store.
package rawdb

import (
	"encoding/binary"

	"github.com/tzelabs/go-tze/common"
	"github.com/tzelabs/go-tze/core/types"
)

// The fields below define the low level database schema prefixing.
var (
	// databaseVersionKey tracks the current database schema version.
	databaseVersionKey = []byte("TzeDatabaseVersion")

	tzeBundlePrefix = []byte("zb") // tzeBundlePrefix + txHash -> snappy(bundle)
	tzeOutputPrefix = []byte("zo") // tzeOutputPrefix + txHash + index (uint32 big endian) -> TzeOut
)

const (
	tzeBundleKeyLength = 2 + common.HashLength
	tzeOutputKeyLength = 2 + common.HashLength + 4
)

// tzeBundleKey = tzeBundlePrefix + txHash
func tzeBundleKey(txHash common.Hash) []byte {
	return append(append([]byte{}, tzeBundlePrefix...), txHash.Bytes()...)
}

// tzeOutputKey = tzeOutputPrefix + txHash + index (uint32 big endian)
func tzeOutputKey(op types.TzeOutPoint) []byte {
	key := make([]byte, 0, tzeOutputKeyLength)
	key = append(key, tzeOutputPrefix...)
	key = append(key, op.Hash.Bytes()...)
	return binary.BigEndian.AppendUint32(key, op.Index)
}

// tzeOutputTxPrefix returns the key prefix shared by all outputs of a
// transaction.
func tzeOutputTxPrefix(txHash common.Hash) []byte {
	return append(append([]byte{}, tzeOutputPrefix...), txHash.Bytes()...)
}
