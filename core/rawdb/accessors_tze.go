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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/golang/snappy"
	"github.com/tzelabs/go-tze/common"
	"github.com/tzelabs/go-tze/core/types"
	"github.com/tzelabs/go-tze/log"
	"github.com/tzelabs/go-tze/params"
	"github.com/tzelabs/go-tze/tzedb"
	"github.com/tzelabs/go-tze/wire"
)

// ErrCorruptEntry is returned when a stored value cannot be decoded.
var ErrCorruptEntry = errors.New("rawdb: corrupt TZE entry")

// HasTzeBundle reports whether a bundle is stored for the transaction.
func HasTzeBundle(db tzedb.KeyValueReader, txHash common.Hash) (bool, error) {
	return db.Has(tzeBundleKey(txHash))
}

// ReadTzeBundle retrieves the bundle of a transaction. It returns
// tzedb.ErrNotFound if there is none.
func ReadTzeBundle(db tzedb.KeyValueReader, txHash common.Hash) (*types.TzeBundle, error) {
	data, err := db.Get(tzeBundleKey(txHash))
	if err != nil {
		return nil, err
	}
	bundle, err := decodeStoredBundle(data)
	if err != nil {
		log.Debug("Invalid stored TZE bundle", "hash", txHash, "err", err)
		return nil, err
	}
	return bundle, nil
}

// WriteTzeBundle stores the bundle of a transaction, compressed.
func WriteTzeBundle(db tzedb.KeyValueWriter, txHash common.Hash, bundle *types.TzeBundle) error {
	enc, err := wire.EncodeToBytes(bundle)
	if err != nil {
		return err
	}
	if err := db.Put(tzeBundleKey(txHash), snappy.Encode(nil, enc)); err != nil {
		return fmt.Errorf("failed to store TZE bundle: %w", err)
	}
	return nil
}

// DeleteTzeBundle removes the bundle of a transaction.
func DeleteTzeBundle(db tzedb.KeyValueWriter, txHash common.Hash) error {
	if err := db.Delete(tzeBundleKey(txHash)); err != nil {
		return fmt.Errorf("failed to delete TZE bundle: %w", err)
	}
	return nil
}

// decodeStoredBundle decompresses and decodes a stored bundle. The
// decompressed size is checked against the block size limit before any
// buffer is allocated for it.
func decodeStoredBundle(data []byte) (*types.TzeBundle, error) {
	size, err := snappy.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
	}
	if uint64(size) > params.MaxBlockBytes {
		return nil, fmt.Errorf("%w: bundle of %d bytes exceeds block size", ErrCorruptEntry, size)
	}
	enc, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
	}
	bundle := new(types.TzeBundle)
	if err := wire.DecodeBytes(enc, bundle); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptEntry, err)
	}
	return bundle, nil
}

// ReadTzeOutput retrieves a single indexed output. It returns
// tzedb.ErrNotFound if the outpoint is unknown.
func ReadTzeOutput(db tzedb.KeyValueReader, op types.TzeOutPoint) (*types.TzeOut, error) {
	data, err := db.Get(tzeOutputKey(op))
	if err != nil {
		return nil, err
	}
	out := new(types.TzeOut)
	if err := wire.DecodeBytes(data, out); err != nil {
		return nil, fmt.Errorf("%w: output %v: %w", ErrCorruptEntry, op, err)
	}
	return out, nil
}

// WriteTzeOutputs indexes every output of a transaction by outpoint, so that
// the precondition for a spending input can be found.
func WriteTzeOutputs(db tzedb.KeyValueWriter, txHash common.Hash, outputs []types.TzeOut) error {
	w := wire.NewEncoderBuffer(nil)
	defer w.Flush()

	for i := range outputs {
		w.Reset(nil)
		if err := outputs[i].EncodeWire(w); err != nil {
			return err
		}
		if err := db.Put(tzeOutputKey(types.NewTzeOutPoint(txHash, i)), w.ToBytes()); err != nil {
			return fmt.Errorf("failed to store TZE output: %w", err)
		}
	}
	return nil
}

// DeleteTzeOutput removes a single indexed output, e.g. once it is spent.
func DeleteTzeOutput(db tzedb.KeyValueWriter, op types.TzeOutPoint) error {
	if err := db.Delete(tzeOutputKey(op)); err != nil {
		return fmt.Errorf("failed to delete TZE output: %w", err)
	}
	return nil
}

// ReadTzeOutputs returns all indexed outputs of a transaction that are still
// present, keyed by index.
func ReadTzeOutputs(db tzedb.Iteratee, txHash common.Hash) (map[uint32]*types.TzeOut, error) {
	it := db.NewIterator(tzeOutputTxPrefix(txHash), nil)
	defer it.Release()

	outputs := make(map[uint32]*types.TzeOut)
	for it.Next() {
		key := it.Key()
		if len(key) != tzeOutputKeyLength {
			continue
		}
		out := new(types.TzeOut)
		if err := wire.DecodeBytes(it.Value(), out); err != nil {
			return nil, fmt.Errorf("%w: output key %x: %w", ErrCorruptEntry, key, err)
		}
		outputs[binary.BigEndian.Uint32(key[len(key)-4:])] = out
	}
	return outputs, it.Error()
}

// WriteTzeTransaction stores a bundle together with its output index in one
// batch.
func WriteTzeTransaction(db tzedb.Batcher, txHash common.Hash, bundle *types.TzeBundle) error {
	batch := db.NewBatch()
	if err := WriteTzeBundle(batch, txHash, bundle); err != nil {
		return err
	}
	if err := WriteTzeOutputs(batch, txHash, bundle.Outputs); err != nil {
		return err
	}
	return batch.Write()
}

// IterateTzeBundles calls fn for every stored bundle in key order. Iteration
// stops at the first error returned by fn or met while decoding.
func IterateTzeBundles(db tzedb.Iteratee, fn func(txHash common.Hash, bundle *types.TzeBundle) error) error {
	it := db.NewIterator(tzeBundlePrefix, nil)
	defer it.Release()

	for it.Next() {
		key := it.Key()
		if len(key) != tzeBundleKeyLength {
			continue
		}
		txHash := common.BytesToHash(key[len(tzeBundlePrefix):])
		bundle, err := decodeStoredBundle(it.Value())
		if err != nil {
			return fmt.Errorf("bundle %v: %w", txHash, err)
		}
		if err := fn(txHash, bundle); err != nil {
			return err
		}
	}
	return it.Error()
}

// ReadDatabaseVersion retrieves the schema version, or nil if unset.
func ReadDatabaseVersion(db tzedb.KeyValueReader) (*uint64, error) {
	data, err := db.Get(databaseVersionKey)
	if errors.Is(err, tzedb.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	if len(data) != 8 {
		return nil, fmt.Errorf("%w: database version %x", ErrCorruptEntry, data)
	}
	version := binary.BigEndian.Uint64(data)
	return &version, nil
}

// WriteDatabaseVersion stores the schema version.
func WriteDatabaseVersion(db tzedb.KeyValueWriter, version uint64) error {
	return db.Put(databaseVersionKey, binary.BigEndian.AppendUint64(nil, version))
}

// isBundleKey reports whether key belongs to the bundle table.
func isBundleKey(key []byte) bool {
	return len(key) == tzeBundleKeyLength && bytes.HasPrefix(key, tzeBundlePrefix)
}

// isOutputKey reports whether key belongs to the output index.
func isOutputKey(key []byte) bool {
	return len(key) == tzeOutputKeyLength && bytes.HasPrefix(key, tzeOutputPrefix)
}
