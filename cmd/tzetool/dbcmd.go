// Copyright 2026 The go-tze Authors
// This file is part of go-tze.
//
// go-tze is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-tze is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-tze. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/tzelabs/go-tze/common"
	"github.com/tzelabs/go-tze/core/rawdb"
	"github.com/tzelabs/go-tze/core/types"
	"github.com/tzelabs/go-tze/internal/flags"
	"github.com/tzelabs/go-tze/log"
	"github.com/tzelabs/go-tze/tze"
	"github.com/tzelabs/go-tze/tze/stwo"
	"github.com/tzelabs/go-tze/tzedb"
	"github.com/urfave/cli/v2"
)

var outputCacheFlag = &cli.IntFlag{
	Name:     "cache.outputs",
	Usage:    "Megabytes of memory used to cache spent outputs during checks",
	Value:    16,
	Category: flags.DatabaseCategory,
}

var dbCommand = &cli.Command{
	Name:  "db",
	Usage: "Low level bundle database operations",
	Subcommands: []*cli.Command{
		{
			Action:    dbPut,
			Name:      "put",
			Usage:     "Decode a bundle and store it with its outputs",
			ArgsUsage: "<txhash> <hex | @file>",
			Flags:     append(append([]cli.Flag{optionalFlag}, databaseFlags...), decodeFlags...),
		},
		{
			Action:    dbGet,
			Name:      "get",
			Usage:     "Print a stored bundle as JSON",
			ArgsUsage: "<txhash>",
			Flags:     databaseFlags,
		},
		{
			Action:    dbOutput,
			Name:      "output",
			Usage:     "Print a stored output as JSON",
			ArgsUsage: "<txhash> <index>",
			Flags:     databaseFlags,
		},
		{
			Action:    dbDelete,
			Name:      "delete",
			Usage:     "Remove a bundle and its outputs",
			ArgsUsage: "<txhash>",
			Flags:     databaseFlags,
		},
		{
			Action: dbList,
			Name:   "list",
			Usage:  "List all stored bundles",
			Flags:  databaseFlags,
		},
		{
			Action: dbCheck,
			Name:   "check",
			Usage:  "Check every stored input against the output it spends",
			Flags:  append([]cli.Flag{outputCacheFlag}, databaseFlags...),
			Description: `
Resolves the prevout of every stored input and runs the registered extension
verifier on it. STWO proofs are only checked up to their envelope.`,
		},
		{
			Action: dbInspect,
			Name:   "inspect",
			Usage:  "Count stored entries and print backend statistics",
			Flags:  databaseFlags,
		},
	},
}

// ErrDatadirUsed is returned when another process holds the data directory.
var ErrDatadirUsed = errors.New("datadir already used by another process")

// lockedDatabase releases the data directory lock when closed.
type lockedDatabase struct {
	tzedb.KeyValueStore
	dirLock *flock.Flock
}

func (db *lockedDatabase) Close() error {
	err := db.KeyValueStore.Close()
	if db.dirLock != nil {
		if uerr := db.dirLock.Unlock(); err == nil {
			err = uerr
		}
	}
	return err
}

// openStore locks the data directory and opens the bundle database in it.
// Readers share the lock, writers hold it exclusively.
func openStore(cfg *tzeConfig, readonly bool) (tzedb.KeyValueStore, error) {
	opts := cfg.openOptions(readonly)
	if opts.Type == rawdb.DBMemory {
		return rawdb.Open(opts)
	}
	datadir := flags.ExpandPath(cfg.Database.DataDir)
	if err := os.MkdirAll(datadir, 0700); err != nil {
		return nil, err
	}
	dirLock := flock.New(filepath.Join(datadir, "LOCK"))
	tryLock := dirLock.TryLock
	if readonly {
		tryLock = dirLock.TryRLock
	}
	if locked, err := tryLock(); err != nil {
		return nil, err
	} else if !locked {
		return nil, ErrDatadirUsed
	}
	db, err := rawdb.Open(opts)
	if err != nil {
		dirLock.Unlock()
		return nil, err
	}
	return &lockedDatabase{KeyValueStore: db, dirLock: dirLock}, nil
}

func openDatabase(ctx *cli.Context, readonly bool) (tzedb.KeyValueStore, error) {
	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return nil, err
	}
	return openStore(&cfg, readonly)
}

func parseHash(s string) (common.Hash, error) {
	var h common.Hash
	if err := h.UnmarshalText([]byte(s)); err != nil {
		return h, fmt.Errorf("invalid transaction hash %q: %v", s, err)
	}
	return h, nil
}

func printJSON(ctx *cli.Context, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, string(out))
	return nil
}

func dbPut(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return fmt.Errorf("required arguments: %v", ctx.Command.ArgsUsage)
	}
	hash, err := parseHash(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return err
	}
	data, err := readInput(ctx.Args().Get(1), ctx.App.Reader)
	if err != nil {
		return err
	}
	bundle, err := decodeInput(data, cfg.Decode.InputLimit, ctx.Bool(optionalFlag.Name))
	if err != nil {
		return err
	}
	if bundle == nil {
		return errors.New("input holds no bundle")
	}
	db, err := openStore(&cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := rawdb.WriteTzeTransaction(db, hash, bundle); err != nil {
		return err
	}
	log.Info("Stored TZE bundle", "hash", hash, "inputs", len(bundle.Inputs), "outputs", len(bundle.Outputs))
	return nil
}

func dbGet(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("required arguments: %v", ctx.Command.ArgsUsage)
	}
	hash, err := parseHash(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	db, err := openDatabase(ctx, true)
	if err != nil {
		return err
	}
	defer db.Close()

	bundle, err := rawdb.ReadTzeBundle(db, hash)
	if err != nil {
		return fmt.Errorf("bundle %v: %w", hash, err)
	}
	return printJSON(ctx, bundle)
}

func dbOutput(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return fmt.Errorf("required arguments: %v", ctx.Command.ArgsUsage)
	}
	hash, err := parseHash(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	index, err := strconv.ParseUint(ctx.Args().Get(1), 10, 32)
	if err != nil {
		return fmt.Errorf("invalid output index: %v", err)
	}
	db, err := openDatabase(ctx, true)
	if err != nil {
		return err
	}
	defer db.Close()

	op := types.TzeOutPoint{Hash: hash, Index: uint32(index)}
	out, err := rawdb.ReadTzeOutput(db, op)
	if err != nil {
		return fmt.Errorf("output %v: %w", op, err)
	}
	return printJSON(ctx, out)
}

func dbDelete(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("required arguments: %v", ctx.Command.ArgsUsage)
	}
	hash, err := parseHash(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	db, err := openDatabase(ctx, false)
	if err != nil {
		return err
	}
	defer db.Close()

	outputs, err := rawdb.ReadTzeOutputs(db, hash)
	if err != nil {
		return err
	}
	batch := db.NewBatch()
	for index := range outputs {
		if err := rawdb.DeleteTzeOutput(batch, types.TzeOutPoint{Hash: hash, Index: index}); err != nil {
			return err
		}
	}
	if err := rawdb.DeleteTzeBundle(batch, hash); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	log.Info("Deleted TZE bundle", "hash", hash, "outputs", len(outputs))
	return nil
}

func dbList(ctx *cli.Context) error {
	db, err := openDatabase(ctx, true)
	if err != nil {
		return err
	}
	defer db.Close()

	var count int
	err = rawdb.IterateTzeBundles(db, func(hash common.Hash, bundle *types.TzeBundle) error {
		count++
		value, err := bundle.ValueOut()
		if err != nil {
			fmt.Fprintf(ctx.App.Writer, "%v %v value out: %v\n", hash, bundle, err)
			return nil
		}
		fmt.Fprintf(ctx.App.Writer, "%v %v value out %v\n", hash, bundle, value)
		return nil
	})
	if err != nil {
		return err
	}
	log.Debug("Listed TZE bundles", "count", count)
	return nil
}

// envelopeOnly accepts any proof that passed the STWO envelope checks.
type envelopeOnly struct{}

func (envelopeOnly) VerifyCairoProof(proof []byte, withPedersen bool) error {
	log.Trace("Skipping STARK proof check", "size", len(proof), "pedersen", withPedersen)
	return nil
}

func newCheckRegistry() (*tze.Registry, error) {
	registry := tze.NewRegistry()
	if err := stwo.Register(registry, envelopeOnly{}); err != nil {
		return nil, err
	}
	return registry, nil
}

func dbCheck(ctx *cli.Context) error {
	db, err := openDatabase(ctx, true)
	if err != nil {
		return err
	}
	defer db.Close()

	registry, err := newCheckRegistry()
	if err != nil {
		return err
	}
	reader := rawdb.NewOutputReader(db, ctx.Int(outputCacheFlag.Name)*1024*1024)
	bundles, failed, err := checkBundles(db, registry, reader, ctx.App.Writer)
	if err != nil {
		return err
	}
	hits, misses := reader.Stats()
	log.Info("Checked TZE bundles", "bundles", bundles, "failed", failed, "cachehits", hits, "cachemisses", misses)
	if failed > 0 {
		return fmt.Errorf("%d of %d bundles failed the check", failed, bundles)
	}
	return nil
}

// checkBundles verifies all stored bundles and reports failures to w.
func checkBundles(db tzedb.Iteratee, registry *tze.Registry, reader *rawdb.OutputReader, w io.Writer) (bundles, failed int, err error) {
	err = rawdb.IterateTzeBundles(db, func(hash common.Hash, bundle *types.TzeBundle) error {
		bundles++
		if err := registry.VerifyBundle(bundle, reader.Lookup); err != nil {
			failed++
			fmt.Fprintf(w, "%v: %v\n", hash, err)
		}
		return nil
	})
	return bundles, failed, err
}

func dbInspect(ctx *cli.Context) error {
	db, err := openDatabase(ctx, true)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := rawdb.InspectDatabase(db)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "bundles: %d (%d bytes)\noutputs: %d (%d bytes)\nother:   %d\n",
		stats.Bundles, stats.BundleBytes, stats.Outputs, stats.OutputBytes, stats.Other)
	showDBStats(ctx, db)
	return nil
}

func showDBStats(ctx *cli.Context, db tzedb.KeyValueStater) {
	stats, err := db.Stat()
	if err != nil {
		log.Warn("Failed to read database stats", "error", err)
		return
	}
	fmt.Fprintln(ctx.App.Writer, stats)
}
