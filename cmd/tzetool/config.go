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
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"unicode"

	"github.com/naoina/toml"
	"github.com/tzelabs/go-tze/core/rawdb"
	"github.com/tzelabs/go-tze/internal/debug"
	"github.com/tzelabs/go-tze/internal/flags"
	"github.com/tzelabs/go-tze/params"
	"github.com/urfave/cli/v2"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}
	dataDirFlag = &flags.DirectoryFlag{
		Name:     "datadir",
		Usage:    "Data directory for the bundle database",
		Value:    flags.DirectoryString(defaultDataDir()),
		Category: flags.DatabaseCategory,
	}
	dbEngineFlag = &cli.StringFlag{
		Name:     "db.engine",
		Usage:    "Backing database implementation to use ('pebble', 'leveldb' or 'memory')",
		Value:    "",
		Category: flags.DatabaseCategory,
	}
	cacheFlag = &cli.IntFlag{
		Name:     "cache",
		Usage:    "Megabytes of memory allocated to database caching",
		Value:    defaultConfig.Database.Cache,
		Category: flags.DatabaseCategory,
	}
	handlesFlag = &cli.IntFlag{
		Name:     "handles",
		Usage:    "Number of open file handles allowed to the database",
		Value:    defaultConfig.Database.Handles,
		Category: flags.DatabaseCategory,
	}
	inputLimitFlag = &cli.Uint64Flag{
		Name:     "limit",
		Usage:    "Maximum number of bytes read per encoded bundle",
		Value:    defaultConfig.Decode.InputLimit,
		Category: flags.DecodingCategory,
	}
	workersFlag = &cli.IntFlag{
		Name:     "workers",
		Usage:    "Number of inputs decoded in parallel",
		Value:    defaultConfig.Decode.Workers,
		Category: flags.DecodingCategory,
	}

	databaseFlags = []cli.Flag{dataDirFlag, dbEngineFlag, cacheFlag, handlesFlag}
	decodeFlags   = []cli.Flag{inputLimitFlag, workersFlag}
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type databaseConfig struct {
	DataDir string
	Engine  string `toml:",omitempty"`
	Cache   int
	Handles int
}

type decodeConfig struct {
	InputLimit uint64
	Workers    int
}

type logConfig struct {
	Verbosity int
	Format    string `toml:",omitempty"`
}

type tzeConfig struct {
	Database databaseConfig
	Decode   decodeConfig
	Log      logConfig
}

var defaultConfig = tzeConfig{
	Database: databaseConfig{
		DataDir: defaultDataDir(),
		Cache:   256,
		Handles: 256,
	},
	Decode: decodeConfig{
		InputLimit: params.MaxBlockBytes,
		Workers:    runtime.NumCPU(),
	},
	Log: logConfig{Verbosity: 3},
}

func defaultDataDir() string {
	if home := flags.HomeDir(); home != "" {
		return filepath.Join(home, ".tze")
	}
	return ""
}

func loadConfig(file string, cfg *tzeConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// loadBaseConfig returns the defaults overridden by the config file, if any,
// and then by the command line flags of the running command.
func loadBaseConfig(ctx *cli.Context) (tzeConfig, error) {
	cfg := defaultConfig
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if ctx.IsSet(dataDirFlag.Name) {
		cfg.Database.DataDir = ctx.String(dataDirFlag.Name)
	}
	if ctx.IsSet(dbEngineFlag.Name) {
		cfg.Database.Engine = ctx.String(dbEngineFlag.Name)
	}
	if ctx.IsSet(cacheFlag.Name) {
		cfg.Database.Cache = ctx.Int(cacheFlag.Name)
	}
	if ctx.IsSet(handlesFlag.Name) {
		cfg.Database.Handles = ctx.Int(handlesFlag.Name)
	}
	if ctx.IsSet(inputLimitFlag.Name) {
		cfg.Decode.InputLimit = ctx.Uint64(inputLimitFlag.Name)
	}
	if ctx.IsSet(workersFlag.Name) {
		cfg.Decode.Workers = ctx.Int(workersFlag.Name)
	}
	if ctx.IsSet(debug.VerbosityFlag.Name) {
		cfg.Log.Verbosity = ctx.Int(debug.VerbosityFlag.Name)
	}
	if ctx.IsSet(debug.LogFormatFlag.Name) {
		cfg.Log.Format = ctx.String(debug.LogFormatFlag.Name)
	}
	return cfg, checkConfig(&cfg)
}

func checkConfig(cfg *tzeConfig) error {
	switch cfg.Database.Engine {
	case "", rawdb.DBPebble, rawdb.DBLeveldb, rawdb.DBMemory:
	default:
		return fmt.Errorf("invalid database engine %q", cfg.Database.Engine)
	}
	if cfg.Decode.InputLimit == 0 {
		return errors.New("decode input limit must be positive")
	}
	if cfg.Decode.InputLimit > params.MaxProtocolMessageLen {
		return fmt.Errorf("decode input limit %d exceeds protocol message size %d", cfg.Decode.InputLimit, params.MaxProtocolMessageLen)
	}
	if cfg.Decode.Workers < 1 {
		cfg.Decode.Workers = 1
	}
	return nil
}

// applyLogConfig copies logging settings from the config file into the global
// flags that were not given on the command line, so debug.Setup sees them.
func applyLogConfig(ctx *cli.Context, cfg *logConfig) error {
	if !ctx.IsSet(debug.VerbosityFlag.Name) && cfg.Verbosity != debug.VerbosityFlag.Value {
		if err := ctx.Set(debug.VerbosityFlag.Name, strconv.Itoa(cfg.Verbosity)); err != nil {
			return err
		}
	}
	if !ctx.IsSet(debug.LogFormatFlag.Name) && cfg.Format != "" {
		if err := ctx.Set(debug.LogFormatFlag.Name, cfg.Format); err != nil {
			return err
		}
	}
	return nil
}

func (cfg *tzeConfig) openOptions(readonly bool) rawdb.OpenOptions {
	return rawdb.OpenOptions{
		Type:      cfg.Database.Engine,
		Directory: filepath.Join(flags.ExpandPath(cfg.Database.DataDir), "tzedata"),
		Cache:     cfg.Database.Cache,
		Handles:   cfg.Database.Handles,
		ReadOnly:  readonly,
	}
}

var dumpConfigCommand = &cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Export configuration values in a TOML format",
	ArgsUsage:   "<dumpfile (optional)>",
	Flags:       append(append([]cli.Flag{}, databaseFlags...), decodeFlags...),
	Description: `Export configuration values in TOML format (to stdout by default).`,
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	dump.WriteString("# Note: log file settings are only available as flags.\n\n")
	dump.Write(out)
	return nil
}
