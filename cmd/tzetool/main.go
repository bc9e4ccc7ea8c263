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

// tzetool decodes, encodes and stores transparent Zcash extension bundles.
package main

import (
	"fmt"
	"os"

	"github.com/tzelabs/go-tze/internal/debug"
	"github.com/tzelabs/go-tze/internal/flags"
	"github.com/urfave/cli/v2"
)

var app = flags.NewApp("transparent Zcash extension bundle tool")

func init() {
	app.Flags = append([]cli.Flag{configFileFlag}, debug.Flags...)
	app.Commands = []*cli.Command{
		decodeCommand,
		encodeCommand,
		dbCommand,
		dumpConfigCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		cfg, err := loadBaseConfig(ctx)
		if err != nil {
			return err
		}
		if err := applyLogConfig(ctx, &cfg.Log); err != nil {
			return err
		}
		return debug.Setup(ctx)
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
