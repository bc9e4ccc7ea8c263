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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/tzelabs/go-tze/common/hexutil"
	"github.com/tzelabs/go-tze/core/types"
	"github.com/tzelabs/go-tze/internal/flags"
	"github.com/tzelabs/go-tze/log"
	"github.com/tzelabs/go-tze/wire"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

// ErrInputTooLarge is returned for inputs longer than the decode limit.
var ErrInputTooLarge = errors.New("input exceeds decode limit")

var (
	jsonFlag = &cli.BoolFlag{
		Name:     "json",
		Usage:    "Print decoded bundles as JSON",
		Category: flags.DecodingCategory,
	}
	optionalFlag = &cli.BoolFlag{
		Name:     "optional",
		Usage:    "Inputs are transaction bundle slots (a count of zero or one bundles)",
		Category: flags.DecodingCategory,
	}
)

var decodeCommand = &cli.Command{
	Action:    decodeBundles,
	Name:      "decode",
	Usage:     "Decode encoded TZE bundles",
	ArgsUsage: "<hex | @file | -> ...",
	Flags:     append([]cli.Flag{jsonFlag, optionalFlag}, decodeFlags...),
	Description: `
Decodes each argument as a TZE bundle. An argument is either a hex string,
@path for a file holding raw bytes, or - for hex on standard input. Inputs are
decoded in parallel and reported in argument order.`,
}

var encodeCommand = &cli.Command{
	Action:    encodeBundle,
	Name:      "encode",
	Usage:     "Encode a JSON bundle to hex",
	ArgsUsage: "<file.json | ->",
	Flags:     []cli.Flag{optionalFlag},
}

// decodeResult is the outcome of decoding one input.
type decodeResult struct {
	Source string           `json:"source"`
	Size   int              `json:"size"`
	Bundle *types.TzeBundle `json:"bundle,omitempty"`
	Err    error            `json:"-"`
}

func (r *decodeResult) MarshalJSON() ([]byte, error) {
	type result decodeResult
	enc := struct {
		*result
		Error string `json:"error,omitempty"`
	}{result: (*result)(r)}
	if r.Err != nil {
		enc.Error = r.Err.Error()
	}
	return json.Marshal(enc)
}

// readInput resolves a command line argument into raw bundle bytes.
func readInput(arg string, stdin io.Reader) ([]byte, error) {
	switch {
	case arg == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		return decodeHexArg(string(data))
	case strings.HasPrefix(arg, "@"):
		return os.ReadFile(arg[1:])
	default:
		return decodeHexArg(arg)
	}
}

func decodeHexArg(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

// decodeInput decodes data as a single bundle, or as an optional bundle slot,
// reading at most limit bytes. Bytes left over after the value are an error.
func decodeInput(data []byte, limit uint64, optional bool) (*types.TzeBundle, error) {
	if limit > 0 && uint64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrInputTooLarge, len(data), limit)
	}
	s := wire.NewStream(bytes.NewReader(data), limit)
	var (
		bundle *types.TzeBundle
		err    error
	)
	if optional {
		bundle, err = types.DecodeOptionalTzeBundle(s)
	} else {
		bundle = new(types.TzeBundle)
		if err = s.Decode(bundle); err != nil {
			bundle = nil
		}
	}
	if err != nil {
		return nil, err
	}
	if s.Offset() != uint64(len(data)) {
		return nil, fmt.Errorf("%w: %d of %d bytes consumed", wire.ErrTrailingData, s.Offset(), len(data))
	}
	return bundle, nil
}

// decodeAll decodes all inputs with at most workers running at once. Results
// are returned in input order; individual failures are recorded per result.
func decodeAll(ctx context.Context, args []string, stdin io.Reader, limit uint64, optional bool, workers int) ([]*decodeResult, error) {
	if i := slices.Index(args, "-"); i >= 0 && slices.Contains(args[i+1:], "-") {
		return nil, fmt.Errorf("standard input given more than once")
	}
	results := make([]*decodeResult, len(args))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, arg := range args {
		results[i] = &decodeResult{Source: arg}
		if len(arg) > 66 {
			results[i].Source = arg[:32] + "..." + arg[len(arg)-32:]
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := results[i]
			data, err := readInput(arg, stdin)
			if err != nil {
				// Unreadable input aborts the run; malformed bytes do not.
				return fmt.Errorf("input %d: %w", i, err)
			}
			res.Size = len(data)
			res.Bundle, res.Err = decodeInput(data, limit, optional)
			if res.Err != nil {
				log.Debug("Failed to decode bundle", "input", i, "size", res.Size, "err", res.Err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func decodeBundles(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return fmt.Errorf("no inputs given")
	}
	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return err
	}
	results, err := decodeAll(ctx.Context, ctx.Args().Slice(), os.Stdin, cfg.Decode.InputLimit, ctx.Bool(optionalFlag.Name), cfg.Decode.Workers)
	if err != nil {
		return err
	}
	var failed int
	for i, res := range results {
		if res.Err != nil {
			failed++
		}
		if ctx.Bool(jsonFlag.Name) {
			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, string(out))
			continue
		}
		fmt.Fprintln(ctx.App.Writer, summarize(i, res))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed to decode", failed, len(results))
	}
	return nil
}

func summarize(i int, res *decodeResult) string {
	switch {
	case res.Err != nil:
		return fmt.Sprintf("#%d %s: error: %v", i, res.Source, res.Err)
	case res.Bundle == nil:
		return fmt.Sprintf("#%d %s: no bundle", i, res.Source)
	}
	value, err := res.Bundle.ValueOut()
	if err != nil {
		return fmt.Sprintf("#%d %s: %v, size %d, value out: %v", i, res.Source, res.Bundle, res.Size, err)
	}
	return fmt.Sprintf("#%d %s: %v, size %d, value out %v", i, res.Source, res.Bundle, res.Size, value)
}

func encodeBundle(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("need exactly one input file")
	}
	var (
		data []byte
		err  error
	)
	if name := ctx.Args().First(); name == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return err
	}
	enc, err := encodeJSON(data, ctx.Bool(optionalFlag.Name))
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, hexutil.Encode(enc))
	return nil
}

// encodeJSON converts a JSON bundle into its wire form. In optional mode a
// JSON null encodes the absent bundle.
func encodeJSON(data []byte, optional bool) ([]byte, error) {
	var bundle *types.TzeBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	switch {
	case optional:
		if err := types.EncodeOptionalTzeBundle(&buf, bundle); err != nil {
			return nil, err
		}
	case bundle == nil:
		return nil, fmt.Errorf("null bundle requires --%s", optionalFlag.Name)
	default:
		if err := wire.Encode(&buf, bundle); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
