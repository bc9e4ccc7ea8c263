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

package debug

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tzelabs/go-tze/log"
	"github.com/urfave/cli/v2"
)

func newContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range Flags {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestSetupLogFile(t *testing.T) {
	defer log.SetDefault(log.Root())
	path := filepath.Join(t.TempDir(), "logs", "tze.log")
	ctx := newContext(t, "--log.file", path, "--log.format", "logfmt", "--verbosity", "4")
	require.NoError(t, Setup(ctx))
	defer Exit()

	log.Debug("debug line", "k", "v")
	log.Trace("trace line")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug line")
	assert.Contains(t, string(data), "Logging configured")
	assert.False(t, strings.Contains(string(data), "trace line"))
}

func TestSetupUnknownFormat(t *testing.T) {
	ctx := newContext(t, "--log.format", "xml")
	assert.EqualError(t, Setup(ctx), "unknown log format: xml")
}
