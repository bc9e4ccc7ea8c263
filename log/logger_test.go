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

package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWriteTimeTermFormat(t *testing.T) {
	var b bytes.Buffer
	writeTimeTermFormat(&b, time.Date(2026, 3, 7, 9, 5, 2, 45_000_000, time.UTC))
	assert.Equal(t, "03-07|09:05:02.045", b.String())
}

func TestTerminalHandler(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(NewTerminalHandlerWithLevel(&out, LevelInfo, false))
	l.Debug("hidden")
	l.Info("Decoded bundle", "inputs", 2, "value", 2_100_000, "err", errors.New("bad thing"))

	line := out.String()
	assert.True(t, strings.HasPrefix(line, "INFO ["), line)
	assert.Contains(t, line, "] Decoded bundle ")
	assert.Contains(t, line, "inputs=2")
	assert.Contains(t, line, "value=2,100,000")
	assert.Contains(t, line, `err="bad thing"`)
	assert.NotContains(t, line, "hidden")
	assert.Equal(t, 1, strings.Count(line, "\n"))
}

func TestWithAttrs(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(NewTerminalHandler(&out, false)).New("db", "memory")
	l.Trace("lookup", "key", "z01")
	assert.Contains(t, out.String(), "TRACE")
	assert.Contains(t, out.String(), "db=memory key=z01")
}

func TestOddAttributes(t *testing.T) {
	var out bytes.Buffer
	NewLogger(LogfmtHandler(&out)).Info("odd", "key")
	assert.Contains(t, out.String(), errorKey)
}

func TestJSONHandler(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(JSONHandlerWithLevel(&out, LevelWarn))
	l.Info("dropped")
	l.Warn("kept", "n", 1)
	assert.NotContains(t, out.String(), "dropped")
	assert.Contains(t, out.String(), `"lvl":"warn"`)
	assert.Contains(t, out.String(), `"msg":"kept"`)
}

func TestGlogHandler(t *testing.T) {
	var out bytes.Buffer
	h := NewGlogHandler(LogfmtHandler(&out))
	l := NewLogger(h)
	l.Debug("before")
	h.Verbosity(LevelInfo)
	child := l.New("sub", 1)
	child.Debug("after")
	assert.Contains(t, out.String(), "before")
	assert.NotContains(t, out.String(), "after")
}

func TestFromLegacyLevel(t *testing.T) {
	for lvl, want := range map[int]slog.Level{
		-1: LevelCrit, 0: LevelCrit, 1: LevelError, 2: LevelWarn,
		3: LevelInfo, 4: LevelDebug, 5: LevelTrace, 9: LevelTrace,
	} {
		assert.Equal(t, want, FromLegacyLevel(lvl), "level %d", lvl)
	}
}

func TestAppendUint64(t *testing.T) {
	assert.Equal(t, "99999", string(appendUint64(nil, 99999, false)))
	assert.Equal(t, "-1,000,000", string(appendInt64(nil, -1_000_000)))
	assert.Equal(t, "18,446,744,073,709,551,615", string(appendUint64(nil, ^uint64(0), false)))
}
