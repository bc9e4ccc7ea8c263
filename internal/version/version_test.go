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

package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tzelabs/go-tze/params"
)

func TestWithCommit(t *testing.T) {
	assert.Equal(t, params.Version, WithCommit("", ""))
	assert.Equal(t, params.Version+"-0123abcd-20261019", WithCommit("0123abcdef99", "20261019"))
	assert.Equal(t, params.Version+"-20261019", WithCommit("abc", "20261019"))
}

func TestBuildInfoVCS(t *testing.T) {
	info := &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123abcdef99"},
		{Key: "vcs.time", Value: "2026-10-19T08:30:00Z"},
		{Key: "vcs.modified", Value: "true"},
	}}
	vcs, ok := buildInfoVCS(info)
	assert.True(t, ok)
	assert.Equal(t, VCSInfo{Commit: "0123abcdef99", Date: "20261019", Dirty: true}, vcs)

	_, ok = buildInfoVCS(&debug.BuildInfo{})
	assert.False(t, ok)
}
