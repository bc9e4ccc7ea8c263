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

// Package version reports build version information.
package version

import (
	"runtime/debug"
	"time"

	"github.com/tzelabs/go-tze/params"
)

const ourPath = "github.com/tzelabs/go-tze"

const (
	govcsTimeLayout = "2006-01-02T15:04:05Z"
	ourTimeLayout   = "20060102"
)

// Set at link time by release builds.
var gitCommit, gitDate string

// VCSInfo represents the git repository state.
type VCSInfo struct {
	Commit string // head commit hash
	Date   string // commit time in YYYYMMDD format
	Dirty  bool
}

// VCS returns version control information of the current executable.
func VCS() (VCSInfo, bool) {
	if gitCommit != "" {
		return VCSInfo{Commit: gitCommit, Date: gitDate}, true
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Path == ourPath {
		return buildInfoVCS(info)
	}
	return VCSInfo{}, false
}

func buildInfoVCS(info *debug.BuildInfo) (s VCSInfo, ok bool) {
	for _, v := range info.Settings {
		switch v.Key {
		case "vcs.revision":
			s.Commit = v.Value
		case "vcs.modified":
			s.Dirty = v.Value == "true"
		case "vcs.time":
			if t, err := time.Parse(govcsTimeLayout, v.Value); err == nil {
				s.Date = t.Format(ourTimeLayout)
			}
		}
	}
	return s, s.Commit != "" && s.Date != ""
}

// WithCommit appends the short commit hash and date to the release version.
func WithCommit(gitCommit, gitDate string) string {
	vsn := params.Version
	if len(gitCommit) >= 8 {
		vsn += "-" + gitCommit[:8]
	}
	if gitDate != "" {
		vsn += "-" + gitDate
	}
	return vsn
}
