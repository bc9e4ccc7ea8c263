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

package flags

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandPath(t *testing.T) {
	home := HomeDir()
	os.Setenv("TZE_TEST_DIR", "/var/lib")
	defer os.Unsetenv("TZE_TEST_DIR")

	tests := []struct{ in, want string }{
		{"/home/someuser/tmp", "/home/someuser/tmp"},
		{"~/tmp", filepath.Join(home, "tmp")},
		{"~thisOtherUser/b/", "~thisOtherUser/b"},
		{"$TZE_TEST_DIR/tze", "/var/lib/tze"},
		{"/a/b/../c", "/a/c"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, ExpandPath(test.in), "input %q", test.in)
	}
}

func TestDirectoryString(t *testing.T) {
	var s DirectoryString
	assert.NoError(t, s.Set("/tmp/x/../y"))
	assert.Equal(t, "/tmp/y", s.String())
}
