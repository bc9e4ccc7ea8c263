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

package params

const (
	// MaxBlockBytes is the maximum serialized size of a block. Every TZE
	// container lives inside a block, so this is the ceiling used to derive
	// preallocation bounds.
	MaxBlockBytes uint64 = 2_000_000

	// MaxProtocolMessageLen is the largest peer-to-peer message a node accepts.
	MaxProtocolMessageLen uint64 = 2 * 1024 * 1024

	// MaxTzeBundlesPerTx is the number of TZE bundles a single transaction may
	// carry.
	MaxTzeBundlesPerTx uint64 = 1
)
