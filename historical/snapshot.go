// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package historical

import (
	"fmt"

	libcommon "github.com/erigontech/ammstate/erigon-lib/common"
	"github.com/erigontech/ammstate/erigon-lib/kv"
	"github.com/erigontech/ammstate/poolstate"
)

// Read assembles the snapshot for one pool descriptor as of block height h
// (spec §4.E). It is structurally identical to poolstate.Reader.Read,
// substituting Reader.StorageAsOf for the live per-slot read — the
// descriptor's HeaderOnly flag is honored identically by both (spec §9's
// open question: the fast path is wired into both the current and
// historical paths, since nothing in spec §3/§4 restricts it to one).
func (r *Reader) Read(tx kv.Tx, d poolstate.Descriptor, poolID *[32]byte, h uint64) (*poolstate.Snapshot, error) {
	snap, err := poolstate.Assemble(historicalSource{reader: r, tx: tx, block: h}, d, poolID)
	if err != nil {
		return nil, fmt.Errorf("historical: pool %s as of block %d: %w", d.Address.Hex(), h, err)
	}
	snap.BlockHeight = &h
	return snap, nil
}

// historicalSource adapts Reader.StorageAsOf to poolstate.SlotSource so
// the same Assemble algorithm that drives the live reader drives this one.
type historicalSource struct {
	reader *Reader
	tx     kv.Tx
	block  uint64
}

func (s historicalSource) ReadSlot(address libcommon.Address, key libcommon.Key32) ([32]byte, error) {
	return s.reader.StorageAsOf(s.tx, address, key, s.block)
}
