// Copyright 2021 The Erigon Authors
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

package poolstate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erigontech/ammstate/poolstate"
)

func TestNewV2Snapshot_OnlyReservesPopulated(t *testing.T) {
	addr := mustAddress(t, "0xa1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1")
	snap := poolstate.NewV2Snapshot(addr, poolstate.Reserves{Reserve0: "1", Reserve1: "2", BlockTimestampLast: 3})
	assert.Equal(t, poolstate.V2, snap.Protocol)
	assert.NotNil(t, snap.Reserves)
	assert.Nil(t, snap.Header)
	assert.Nil(t, snap.PoolID)
}

func TestNewV3Snapshot_NoPoolID(t *testing.T) {
	addr := mustAddress(t, "0xb1b1b1b1b1b1b1b1b1b1b1b1b1b1b1b1b1b1b1b1")
	snap := poolstate.NewV3Snapshot(addr, poolstate.Header{Tick: 5}, "100", nil, nil)
	assert.Equal(t, poolstate.V3, snap.Protocol)
	assert.NotNil(t, snap.Header)
	assert.Nil(t, snap.Reserves)
	assert.Nil(t, snap.PoolID)
}

func TestNewV4Snapshot_HasPoolID(t *testing.T) {
	addr := mustAddress(t, "0xc1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1")
	var poolID [32]byte
	poolID[0] = 0x9
	snap := poolstate.NewV4Snapshot(addr, poolID, poolstate.Header{Tick: 1}, "7", nil, nil)
	assert.Equal(t, poolstate.V4, snap.Protocol)
	assert.Equal(t, poolID, *snap.PoolID)
	assert.Nil(t, snap.Reserves)
}
