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

package historical_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libcommon "github.com/erigontech/ammstate/erigon-lib/common"
	"github.com/erigontech/ammstate/erigon-lib/kv"
	"github.com/erigontech/ammstate/erigon-lib/kv/memdb"
	"github.com/erigontech/ammstate/historical"
	"github.com/erigontech/ammstate/poolstate"
	"github.com/erigontech/ammstate/slotkey"
)

func v2ReservesWordHist(reserve0, reserve1 int64, ts uint32) [32]byte {
	full := new(big.Int).SetInt64(reserve0)
	full.Or(full, new(big.Int).Lsh(big.NewInt(reserve1), 112))
	full.Or(full, new(big.Int).Lsh(big.NewInt(int64(ts)), 224))
	var w [32]byte
	b := full.Bytes()
	copy(w[32-len(b):], b)
	return w
}

func putLiveSlot(tx *memdb.Tx, address libcommon.Address, key libcommon.Key32, word [32]byte) {
	v := append(append([]byte(nil), key[:]...), word[:]...)
	tx.PutDup(kv.PlainState, address[:], v)
}

// TestRead_NoHistoryMatchesLive exercises the "no future change" branch of
// StorageAsOf for every slot a V2 snapshot touches, so the historical
// snapshot must equal the live one except for BlockHeight.
func TestRead_NoHistoryMatchesLive(t *testing.T) {
	tx := memdb.New()
	addr, err := libcommon.HexToAddress("0xaaaabbbbccccddddeeeeffff1111222233334444")
	require.NoError(t, err)
	putLiveSlot(tx, addr, slotkey.Simple(slotkey.V2ReservesSlot), v2ReservesWordHist(500, 700, 99))

	d := poolstate.Descriptor{Address: addr, Protocol: poolstate.V2}

	liveSnap, err := poolstate.NewReader().Read(tx, d, nil)
	require.NoError(t, err)

	h := uint64(42)
	histSnap, err := historical.NewReader().Read(tx, d, nil, h)
	require.NoError(t, err)

	require.NotNil(t, histSnap.BlockHeight)
	assert.Equal(t, h, *histSnap.BlockHeight)
	assert.Equal(t, liveSnap.Reserves, histSnap.Reserves)
}
