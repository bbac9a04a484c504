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
	"testing"

	roaring "github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libcommon "github.com/erigontech/ammstate/erigon-lib/common"
	"github.com/erigontech/ammstate/erigon-lib/kv"
	"github.com/erigontech/ammstate/erigon-lib/kv/memdb"
	"github.com/erigontech/ammstate/historical"
)

func word32(b byte) [32]byte {
	var w [32]byte
	w[31] = b
	return w
}

// buildHistoryFixture is spec §8 scenario 5: history index {100,200,300},
// changeset pre-values {100->v0, 200->v1, 300->v2}, live value v3.
func buildHistoryFixture(t *testing.T) (tx *memdb.Tx, addr libcommon.Address, key libcommon.Key32) {
	t.Helper()
	tx = memdb.New()
	var err error
	addr, err = libcommon.HexToAddress("0x9999999999999999999999999999999999999999")
	require.NoError(t, err)
	key = libcommon.Key32{0x01}

	bm := roaring.New()
	bm.AddMany([]uint32{100, 200, 300})
	shardBytes, err := bm.MarshalBinary()
	require.NoError(t, err)
	tx.Put(kv.E2StorageHistory, kv.StorageHistoryKey(addr, key, kv.ShardSuffixFinal), shardBytes)

	putChange := func(block uint64, preValue [32]byte) {
		subkey := kv.StorageChangeSetSubkey(addr, 0, key)
		v := append(append([]byte(nil), subkey...), preValue[:]...)
		tx.PutDup(kv.StorageChangeSetDeprecated, kv.EncodeBlockNumber(block), v)
	}
	putChange(100, word32(0xA0)) // v0
	putChange(200, word32(0xA1)) // v1
	putChange(300, word32(0xA2)) // v2

	// live value v3
	v := append(append([]byte(nil), key[:]...), word32(0xA3)[:]...)
	tx.PutDup(kv.PlainState, addr[:], v)

	return tx, addr, key
}

func TestStorageAsOf_NextFutureChange(t *testing.T) {
	tx, addr, key := buildHistoryFixture(t)
	r := historical.NewReader()

	cases := []struct {
		h    uint64
		want byte
	}{
		{50, 0xA0},
		{100, 0xA1},
		{199, 0xA1},
		{200, 0xA2},
		{299, 0xA2},
		{300, 0xA3},
		{350, 0xA3},
	}
	for _, c := range cases {
		got, err := r.StorageAsOf(tx, addr, key, c.h)
		require.NoError(t, err)
		assert.Equal(t, word32(c.want), got, "h=%d", c.h)
	}
}

func TestStorageAsOf_NoHistory_FallsBackToLive(t *testing.T) {
	tx := memdb.New()
	addr, err := libcommon.HexToAddress("0x8888888888888888888888888888888888888888")
	require.NoError(t, err)
	key := libcommon.Key32{0x02}

	v := append(append([]byte(nil), key[:]...), word32(0x42)[:]...)
	tx.PutDup(kv.PlainState, addr[:], v)

	r := historical.NewReader()
	got, err := r.StorageAsOf(tx, addr, key, 12345)
	require.NoError(t, err)
	assert.Equal(t, word32(0x42), got)
}

// TestStorageAsOf_Idempotent is the spec §8 historical-idempotence
// property: repeated queries for the same (address, key, h) agree.
func TestStorageAsOf_Idempotent(t *testing.T) {
	tx, addr, key := buildHistoryFixture(t)
	r := historical.NewReader()
	first, err := r.StorageAsOf(tx, addr, key, 150)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := r.StorageAsOf(tx, addr, key, 150)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
