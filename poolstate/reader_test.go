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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libcommon "github.com/erigontech/ammstate/erigon-lib/common"
	"github.com/erigontech/ammstate/erigon-lib/kv"
	"github.com/erigontech/ammstate/erigon-lib/kv/memdb"
	"github.com/erigontech/ammstate/poolstate"
	"github.com/erigontech/ammstate/slotkey"
	"github.com/erigontech/ammstate/tickmath"
)

func putSlot(tx *memdb.Tx, address libcommon.Address, key libcommon.Key32, word [32]byte) {
	v := make([]byte, 0, 64)
	v = append(v, key[:]...)
	v = append(v, word[:]...)
	tx.PutDup(kv.PlainState, address[:], v)
}

func mustAddress(t *testing.T, s string) libcommon.Address {
	t.Helper()
	a, err := libcommon.HexToAddress(s)
	require.NoError(t, err)
	return a
}

func TestReader_V2(t *testing.T) {
	tx := memdb.New()
	addr := mustAddress(t, "0x1111111111111111111111111111111111111111")

	word := reservesWord(1000, 2000, 123456)
	putSlot(tx, addr, slotkey.Simple(slotkey.V2ReservesSlot), word)

	r := poolstate.NewReader()
	snap, err := r.Read(tx, poolstate.Descriptor{Address: addr, Protocol: poolstate.V2}, nil)
	require.NoError(t, err)
	require.NotNil(t, snap.Reserves)
	assert.Equal(t, "1000", snap.Reserves.Reserve0)
	assert.Equal(t, "2000", snap.Reserves.Reserve1)
	assert.Equal(t, uint32(123456), snap.Reserves.BlockTimestampLast)
	assert.Nil(t, snap.Header)
}

func TestReader_V3_MissingTickSpacing(t *testing.T) {
	tx := memdb.New()
	addr := mustAddress(t, "0x2222222222222222222222222222222222222222")
	r := poolstate.NewReader()
	_, err := r.Read(tx, poolstate.Descriptor{Address: addr, Protocol: poolstate.V3}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, poolstate.ErrMissingTickSpacing))
}

func TestReader_V4_MissingPoolID(t *testing.T) {
	tx := memdb.New()
	addr := mustAddress(t, "0x2222222222222222222222222222222222222222")
	spacing := int32(60)
	r := poolstate.NewReader()
	_, err := r.Read(tx, poolstate.Descriptor{Address: addr, Protocol: poolstate.V4, TickSpacing: &spacing}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, poolstate.ErrMissingPoolID))
}

func TestReader_V3_DefaultDialect_WithTicks(t *testing.T) {
	tx := memdb.New()
	addr := mustAddress(t, "0x3333333333333333333333333333333333333333")
	spacing := int32(60)

	header := slot0Word(1<<96, -120, 1, 2, 3, 4, true)
	putSlot(tx, addr, slotkey.Simple(slotkey.DefaultV3Dialect.Slot0), header)

	var liq [32]byte
	liq[31] = 42
	putSlot(tx, addr, slotkey.Simple(slotkey.DefaultV3Dialect.Liquidity), liq)

	wp := tickmath.WordPos(-120, spacing)
	var bitmap [32]byte
	bitmap[31] = 0x01 // bit 0
	putSlot(tx, addr, slotkey.BitmapSlot(wp, slotkey.DefaultV3Dialect.Bitmap), bitmap)

	tick := ((int32(wp) << 8) | 0) * spacing
	var tickWord [32]byte
	tickWord[31] = 7 // liquidityGross = 7, liquidityNet = 0 (still "initialized": nonzero word)
	putSlot(tx, addr, slotkey.TickSlot(tick, slotkey.DefaultV3Dialect.Ticks), tickWord)

	r := poolstate.NewReader()
	snap, err := r.Read(tx, poolstate.Descriptor{Address: addr, Protocol: poolstate.V3, TickSpacing: &spacing}, nil)
	require.NoError(t, err)
	require.NotNil(t, snap.Header)
	assert.Equal(t, int32(-120), snap.Header.Tick)
	assert.Equal(t, "42", snap.Liquidity)
	require.Len(t, snap.Bitmaps, 1)
	require.Len(t, snap.Ticks, 1)
	assert.Equal(t, tick, snap.Ticks[0].Tick)
	assert.Equal(t, "7", snap.Ticks[0].LiquidityGross)
}

func TestReader_V3_HeaderOnly_SkipsTicks(t *testing.T) {
	tx := memdb.New()
	addr := mustAddress(t, "0x4444444444444444444444444444444444444444")
	spacing := int32(60)

	header := slot0Word(1, 0, 0, 0, 0, 0, false)
	putSlot(tx, addr, slotkey.Simple(slotkey.DefaultV3Dialect.Slot0), header)
	var liq [32]byte
	putSlot(tx, addr, slotkey.Simple(slotkey.DefaultV3Dialect.Liquidity), liq)

	r := poolstate.NewReader()
	snap, err := r.Read(tx, poolstate.Descriptor{
		Address: addr, Protocol: poolstate.V3, TickSpacing: &spacing, HeaderOnly: true,
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, snap.Ticks)
	assert.Empty(t, snap.Bitmaps)
}

func TestReader_V3_ShiftedDialect(t *testing.T) {
	tx := memdb.New()
	addr := mustAddress(t, "0x5555555555555555555555555555555555555555")
	factory := mustAddress(t, "0x1F98431c8aD98523631AE4a59f267346ea31F984")
	spacing := int32(10)

	dialect := slotkey.V3DialectFor(&factory)
	require.Equal(t, uint8(5), dialect.Liquidity)

	var liq [32]byte
	liq[31] = 9
	putSlot(tx, addr, slotkey.Simple(dialect.Liquidity), liq)
	putSlot(tx, addr, slotkey.Simple(dialect.Slot0), slot0Word(1, 0, 0, 0, 0, 0, false))

	r := poolstate.NewReader()
	snap, err := r.Read(tx, poolstate.Descriptor{
		Address: addr, Protocol: poolstate.V3, TickSpacing: &spacing, Factory: &factory,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "9", snap.Liquidity)
}

func TestReader_V4(t *testing.T) {
	tx := memdb.New()
	addr := mustAddress(t, "0x6666666666666666666666666666666666666666")
	spacing := int32(1)
	var poolID [32]byte
	poolID[0] = 0xAB

	putSlot(tx, addr, slotkey.V4Field(poolID, slotkey.V4HeaderOffset), slot0Word(7, 5, 0, 0, 0, 0, true))
	var liq [32]byte
	liq[31] = 3
	putSlot(tx, addr, slotkey.V4Field(poolID, slotkey.V4LiquidityOffset), liq)

	r := poolstate.NewReader()
	snap, err := r.Read(tx, poolstate.Descriptor{
		Address: addr, Protocol: poolstate.V4, TickSpacing: &spacing,
	}, &poolID)
	require.NoError(t, err)
	require.NotNil(t, snap.PoolID)
	assert.Equal(t, poolID, *snap.PoolID)
	assert.Equal(t, int32(5), snap.Header.Tick)
	assert.Equal(t, "3", snap.Liquidity)
}

func TestReader_LiquidityOverflow(t *testing.T) {
	tx := memdb.New()
	addr := mustAddress(t, "0x7777777777777777777777777777777777777777")
	spacing := int32(60)
	putSlot(tx, addr, slotkey.Simple(slotkey.DefaultV3Dialect.Slot0), slot0Word(1, 0, 0, 0, 0, 0, false))
	var liq [32]byte
	liq[0] = 0x01 // bit above 128 set
	putSlot(tx, addr, slotkey.Simple(slotkey.DefaultV3Dialect.Liquidity), liq)

	r := poolstate.NewReader()
	_, err := r.Read(tx, poolstate.Descriptor{Address: addr, Protocol: poolstate.V3, TickSpacing: &spacing}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, poolstate.ErrLiquidityOverflow))
}
