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

// Package slotkey derives Solidity storage slot keys: pure, stateless
// functions from a pool's logical field identity (a mapping slot number, a
// tick, a word position, a V4 pool id) to the 32-byte key the plain-state
// table is keyed by.
package slotkey

import (
	libcommon "github.com/erigontech/ammstate/erigon-lib/common"
	"github.com/erigontech/ammstate/erigon-lib/crypto"
)

// V2ReservesSlot is the fixed storage slot of a V2 pair's packed reserves
// word.
const V2ReservesSlot = 8

// V4PoolsSlot is the mapping slot of the V4 singleton's root pools mapping.
const V4PoolsSlot = 6

// V4 per-pool field offsets, added to a pool's base slot.
const (
	V4HeaderOffset    = 0
	V4LiquidityOffset = 3
	V4TicksOffset     = 4
	V4BitmapOffset    = 5
)

// V3Dialect names the V3 mapping-slot layout a pool's factory uses.
// Defaults hold for the reference Uniswap V3 factory; one known clone
// factory inserts an extra slot between the header and the fee-growth
// globals, shifting liquidity/ticks/bitmap by +1.
type V3Dialect struct {
	Slot0     uint8
	Liquidity uint8
	Ticks     uint8
	Bitmap    uint8
}

// DefaultV3Dialect is the reference Uniswap V3 layout.
var DefaultV3Dialect = V3Dialect{Slot0: 0, Liquidity: 4, Ticks: 5, Bitmap: 6}

// shiftedV3Dialect is the +1-shifted clone layout.
var shiftedV3Dialect = V3Dialect{Slot0: 0, Liquidity: 5, Ticks: 6, Bitmap: 7}

// v3DialectsByFactory is a lookup, not a class hierarchy: new factory
// dialects are additions to this table, never new Go types.
var v3DialectsByFactory = map[libcommon.Address]V3Dialect{}

// RegisterV3Dialect associates a factory address with a non-default V3
// storage layout.
func RegisterV3Dialect(factory libcommon.Address, dialect V3Dialect) {
	v3DialectsByFactory[factory] = dialect
}

// V3DialectFor returns the storage layout for pools deployed by factory,
// falling back to DefaultV3Dialect when the factory is unregistered or
// absent (nil).
func V3DialectFor(factory *libcommon.Address) V3Dialect {
	if factory == nil {
		return DefaultV3Dialect
	}
	if d, found := v3DialectsByFactory[*factory]; found {
		return d
	}
	return DefaultV3Dialect
}

func init() {
	// The one known V3 clone that shifts mapping slots by +1. Registered
	// under its mainnet factory address.
	shifted, _ := libcommon.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984")
	v3DialectsByFactory[shifted] = shiftedV3Dialect
}

// Simple returns the 32-byte big-endian representation of a fixed storage
// slot number.
func Simple(slot uint8) libcommon.Key32 {
	var k libcommon.Key32
	k[31] = slot
	return k
}

// signExtend24 sign-extends a 24-bit two's-complement value (as an int32)
// into a full 32-byte big-endian buffer, matching Solidity's int24 ABI
// encoding rule.
func signExtend24(tick int32) []byte {
	buf := make([]byte, 32)
	fill := byte(0x00)
	if tick < 0 {
		fill = 0xFF
	}
	for i := range buf {
		buf[i] = fill
	}
	buf[29] = byte(tick >> 16)
	buf[30] = byte(tick >> 8)
	buf[31] = byte(tick)
	return buf
}

// signExtend16 sign-extends a 16-bit two's-complement value (as an int16)
// into a full 32-byte big-endian buffer, matching Solidity's int16 ABI
// encoding rule.
func signExtend16(wordPos int16) []byte {
	buf := make([]byte, 32)
	fill := byte(0x00)
	if wordPos < 0 {
		fill = 0xFF
	}
	for i := range buf {
		buf[i] = fill
	}
	buf[30] = byte(wordPos >> 8)
	buf[31] = byte(wordPos)
	return buf
}

func uint256Padded(v uint8) []byte {
	buf := make([]byte, 32)
	buf[31] = v
	return buf
}

// BitmapSlot derives the storage key of the tick-bitmap word at wordPos,
// within the mapping at mappingSlot: keccak256(sign_extend_16(wordPos) ||
// uint256(mappingSlot)).
func BitmapSlot(wordPos int16, mappingSlot uint8) libcommon.Key32 {
	return crypto.Keccak256(signExtend16(wordPos), uint256Padded(mappingSlot))
}

// TickSlot derives the storage key of a tick's primary info word, within
// the mapping at mappingSlot: keccak256(sign_extend_24(tick) ||
// uint256(mappingSlot)).
func TickSlot(tick int32, mappingSlot uint8) libcommon.Key32 {
	return crypto.Keccak256(signExtend24(tick), uint256Padded(mappingSlot))
}

// addOffset adds a small non-negative offset to a 32-byte big-endian base
// slot, matching Solidity's convention for locating fields within a
// contiguous struct that lives at a computed base slot.
func addOffset(base libcommon.Key32, offset uint8) libcommon.Key32 {
	out := base
	carry := uint16(offset)
	for i := 31; i >= 0 && carry != 0; i-- {
		sum := uint16(out[i]) + carry
		out[i] = byte(sum)
		carry = sum >> 8
	}
	return out
}

// V4Base derives the root storage slot of a V4 pool's struct:
// keccak256(bytes32(poolID) || uint256(V4PoolsSlot)).
func V4Base(poolID [32]byte) libcommon.Key32 {
	return crypto.Keccak256(poolID[:], uint256Padded(uint8(V4PoolsSlot)))
}

// V4Field derives the storage slot of one field within a V4 pool's struct,
// fieldOffset big-endian-added to the pool's base slot.
func V4Field(poolID [32]byte, fieldOffset uint8) libcommon.Key32 {
	return addOffset(V4Base(poolID), fieldOffset)
}

// V4TickSlot derives a V4 pool's tick-info slot: keccak256(sign_extend_24
// (tick) || bytes32(ticksMapBase)).
func V4TickSlot(poolID [32]byte, tick int32) libcommon.Key32 {
	base := V4Field(poolID, V4TicksOffset)
	return crypto.Keccak256(signExtend24(tick), base[:])
}

// V4BitmapSlot derives a V4 pool's bitmap-word slot: keccak256
// (sign_extend_16(wordPos) || bytes32(bitmapMapBase)).
func V4BitmapSlot(poolID [32]byte, wordPos int16) libcommon.Key32 {
	base := V4Field(poolID, V4BitmapOffset)
	return crypto.Keccak256(signExtend16(wordPos), base[:])
}
