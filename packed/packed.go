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

// Package packed unpacks the fixed-width fields Solidity stores
// right-to-left (least-significant bits first) in a single 256-bit storage
// word. Every function here is pure and total: a zero word decodes to a
// zero-valued struct, never an error.
package packed

import (
	"github.com/holiman/uint256"
)

// Reserves is the decoded form of a Uniswap-V2-style packed reserves word.
type Reserves struct {
	Reserve0           *uint256.Int
	Reserve1           *uint256.Int
	BlockTimestampLast uint32
}

// Slot0 is the decoded form of a V3/V4-style packed header word.
type Slot0 struct {
	SqrtPriceX96              *uint256.Int
	Tick                      int32
	ObservationIndex          uint16
	ObservationCardinality    uint16
	ObservationCardinalityNext uint16
	FeeProtocol               uint8
	Unlocked                  bool
}

// TickPrimary is the decoded form of a tick's primary info word.
type TickPrimary struct {
	LiquidityGross *uint256.Int // u128, stored in the low half of *uint256.Int
	LiquidityNet   *big128       // i128, sign-extended
	Initialized    bool
}

// big128 carries a signed 128-bit value as a sign plus a magnitude, since
// the standard library and uint256 both model only unsigned fixed widths.
type big128 struct {
	Neg bool
	Abs *uint256.Int
}

// Int64 reports the value as an int64, for callers certain it fits; it
// truncates silently otherwise, matching big128's role as a presentation
// type rather than an arithmetic one.
func (b *big128) Int64() int64 {
	v := int64(b.Abs.Uint64())
	if b.Neg {
		return -v
	}
	return v
}

// String renders the signed decimal form of the value.
func (b *big128) String() string {
	if b.Neg && b.Abs.Sign() != 0 {
		return "-" + b.Abs.Dec()
	}
	return b.Abs.Dec()
}

func wordBits(word [32]byte, loBit, hiBit int) *uint256.Int {
	full := new(uint256.Int).SetBytes(word[:])
	if loBit > 0 {
		full.Rsh(full, uint(loBit))
	}
	width := hiBit - loBit
	if width < 256 {
		mask := new(uint256.Int).Lsh(uint256.NewInt(1), uint(width))
		mask.Sub(mask, uint256.NewInt(1))
		full.And(full, mask)
	}
	return full
}

// DecodeReserves decodes a V2 pair's packed reserves word: reserve0 in bits
// [0,112), reserve1 in [112,224), blockTimestampLast in [224,256).
func DecodeReserves(word [32]byte) Reserves {
	return Reserves{
		Reserve0:           wordBits(word, 0, 112),
		Reserve1:           wordBits(word, 112, 224),
		BlockTimestampLast: uint32(wordBits(word, 224, 256).Uint64()),
	}
}

// signExtend24 reinterprets the low 24 bits of raw as a two's-complement
// int24, sign-extended into an int32.
func signExtend24(raw uint32) int32 {
	raw &= 0xFFFFFF
	if raw&0x800000 != 0 {
		return int32(raw | 0xFF000000)
	}
	return int32(raw)
}

// DecodeSlot0 decodes a V3/V4-style header word.
func DecodeSlot0(word [32]byte) Slot0 {
	tickRaw := uint32(wordBits(word, 160, 184).Uint64())
	return Slot0{
		SqrtPriceX96:               wordBits(word, 0, 160),
		Tick:                       signExtend24(tickRaw),
		ObservationIndex:           uint16(wordBits(word, 184, 200).Uint64()),
		ObservationCardinality:     uint16(wordBits(word, 200, 216).Uint64()),
		ObservationCardinalityNext: uint16(wordBits(word, 216, 232).Uint64()),
		FeeProtocol:                uint8(wordBits(word, 232, 240).Uint64()),
		Unlocked:                   wordBits(word, 240, 241).Uint64() == 1,
	}
}

// DecodeTickPrimary decodes a tick's primary info word: liquidityGross in
// bits [0,128) as u128, liquidityNet in [128,256) as a sign-extended i128.
// The word is initialized iff it is nonzero at all, per the store contract
// (an all-zero word is indistinguishable from "never written").
func DecodeTickPrimary(word [32]byte) TickPrimary {
	full := new(uint256.Int).SetBytes(word[:])
	grossLow := wordBits(word, 0, 128)
	netRaw := wordBits(word, 128, 256)

	neg := netRaw.Bit(127) == 1
	abs := new(uint256.Int).Set(netRaw)
	if neg {
		// two's-complement negate within 128 bits
		mask := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
		mask.Sub(mask, uint256.NewInt(1))
		abs.Xor(netRaw, mask)
		abs.AddUint64(abs, 1)
		abs.And(abs, mask)
	}

	return TickPrimary{
		LiquidityGross: grossLow,
		LiquidityNet:   &big128{Neg: neg, Abs: abs},
		Initialized:    full.Sign() != 0,
	}
}

// DecodeOverflowed reports whether v carries any bit above the given bit
// width — the DecodeOverflow condition (spec §7): a liquidity word whose
// upper bits are unexpectedly set.
func DecodeOverflowed(v *uint256.Int, width int) bool {
	if width >= 256 {
		return false
	}
	bound := new(uint256.Int).Lsh(uint256.NewInt(1), uint(width))
	return v.Cmp(bound) >= 0
}

// DecodeLiquidity reads a pool's current-liquidity slot, which the
// reference contracts store as a bare uint128 occupying the full word. The
// low 128 bits are the value; overflow reports whether any of the upper 128
// bits are set, which on-chain never happens and off-chain signals storage
// corruption rather than a value to truncate (spec §4.D, §7 DecodeOverflow).
func DecodeLiquidity(word [32]byte) (value *uint256.Int, overflow bool) {
	full := new(uint256.Int).SetBytes(word[:])
	low := wordBits(word, 0, 128)
	return low, DecodeOverflowed(full, 128)
}
