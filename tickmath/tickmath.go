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

// Package tickmath converts between tick-bitmap words and the sets of
// initialized tick indices they encode. All conversions preserve the
// on-chain truncate-toward-zero division semantics, including its
// asymmetry around zero.
package tickmath

const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

// WordPos returns the signed word index a tick's bitmap bit lives in, for
// the given tick spacing. Division truncates toward zero (Go's native
// integer division), matching Solidity's `tick / spacing` before the `>>8`
// — this is deliberately not a floor division, so word positions straddle
// zero asymmetrically exactly as on-chain.
func WordPos(tick int32, spacing int32) int16 {
	return int16((tick / spacing) >> 8)
}

// GenerateWordPositions returns every word position from WordPos(MinTick)
// to WordPos(MaxTick), inclusive, for the given spacing.
func GenerateWordPositions(spacing int32) []int16 {
	lo := WordPos(MinTick, spacing)
	hi := WordPos(MaxTick, spacing)
	out := make([]int16, 0, int(hi)-int(lo)+1)
	for w := int32(lo); w <= int32(hi); w++ {
		out = append(out, int16(w))
	}
	return out
}

// ExtractTicks reads every set bit of a 256-bit bitmap word at wordPos and
// emits the corresponding tick index, ascending by bit index, filtered to
// [MinTick, MaxTick].
func ExtractTicks(wordPos int16, bitmap [32]byte, spacing int32) []int32 {
	var out []int32
	for b := 0; b < 256; b++ {
		byteIdx := 31 - b/8
		bitIdx := uint(b % 8)
		if bitmap[byteIdx]&(1<<bitIdx) == 0 {
			continue
		}
		tick := ((int32(wordPos) << 8) | int32(b)) * spacing
		if tick < MinTick || tick > MaxTick {
			continue
		}
		out = append(out, tick)
	}
	return out
}
