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

import "math/big"

// reservesWord packs a V2 reserves word: reserve0 in [0,112), reserve1 in
// [112,224), timestamp in [224,256).
func reservesWord(reserve0, reserve1 int64, timestamp uint32) [32]byte {
	full := new(big.Int).SetInt64(reserve0)
	full.Or(full, new(big.Int).Lsh(big.NewInt(reserve1), 112))
	full.Or(full, new(big.Int).Lsh(big.NewInt(int64(timestamp)), 224))
	var word [32]byte
	b := full.Bytes()
	copy(word[32-len(b):], b)
	return word
}

// slot0Word packs a V3/V4 header word.
func slot0Word(sqrtPrice int64, tick int32, obsIdx, obsCard, obsCardNext uint16, feeProtocol uint8, unlocked bool) [32]byte {
	full := new(big.Int).SetInt64(sqrtPrice)
	tickField := new(big.Int).And(big.NewInt(int64(tick)), new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 24), big.NewInt(1)))
	full.Or(full, new(big.Int).Lsh(tickField, 160))
	full.Or(full, new(big.Int).Lsh(big.NewInt(int64(obsIdx)), 184))
	full.Or(full, new(big.Int).Lsh(big.NewInt(int64(obsCard)), 200))
	full.Or(full, new(big.Int).Lsh(big.NewInt(int64(obsCardNext)), 216))
	full.Or(full, new(big.Int).Lsh(big.NewInt(int64(feeProtocol)), 232))
	if unlocked {
		full.Or(full, new(big.Int).Lsh(big.NewInt(1), 240))
	}
	var word [32]byte
	b := full.Bytes()
	copy(word[32-len(b):], b)
	return word
}
