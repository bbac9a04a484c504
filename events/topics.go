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

package events

import (
	libcommon "github.com/erigontech/ammstate/erigon-lib/common"
	"github.com/erigontech/ammstate/erigon-lib/kv"
)

// Topic0 hashes of the three canonical tick-pool events (spec §6 "Known
// constants"). Hard-coded rather than computed, since the event
// signatures themselves are outside this module's scope (it does not
// decode ABI function/event signatures, only match topic bytes).
var (
	// SwapTopic is keccak256("Swap(address,address,int256,int256,uint160,uint128,int24)").
	SwapTopic = mustHash("0xc42079f94a6350d7e6235f29174924f928cc2ac818eb64fed8004e115fbcca67")
	// MintTopic is keccak256("Mint(address,address,int24,int24,uint128,uint256,uint256)").
	MintTopic = mustHash("0x7a53080ba414158be7ec69b987b5fb7d07dee101fe85488f0853ae16239d0bde")
	// BurnTopic is keccak256("Burn(address,int24,int24,uint128,uint256,uint256)").
	BurnTopic = mustHash("0x0c396cd989a39f4459b5fa1aed6a9a8dcdbc45908acfd67e028cd568da98982c")
)

func mustHash(s string) libcommon.Hash {
	h, err := libcommon.HexToHash(s)
	if err != nil {
		panic(err)
	}
	return h
}

// ScanSwaps, ScanMints and ScanBurns are convenience wrappers over Scan for
// the three canonical tick-pool events, supplemented from this module's
// Rust predecessor's get_v3_swap_events/get_v3_mint_events/
// get_v3_burn_events — small wrappers, not separate algorithms.
func ScanSwaps(tx kv.Tx, pool libcommon.Address, lo, hi uint64) (*ScanResult, error) {
	return Scan(tx, pool, lo, hi, []libcommon.Hash{SwapTopic})
}

func ScanMints(tx kv.Tx, pool libcommon.Address, lo, hi uint64) (*ScanResult, error) {
	return Scan(tx, pool, lo, hi, []libcommon.Hash{MintTopic})
}

func ScanBurns(tx kv.Tx, pool libcommon.Address, lo, hi uint64) (*ScanResult, error) {
	return Scan(tx, pool, lo, hi, []libcommon.Hash{BurnTopic})
}
