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

// Package events sweeps event logs across a block range using the
// per-block bloom filter to skip blocks that provably carry nothing of
// interest (component F, spec §4.F).
package events

import (
	libcommon "github.com/erigontech/ammstate/erigon-lib/common"
	"github.com/erigontech/ammstate/erigon-lib/crypto"
)

// Bloom is the 2048-bit per-block log bloom filter (spec §3, §6). It is
// not a generic k-hash filter: every input sets exactly 3 bits, each taken
// from an 11-bit slice of a single Keccak-256 digest — the construction
// every EVM client uses for the consensus `logsBloom` header field
// ("bloom9"). This is hand-rolled rather than imported because no library
// in the retrieval pack implements this exact fixed-shape, fixed-hash
// construction (see DESIGN.md); a generic Bloom filter library would be
// the wrong shape here regardless.
type Bloom [256]byte

// bloom9 sets the 3 bits data's Keccak-256 digest selects into b.
func bloom9(b *Bloom, data []byte) {
	h := crypto.Keccak256(data)
	for i := 0; i < 6; i += 2 {
		bit := (uint(h[i+1]) + uint(h[i])<<8) & 2047
		b[256-1-bit/8] |= 1 << (bit % 8)
	}
}

// Add ORs data's 3 bloom bits into b.
func (b *Bloom) Add(data []byte) { bloom9(b, data) }

// Test reports whether every bit data's digest would set is already set in
// b. A true result is necessary but not sufficient — the bloom can false
// positive; a false result is a definitive "not present".
func (b Bloom) Test(data []byte) bool {
	var probe Bloom
	bloom9(&probe, data)
	for i := range probe {
		if probe[i]&b[i] != probe[i] {
			return false
		}
	}
	return true
}

// TestAddress reports whether address may be present per the bloom.
func (b Bloom) TestAddress(addr libcommon.Address) bool { return b.Test(addr[:]) }

// TestTopic reports whether topic may be present per the bloom.
func (b Bloom) TestTopic(topic libcommon.Hash) bool { return b.Test(topic[:]) }

// CreateBloom computes the bloom filter for a set of logs, matching the
// consensus rule: every log's address and every one of its topics
// contributes 3 bits.
func CreateBloom(logs []Log) Bloom {
	var b Bloom
	for _, l := range logs {
		b.Add(l.Address[:])
		for _, t := range l.Topics {
			b.Add(t[:])
		}
	}
	return b
}
