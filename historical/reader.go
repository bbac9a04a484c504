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

// Package historical projects pool state through Erigon's write-ahead
// storage changesets to answer "what did this slot hold as of block h"
// (component E, spec §4.E). It is the sibling of poolstate's
// current-state reader, modeled on Erigon's HistoryReaderV3: it keeps that
// reader's trace flag (SetTrace) but takes the kv.Tx per call instead of
// holding one, and is narrowed from the full account/code/storage domain
// down to the single "next future change" query this module needs for one
// storage slot at a time.
package historical

import (
	"bytes"
	"errors"
	"fmt"

	roaring "github.com/RoaringBitmap/roaring/v2"

	libcommon "github.com/erigontech/ammstate/erigon-lib/common"
	"github.com/erigontech/ammstate/erigon-lib/common/math"
	"github.com/erigontech/ammstate/erigon-lib/kv"
	"github.com/erigontech/ammstate/poolstate"
)

// ErrPruned mirrors Erigon's PrunedError: the history a query
// needs has been removed by the node's pruning policy. This module never
// raises it itself (it has no notion of a prune horizon), but a kv.Tx
// backed by a pruned node is expected to surface it from GetOne/Cursor so
// callers can errors.Is against one stable sentinel regardless of which
// table read tripped it.
var ErrPruned = errors.New("historical: data not available due to pruning")

// ErrInconsistentHistory reports that the history index named a change at
// a block where the changeset has no matching sub-key entry — the store's
// two auxiliary tables have gone out of sync with each other, which a
// read-only reader cannot repair and must not guess past.
var ErrInconsistentHistory = errors.New("historical: history index and changeset disagree")

// Reader answers per-slot "value as of block h" queries using the "next
// future change" algorithm of spec §4.E: it picks the *post*-state
// convention (changesets store pre-change values, so the first change
// strictly after h holds exactly the value at h) and does not offer the
// pre-state variant — spec §9 notes both conventions exist in the wild and
// directs an implementation to pin one.
type Reader struct {
	trace bool
}

// NewReader constructs a historical Reader.
func NewReader() *Reader { return &Reader{} }

// SetTrace toggles verbose per-slot logging, mirroring HistoryReaderV3's
// own trace flag. When on, StorageAsOf prints each resolved slot to
// standard output with fmt.Printf; this package has no logging dependency
// of its own (spec's pure-component convention extends to this reader's
// core algorithm).
func (r *Reader) SetTrace(trace bool) { r.trace = trace }

// StorageAsOf returns the value of storage slot (address, key) as of block
// height h, following spec §4.E steps 1-4.
func (r *Reader) StorageAsOf(tx kv.Tx, address libcommon.Address, key libcommon.Key32, h uint64) ([32]byte, error) {
	var zero [32]byte

	historyCur, err := tx.Cursor(kv.E2StorageHistory)
	if err != nil {
		return zero, fmt.Errorf("historical: opening StorageHistory cursor: %w", err)
	}
	defer historyCur.Close()

	changeBlock, found, err := nextChangeAfter(historyCur, address, key, h)
	if err != nil {
		return zero, err
	}

	if found {
		word, ok, err := r.changesetValue(tx, changeBlock, address, key)
		if err != nil {
			return zero, err
		}
		if !ok {
			return zero, fmt.Errorf("historical: block %d slot %x/%x: %w", changeBlock, address, key, ErrInconsistentHistory)
		}
		if r.trace {
			fmt.Printf("StorageAsOf [%x] [%x] @ %d => [%x] (pre-change at %d)\n", address, key, h, word, changeBlock)
		}
		return word, nil
	}

	// No future change: the slot's value at h is whatever PlainState holds
	// today (spec §4.E step 3/4).
	plainCur, err := tx.CursorDupSort(kv.PlainState)
	if err != nil {
		return zero, fmt.Errorf("historical: opening PlainState cursor: %w", err)
	}
	defer plainCur.Close()
	word, err := poolstate.NewPlainStateSource(plainCur).ReadSlot(address, key)
	if err != nil {
		return zero, err
	}
	if r.trace {
		fmt.Printf("StorageAsOf [%x] [%x] @ %d => [%x] (live)\n", address, key, h, word)
	}
	return word, nil
}

// nextChangeAfter walks the sharded StorageHistory index for (address,
// key) and returns the smallest block number strictly greater than h at
// which the slot changed, per spec §4.E step 1: rank(h) counts changes
// <=h, and the 0-indexed select of that rank is the first change >h.
func nextChangeAfter(cur kv.Cursor, address libcommon.Address, key libcommon.Key32, h uint64) (changeBlock uint64, found bool, err error) {
	seekKey := kv.StorageHistoryKey(address, key, blockSuffix(h))
	k, v, err := cur.Seek(seekKey)
	if err != nil {
		return 0, false, fmt.Errorf("historical: seeking StorageHistory: %w", err)
	}
	if k == nil || !samePrefix(k, address, key) {
		// No shard for this key reaches block h or later: either the key
		// never changed, or every shard's last block is below h (only
		// possible if h is beyond the last shard, which samePrefix also
		// rejects since a well-formed last shard always matches any h).
		return 0, false, nil
	}

	for {
		bm := roaring.New()
		if err := bm.UnmarshalBinary(v); err != nil {
			return 0, false, fmt.Errorf("historical: decoding StorageHistory shard: %w", err)
		}
		rank := bm.Rank(clampUint32(h))
		if rank < bm.GetCardinality() {
			next, err := bm.Select(uint32(rank))
			if err != nil {
				return 0, false, fmt.Errorf("historical: selecting StorageHistory shard entry: %w", err)
			}
			return uint64(next), true, nil
		}
		if isFinalShard(k) {
			return 0, false, nil
		}
		k, v, err = cur.Next()
		if err != nil {
			return 0, false, fmt.Errorf("historical: advancing StorageHistory cursor: %w", err)
		}
		if k == nil || !samePrefix(k, address, key) {
			return 0, false, nil
		}
	}
}

// changesetValue looks up the pre-change value of (address, key) recorded
// at changeBlock (spec §4.E step 2).
func (r *Reader) changesetValue(tx kv.Tx, changeBlock uint64, address libcommon.Address, key libcommon.Key32) ([32]byte, bool, error) {
	var zero [32]byte
	cur, err := tx.CursorDupSort(kv.StorageChangeSetDeprecated)
	if err != nil {
		return zero, false, fmt.Errorf("historical: opening StorageChangeSet cursor: %w", err)
	}
	defer cur.Close()

	subkey := kv.StorageChangeSetSubkey(address, 0, key)
	v, err := cur.SeekBothRange(kv.EncodeBlockNumber(changeBlock), subkey)
	if err != nil {
		return zero, false, fmt.Errorf("historical: reading StorageChangeSet: %w", err)
	}
	if len(v) < len(subkey)+32 || !bytes.Equal(v[:len(subkey)], subkey) {
		return zero, false, nil
	}
	var word [32]byte
	copy(word[:], v[len(subkey):len(subkey)+32])
	return word, true, nil
}

func blockSuffix(h uint64) [8]byte {
	var s [8]byte
	copy(s[:], kv.EncodeBlockNumber(h))
	return s
}

func samePrefix(k []byte, address libcommon.Address, key libcommon.Key32) bool {
	if len(k) != 20+32+8 {
		return false
	}
	return bytes.Equal(k[:20], address[:]) && bytes.Equal(k[20:52], key[:])
}

func isFinalShard(k []byte) bool {
	return bytes.Equal(k[52:60], kv.ShardSuffixFinal[:])
}

func clampUint32(h uint64) uint32 {
	if h > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(h)
}
