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

// Package kv carries the subset of Erigon's table-name constants and
// cursor/tx contract this module needs to read plain state, storage
// history and changesets, headers, bodies and receipts. It is not a
// database driver: it only names tables and describes the shape a real
// MDBX-backed (or any other) kv.Tx implementation must present.
package kv

// Dictionary:
// "Plain State" - state where keys aren't hashed; used for block execution.
// "incarnation" - uint64, how many times an account has been SelfDestruct'ed.

/*
PlainState logical layout:

	Contains Accounts:
	  key - address (unhashed)
	  value - account encoded for storage
	Contains Storage:
	  key - address (unhashed)
	  sub-key - storage key (unhashed)
	  value - storage value (common.Hash)

Physical layout, as this module reads it:

	PlainState utilises the DupSort feature of MDBX (store multiple values
	inside 1 key).

	key                     | value
	------------------------+---------------------------------------------
	[address]               | [storage1_key]+[storage1_value]
	                        | [storage2_key]+[storage2_value] (dup value)
	                        | ...
*/
const PlainState = "PlainState"

/*
StorageChangeSet - of block N stores storage values from before block N
changed them. Values "after" the change live in PlainState.

Example: if block N changed slot (A, K) from X to Y, then:

	StorageChangeSet has record: bigEndian(N) + A + incarnation + K -> X
	PlainState has record:       A -> K + Y

StorageChangeSet is DupSort-ed:

	key   - blockNum_u64
	value - address + incarnation + storage_key + storage_value
*/
const StorageChangeSetDeprecated = "StorageChangeSet"

/*
StorageHistory - index designed to answer: what is the smallest block
number > X at which storage slot (A, K) changed.

Format:
  - index split into shards; each shard value is a RoaringBitmap-encoded
    sorted list of block numbers in which the slot changed
  - if a shard is not the last one for (A,K), its key carries an 8-byte
    big-endian suffix equal to the max block number in that shard
  - if a shard is the last one, its key suffix is 0xFF repeated

Query "what changed after X" (rank/select):

	seek(A+K+bigEndian(X)) into the shard b-tree;
	r := RoaringBitmap(shard_value).Rank(X)       // changes <= X
	if r < cardinality:
		Y := RoaringBitmap(shard_value).Select(r)  // first change > X
		then read StorageChangeSetDeprecated at blockNum Y, key A+K
	else if the shard is not the last one: move to the next shard
	else: the slot's live value is in PlainState

	key   - address + storage_key + shard_id_u64
	value - roaring bitmap, list of blocks where the slot changed
*/
const E2StorageHistory = "StorageHistory"

// Headers - block_num_u64 -> header (number and logs bloom, gob-encoded by
// the events package).
const Headers = "Header"

// BlockBody - block_num_u64 -> body index (first tx number, tx count).
const BlockBody = "BlockBody"

// Receipts - global_tx_num_u64 -> receipt, one entry per transaction, each
// receipt carrying that transaction's logs.
const Receipts = "Receipts"

// TableFlags describe the physical MDBX table layout; DupSort is the only
// flag this module's cursors rely on.
type TableFlags uint

const (
	DupSort TableFlags = 0x04
)

// TableCfgItem configures how the Store contract expects a table to be
// opened; concrete kv.Tx implementations use it to pick the right cursor
// type, DupSort-aware or not.
type TableCfgItem struct {
	Flags TableFlags
}

// ChaindataTablesCfg lists the physical layout of every table this module
// reads. Deliberately trimmed to our domain: the teacher's full
// erigon-lib/kv/tables.go configures several hundred tables across
// consensus, txpool, snapshot-downloader and BOR/Beacon subsystems that
// no component in this module touches (see DESIGN.md).
var ChaindataTablesCfg = map[string]TableCfgItem{
	PlainState:                 {Flags: DupSort},
	StorageChangeSetDeprecated: {Flags: DupSort},
	E2StorageHistory:           {},
	Headers:                    {},
	BlockBody:                  {},
	Receipts:                   {},
}
