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

package kv

import "encoding/binary"

// EncodeBlockNumber returns the canonical big-endian 8-byte key Erigon
// tables use wherever a block number is a key component (headers, body
// indices, changesets).
func EncodeBlockNumber(n uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return b[:]
}

// DecodeBlockNumber is the inverse of EncodeBlockNumber.
func DecodeBlockNumber(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// ShardSuffixFinal marks a StorageHistory shard as the last one for its
// (address, storage_key): no shard after it can contain a larger block
// number, so a scan that reaches it and finds no qualifying change can stop
// instead of issuing another seek.
var ShardSuffixFinal = [8]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// StorageHistoryKey builds the StorageHistory shard key for (address,
// storageKey), sharded by maxBlockInShard; pass ShardSuffixFinal for the
// last shard of a key.
func StorageHistoryKey(address [20]byte, storageKey [32]byte, shardSuffix [8]byte) []byte {
	k := make([]byte, 0, 20+32+8)
	k = append(k, address[:]...)
	k = append(k, storageKey[:]...)
	k = append(k, shardSuffix[:]...)
	return k
}

// StorageChangeSetSubkey builds the DupSort sub-key StorageChangeSet uses
// within one block-number key: address + incarnation + storage key. Every
// pool contract this module reads has incarnation 0 (it is never
// self-destructed and redeployed at the same address).
func StorageChangeSetSubkey(address [20]byte, incarnation uint64, storageKey [32]byte) []byte {
	k := make([]byte, 0, 20+8+32)
	k = append(k, address[:]...)
	k = binary.BigEndian.AppendUint64(k, incarnation)
	k = append(k, storageKey[:]...)
	return k
}
