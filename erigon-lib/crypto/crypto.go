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

// Package crypto wraps the single hash primitive the slot deriver needs:
// Keccak-256, the hash Solidity's compiler uses for mapping-slot derivation.
// This is NOT the same as SHA3-256 (different padding); golang.org/x/crypto's
// sha3.NewLegacyKeccak256 is the standard way Go code computes it.
package crypto

import (
	"golang.org/x/crypto/sha3"

	libcommon "github.com/erigontech/ammstate/erigon-lib/common"
)

// Keccak256 hashes the concatenation of data into a single 32-byte digest.
func Keccak256(data ...[]byte) libcommon.Hash {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	var h libcommon.Hash
	d.Sum(h[:0])
	return h
}
