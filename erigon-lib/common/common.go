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

// Package common carries the small fixed-width value types shared by every
// layer of this module: 20-byte addresses and 32-byte hashes/keys, with the
// hex codec the rest of the codebase uses at its input/output boundary.
package common

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Address is a 20-byte account or contract address.
type Address [20]byte

// Hash is a 32-byte value: a storage key, a topic, or a word read back from
// storage.
type Hash [32]byte

// Key32 is an alias for Hash used where the 32 bytes are specifically a
// derived storage slot rather than an opaque hash.
type Key32 = Hash

func (a Address) Bytes() []byte { return a[:] }
func (h Hash) Bytes() []byte    { return h[:] }

func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }
func (h Hash) Hex() string    { return "0x" + hex.EncodeToString(h[:]) }

func (a Address) String() string { return a.Hex() }
func (h Hash) String() string    { return h.Hex() }

// HexToAddress parses a 0x-prefixed (or bare) hex string into an Address.
// It returns an error rather than silently truncating or left-padding, since
// a malformed address at the input boundary is an InvalidInput condition.
func HexToAddress(s string) (Address, error) {
	var a Address
	b, err := decodeFixedHex(s, len(a))
	if err != nil {
		return a, fmt.Errorf("invalid address %q: %w", s, err)
	}
	copy(a[:], b)
	return a, nil
}

// HexToHash parses a 0x-prefixed (or bare) hex string into a Hash.
func HexToHash(s string) (Hash, error) {
	var h Hash
	b, err := decodeFixedHex(s, len(h))
	if err != nil {
		return h, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	copy(h[:], b)
	return h, nil
}

func decodeFixedHex(s string, width int) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) != width {
		return nil, fmt.Errorf("want %d bytes, got %d", width, len(b))
	}
	return b, nil
}
