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

// Package poolstate holds the pool descriptor/snapshot data model and the
// current-state reader that assembles a snapshot from live key/value reads.
package poolstate

import (
	"errors"

	libcommon "github.com/erigontech/ammstate/erigon-lib/common"
	"github.com/erigontech/ammstate/packed"
	"github.com/erigontech/ammstate/slotkey"
)

// Protocol tags the pool family a descriptor/snapshot belongs to.
type Protocol uint8

const (
	V2 Protocol = iota
	V3
	V4
)

func (p Protocol) String() string {
	switch p {
	case V2:
		return "v2"
	case V3:
		return "v3"
	case V4:
		return "v4"
	default:
		return "unknown"
	}
}

var (
	// ErrMissingTickSpacing is returned when a V3/V4 descriptor omits the
	// tick spacing needed to walk the bitmap index.
	ErrMissingTickSpacing = errors.New("poolstate: V3/V4 descriptor missing tick spacing")
	// ErrMissingPoolID is returned for a V4 request with no corresponding
	// pool identifier.
	ErrMissingPoolID = errors.New("poolstate: V4 request missing pool id")
)

// Descriptor is a pool-state request: one input pool.
type Descriptor struct {
	Address      libcommon.Address
	Protocol     Protocol
	TickSpacing  *int32             // required for V3/V4
	Factory      *libcommon.Address // selects a V3 storage dialect
	HeaderOnly   bool               // skip tick/bitmap reads
}

// Reserves is the decoded V2 reserves record.
type Reserves struct {
	Reserve0           string // decimal
	Reserve1           string // decimal
	BlockTimestampLast uint32
}

// Header is the decoded V3/V4 "slot0" record.
type Header struct {
	SqrtPriceX96               string // decimal
	Tick                       int32
	ObservationIndex           uint16
	ObservationCardinality     uint16
	ObservationCardinalityNext uint16
	FeeProtocol                uint8
	Unlocked                   bool
}

// Tick is one decoded tick record.
type Tick struct {
	Tick           int32
	LiquidityGross string // decimal, u128
	LiquidityNet   string // decimal, signed i128
}

// Bitmap is one decoded bitmap word.
type Bitmap struct {
	WordPos int16
	Bitmap  [32]byte
}

// Snapshot is a pool-state result (spec §3's "pool snapshot").
type Snapshot struct {
	Address   libcommon.Address
	Protocol  Protocol
	PoolID    *[32]byte // V4 only
	Reserves  *Reserves // V2 only
	Header    *Header   // V3/V4 only
	Liquidity string    // decimal, u128; V3/V4 only
	Ticks     []Tick
	Bitmaps   []Bitmap

	// BlockHeight is set only by the historical reader.
	BlockHeight *uint64
}

// NewV2Snapshot, NewV3Snapshot and NewV4Snapshot build a Snapshot with only
// the fields its protocol defines populated, matching spec §3's "optional
// field present iff protocol" invariant in one place instead of scattering
// the same zero-value checks across every caller that builds a Snapshot by
// hand (e.g. in tests).
func NewV2Snapshot(address libcommon.Address, reserves Reserves) *Snapshot {
	return &Snapshot{Address: address, Protocol: V2, Reserves: &reserves}
}

func NewV3Snapshot(address libcommon.Address, header Header, liquidity string, ticks []Tick, bitmaps []Bitmap) *Snapshot {
	return &Snapshot{
		Address: address, Protocol: V3,
		Header: &header, Liquidity: liquidity, Ticks: ticks, Bitmaps: bitmaps,
	}
}

func NewV4Snapshot(address libcommon.Address, poolID [32]byte, header Header, liquidity string, ticks []Tick, bitmaps []Bitmap) *Snapshot {
	return &Snapshot{
		Address: address, Protocol: V4, PoolID: &poolID,
		Header: &header, Liquidity: liquidity, Ticks: ticks, Bitmaps: bitmaps,
	}
}

func renderTickPrimary(tp packed.TickPrimary) (grossDec, netDec string) {
	return tp.LiquidityGross.Dec(), tp.LiquidityNet.String()
}

// dialectFor resolves the V3 mapping-slot layout for a descriptor.
func dialectFor(d Descriptor) slotkey.V3Dialect {
	return slotkey.V3DialectFor(d.Factory)
}
