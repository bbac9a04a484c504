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

package poolstate

import (
	"errors"
	"fmt"

	libcommon "github.com/erigontech/ammstate/erigon-lib/common"
	"github.com/erigontech/ammstate/erigon-lib/kv"
	"github.com/erigontech/ammstate/packed"
	"github.com/erigontech/ammstate/slotkey"
	"github.com/erigontech/ammstate/tickmath"
)

// ErrLiquidityOverflow is the DecodeOverflow condition of spec §7: a
// liquidity slot whose upper 128 bits are set, which on-chain never
// happens.
var ErrLiquidityOverflow = errors.New("poolstate: liquidity slot has nonzero bits above 128")

// SlotSource reads one 32-byte storage word for (address, key), returning
// the typed zero value when the slot has never been written. It is the one
// seam between the pool-assembly algorithm (spec §4.D) and where the word
// actually comes from: a live PlainState cursor for component D, or a
// per-slot historical lookup for component E (spec §4.E). Implementations
// must apply the seek-and-verify rule themselves — Assemble trusts
// whatever word comes back.
type SlotSource interface {
	ReadSlot(address libcommon.Address, key libcommon.Key32) ([32]byte, error)
}

// Assemble runs the pool-snapshot algorithm shared by the current-state and
// historical readers (spec §4.D steps 1-6): decode reserves (V2), or decode
// the header and current liquidity and, unless HeaderOnly is set, walk the
// bitmap index to enumerate every initialized tick. The only thing that
// differs between "current" and "as of block h" is which SlotSource is
// passed in.
func Assemble(src SlotSource, d Descriptor, poolID *[32]byte) (*Snapshot, error) {
	if d.Protocol != V2 && d.TickSpacing == nil {
		return nil, fmt.Errorf("poolstate: %s pool %s: %w", d.Protocol, d.Address.Hex(), ErrMissingTickSpacing)
	}
	if d.Protocol == V4 && poolID == nil {
		return nil, fmt.Errorf("poolstate: v4 pool %s: %w", d.Address.Hex(), ErrMissingPoolID)
	}

	snap := &Snapshot{Address: d.Address, Protocol: d.Protocol}
	if d.Protocol == V4 {
		snap.PoolID = poolID
	}

	switch d.Protocol {
	case V2:
		word, err := src.ReadSlot(d.Address, slotkey.Simple(slotkey.V2ReservesSlot))
		if err != nil {
			return nil, fmt.Errorf("poolstate: reading v2 reserves: %w", err)
		}
		res := packed.DecodeReserves(word)
		snap.Reserves = &Reserves{
			Reserve0:           res.Reserve0.Dec(),
			Reserve1:           res.Reserve1.Dec(),
			BlockTimestampLast: res.BlockTimestampLast,
		}
		return snap, nil

	case V3:
		dialect := dialectFor(d)
		return assembleTickPool(src, d, snap, *d.TickSpacing,
			slotkey.Simple(dialect.Slot0),
			slotkey.Simple(dialect.Liquidity),
			func(wp int16) libcommon.Key32 { return slotkey.BitmapSlot(wp, dialect.Bitmap) },
			func(tick int32) libcommon.Key32 { return slotkey.TickSlot(tick, dialect.Ticks) },
		)

	case V4:
		return assembleTickPool(src, d, snap, *d.TickSpacing,
			slotkey.V4Field(*poolID, slotkey.V4HeaderOffset),
			slotkey.V4Field(*poolID, slotkey.V4LiquidityOffset),
			func(wp int16) libcommon.Key32 { return slotkey.V4BitmapSlot(*poolID, wp) },
			func(tick int32) libcommon.Key32 { return slotkey.V4TickSlot(*poolID, tick) },
		)

	default:
		return nil, fmt.Errorf("poolstate: unknown protocol %d", d.Protocol)
	}
}

func assembleTickPool(
	src SlotSource,
	d Descriptor,
	snap *Snapshot,
	spacing int32,
	slot0Key, liquidityKey libcommon.Key32,
	bitmapKey func(int16) libcommon.Key32,
	tickKey func(int32) libcommon.Key32,
) (*Snapshot, error) {
	headerWord, err := src.ReadSlot(d.Address, slot0Key)
	if err != nil {
		return nil, fmt.Errorf("poolstate: reading header slot: %w", err)
	}
	h := packed.DecodeSlot0(headerWord)
	snap.Header = &Header{
		SqrtPriceX96:               h.SqrtPriceX96.Dec(),
		Tick:                       h.Tick,
		ObservationIndex:           h.ObservationIndex,
		ObservationCardinality:     h.ObservationCardinality,
		ObservationCardinalityNext: h.ObservationCardinalityNext,
		FeeProtocol:                h.FeeProtocol,
		Unlocked:                   h.Unlocked,
	}

	liqWord, err := src.ReadSlot(d.Address, liquidityKey)
	if err != nil {
		return nil, fmt.Errorf("poolstate: reading liquidity slot: %w", err)
	}
	liquidity, overflow := packed.DecodeLiquidity(liqWord)
	if overflow {
		return nil, fmt.Errorf("poolstate: pool %s: %w", d.Address.Hex(), ErrLiquidityOverflow)
	}
	snap.Liquidity = liquidity.Dec()

	if d.HeaderOnly {
		return snap, nil
	}

	for _, wp := range tickmath.GenerateWordPositions(spacing) {
		word, err := src.ReadSlot(d.Address, bitmapKey(wp))
		if err != nil {
			return nil, fmt.Errorf("poolstate: reading bitmap word %d: %w", wp, err)
		}
		if word == ([32]byte{}) {
			continue
		}
		snap.Bitmaps = append(snap.Bitmaps, Bitmap{WordPos: wp, Bitmap: word})

		for _, tick := range tickmath.ExtractTicks(wp, word, spacing) {
			tickWord, err := src.ReadSlot(d.Address, tickKey(tick))
			if err != nil {
				return nil, fmt.Errorf("poolstate: reading tick %d: %w", tick, err)
			}
			tp := packed.DecodeTickPrimary(tickWord)
			if !tp.Initialized {
				continue
			}
			grossDec, netDec := renderTickPrimary(tp)
			snap.Ticks = append(snap.Ticks, Tick{Tick: tick, LiquidityGross: grossDec, LiquidityNet: netDec})
		}
	}
	return snap, nil
}

// Reader assembles a pool snapshot (component D, spec §4.D) from live
// key/value reads against a plain-state cursor. It holds no state beyond
// the Tx it is given per call and may be reused across Read calls.
type Reader struct{}

// NewReader constructs a Reader. There is nothing to configure: the
// current-state read path is a pure function of (tx, descriptor, poolID).
func NewReader() *Reader { return &Reader{} }

// Read assembles the current snapshot for one pool descriptor. poolID is
// required (and only meaningful) for V4 descriptors.
func (r *Reader) Read(tx kv.Tx, d Descriptor, poolID *[32]byte) (*Snapshot, error) {
	cur, err := tx.CursorDupSort(kv.PlainState)
	if err != nil {
		return nil, fmt.Errorf("poolstate: opening PlainState cursor: %w", err)
	}
	defer cur.Close()

	return Assemble(plainStateSource{cur}, d, poolID)
}

// NewPlainStateSource wraps a PlainState DupSort cursor as a SlotSource,
// for callers outside this package that need the live-read fallback this
// module's historical reader falls back to once a key has no more future
// changes (spec §4.E step 3).
func NewPlainStateSource(cur kv.CursorDupSort) SlotSource { return plainStateSource{cur} }

// plainStateSource is the live SlotSource: a cursor over the DupSort
// PlainState table, where one address key carries every storage-key/value
// pair for that address as sorted duplicate entries.
type plainStateSource struct {
	cur kv.CursorDupSort
}

// ReadSlot reads one 32-byte storage word for (address, key) from the
// DupSort-encoded PlainState table. Per the store contract (spec §6), the
// sub-keyed seek can overshoot into the next key's duplicate list or the
// next address entirely — every caller MUST verify the returned sub-key
// equals what it asked for, which is exactly what this function does.
func (s plainStateSource) ReadSlot(address libcommon.Address, key libcommon.Key32) ([32]byte, error) {
	var zero [32]byte
	v, err := s.cur.SeekBothRange(address.Bytes(), key[:])
	if err != nil {
		return zero, err
	}
	if len(v) < 64 {
		return zero, nil
	}
	if [32]byte(v[:32]) != key {
		return zero, nil
	}
	var word [32]byte
	copy(word[:], v[32:64])
	return word, nil
}
