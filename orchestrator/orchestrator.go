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

// Package orchestrator dispatches a batch of pool descriptors to the
// current-state or historical reader (component G, spec §4.G). It owns no
// store handle: the caller opens a read-only kv.Tx snapshot and passes it
// in, and is responsible for releasing it on every exit path (spec §5).
package orchestrator

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/erigontech/ammstate/erigon-lib/kv"
	"github.com/erigontech/ammstate/historical"
	"github.com/erigontech/ammstate/poolstate"
)

// ErrMissingV4PoolID is returned when the batch's pool-id list is
// exhausted before every V4 descriptor in Request.Descriptors has been
// paired with one (spec §7 InvalidInput: "pool-id list shorter than V4
// descriptor count").
var ErrMissingV4PoolID = errors.New("orchestrator: fewer V4 pool ids than V4 descriptors")

// Request is one batch: pool descriptors, plus the V4 pool-id list
// consumed positionally by descriptors tagged Protocol == poolstate.V4,
// in the order those descriptors appear (spec §3).
type Request struct {
	Descriptors []poolstate.Descriptor
	V4PoolIDs   [][32]byte
}

// Response is the batch result: one snapshot per descriptor, same order.
type Response struct {
	Snapshots []*poolstate.Snapshot
}

// Orchestrator runs one batch request against a read view. It holds no
// state beyond an optional logger and may be reused across calls.
type Orchestrator struct {
	log *zap.Logger
}

// New constructs an Orchestrator. A nil logger is replaced with a no-op
// one, matching this module's nil-safe zap convention.
func New(log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{log: log}
}

// Run dispatches every descriptor in req to the live current-state reader
// (component D). The first per-pool error aborts the whole batch (spec §7
// "Partial failure policy") — this is a read-only batch, and partial
// success only complicates downstream reasoning.
func (o *Orchestrator) Run(tx kv.Tx, req Request) (*Response, error) {
	o.log.Debug("orchestrator: batch start", zap.Int("pools", len(req.Descriptors)))
	reader := poolstate.NewReader()
	v4Idx := 0

	snaps := make([]*poolstate.Snapshot, 0, len(req.Descriptors))
	for i, d := range req.Descriptors {
		poolID, err := nextV4PoolID(d, req.V4PoolIDs, &v4Idx)
		if err != nil {
			o.log.Error("orchestrator: pool aborted batch", zap.Int("index", i), zap.Error(err))
			return nil, err
		}
		snap, err := reader.Read(tx, d, poolID)
		if err != nil {
			o.log.Error("orchestrator: pool aborted batch", zap.Int("index", i), zap.String("address", d.Address.Hex()), zap.Error(err))
			return nil, fmt.Errorf("orchestrator: pool %d (%s): %w", i, d.Address.Hex(), err)
		}
		snaps = append(snaps, snap)
	}
	o.log.Debug("orchestrator: batch done", zap.Int("pools", len(snaps)))
	return &Response{Snapshots: snaps}, nil
}

// RunHistorical is Run's historical counterpart (component E via the
// orchestrator): every descriptor is read as of block height h instead of
// live.
func (o *Orchestrator) RunHistorical(tx kv.Tx, req Request, h uint64) (*Response, error) {
	o.log.Debug("orchestrator: historical batch start", zap.Int("pools", len(req.Descriptors)), zap.Uint64("block", h))
	reader := historical.NewReader()
	v4Idx := 0

	snaps := make([]*poolstate.Snapshot, 0, len(req.Descriptors))
	for i, d := range req.Descriptors {
		poolID, err := nextV4PoolID(d, req.V4PoolIDs, &v4Idx)
		if err != nil {
			o.log.Error("orchestrator: pool aborted historical batch", zap.Int("index", i), zap.Error(err))
			return nil, err
		}
		snap, err := reader.Read(tx, d, poolID, h)
		if err != nil {
			o.log.Error("orchestrator: pool aborted historical batch", zap.Int("index", i), zap.String("address", d.Address.Hex()), zap.Error(err))
			return nil, fmt.Errorf("orchestrator: pool %d (%s) at block %d: %w", i, d.Address.Hex(), h, err)
		}
		snaps = append(snaps, snap)
	}
	o.log.Debug("orchestrator: historical batch done", zap.Int("pools", len(snaps)), zap.Uint64("block", h))
	return &Response{Snapshots: snaps}, nil
}

// nextV4PoolID returns the next positional pool id for a V4 descriptor,
// or nil for non-V4 descriptors (spec §4.G: "V4 → D's V4 path with the
// next pool id from the paired list").
func nextV4PoolID(d poolstate.Descriptor, ids [][32]byte, v4Idx *int) (*[32]byte, error) {
	if d.Protocol != poolstate.V4 {
		return nil, nil
	}
	if *v4Idx >= len(ids) {
		return nil, fmt.Errorf("orchestrator: pool %s: %w", d.Address.Hex(), ErrMissingV4PoolID)
	}
	id := ids[*v4Idx]
	*v4Idx++
	return &id, nil
}
