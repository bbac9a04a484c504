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
	"errors"
	"fmt"

	"go.uber.org/zap"

	libcommon "github.com/erigontech/ammstate/erigon-lib/common"
	"github.com/erigontech/ammstate/erigon-lib/common/math"
	"github.com/erigontech/ammstate/erigon-lib/kv"
)

// ErrInvalidRange is returned when a scan's block range is malformed
// (spec §7 InvalidInput: "to_block < from_block").
var ErrInvalidRange = errors.New("events: to_block is before from_block")

// Scan sweeps one subject address over [lo, hi], using the per-block bloom
// to skip blocks that provably hold nothing of interest, and requiring
// positional equality against any supplied topics (spec §4.F).
func Scan(tx kv.Tx, address libcommon.Address, lo, hi uint64, topics []libcommon.Hash) (*ScanResult, error) {
	if hi < lo {
		return nil, fmt.Errorf("events: scanning %s over [%d,%d]: %w", address.Hex(), lo, hi, ErrInvalidRange)
	}
	res := &ScanResult{Address: address, FromBlock: lo, ToBlock: hi}
	for b := lo; b <= hi; b++ {
		res.BlocksScanned++
		hdr, ok, err := readHeader(tx, b)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if !hdr.LogsBloom.TestAddress(address) {
			res.BlocksSkippedByBloom++
			continue
		}
		if !bloomHasAllTopics(hdr.LogsBloom, topics) {
			res.BlocksSkippedByBloom++
			continue
		}
		body, ok, err := readBodyIndex(tx, b)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := forEachReceiptLog(tx, body, func(txIdx uint64, log Log) {
			if log.Address != address || !topicsMatch(log, topics) {
				return
			}
			res.Logs = append(res.Logs, EventLog{Log: log, BlockNumber: b, TransactionIndex: txIdx})
		}); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// ScanMulti sweeps many subject addresses over one range, reading each
// block's receipts at most once (spec §4.F's scan_multi): the bloom test
// is "any subject present", and a matching log is attributed to the first
// subject (in input order) whose address it equals.
func ScanMulti(tx kv.Tx, addresses []libcommon.Address, lo, hi uint64, topics []libcommon.Hash) ([]ScanResult, error) {
	if hi < lo {
		return nil, fmt.Errorf("events: scanning %d addresses over [%d,%d]: %w", len(addresses), lo, hi, ErrInvalidRange)
	}
	results := make([]ScanResult, len(addresses))
	for i, a := range addresses {
		results[i] = ScanResult{Address: a, FromBlock: lo, ToBlock: hi}
	}
	if len(addresses) == 0 {
		return results, nil
	}

	for b := lo; b <= hi; b++ {
		for i := range results {
			results[i].BlocksScanned++
		}

		hdr, ok, err := readHeader(tx, b)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		anyPresent := false
		for _, a := range addresses {
			if hdr.LogsBloom.TestAddress(a) {
				anyPresent = true
				break
			}
		}
		if !anyPresent || !bloomHasAllTopics(hdr.LogsBloom, topics) {
			for i := range results {
				results[i].BlocksSkippedByBloom++
			}
			continue
		}

		body, ok, err := readBodyIndex(tx, b)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := forEachReceiptLog(tx, body, func(txIdx uint64, log Log) {
			for i, a := range addresses {
				if log.Address != a || !topicsMatch(log, topics) {
					continue
				}
				results[i].Logs = append(results[i].Logs, EventLog{Log: log, BlockNumber: b, TransactionIndex: txIdx})
				break
			}
		}); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// SuggestChunkSize estimates a block-range chunk size that keeps a single
// chunk's receipt reads within a ~100k-transaction working set, sampling
// average transactions/block over [sampleFromBlock, sampleFromBlock+
// sampleSize) and clamping to [1000, 50000] blocks — the heuristic this
// module's Rust predecessor used (spec §4.F, "Chunking").
func SuggestChunkSize(tx kv.Tx, sampleFromBlock, sampleSize uint64) (uint64, error) {
	var totalTxs, blocksSampled uint64
	for b := sampleFromBlock; b < sampleFromBlock+sampleSize; b++ {
		body, ok, err := readBodyIndex(tx, b)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		totalTxs += body.TxCount
		blocksSampled++
	}
	if blocksSampled == 0 {
		return 10000, nil
	}
	avg := totalTxs / blocksSampled
	chunk := uint64(10000)
	if avg > 0 {
		chunk = uint64(math.CeilDiv(100000, int(avg)))
	}
	if chunk < 1000 {
		chunk = 1000
	}
	if chunk > 50000 {
		chunk = 50000
	}
	return chunk, nil
}

// LogScan wraps Scan with structured logging of the bloom skip rate, the
// only place in this package a *zap.Logger is consulted — the pure sweep
// above stays logging-free, matching the rest of this module's pure-core
// convention.
func LogScan(log *zap.Logger, tx kv.Tx, address libcommon.Address, lo, hi uint64, topics []libcommon.Hash) (*ScanResult, error) {
	res, err := Scan(tx, address, lo, hi, topics)
	if log == nil || err != nil {
		return res, err
	}
	log.Debug("event scan complete",
		zap.String("address", address.Hex()),
		zap.Uint64("from", lo), zap.Uint64("to", hi),
		zap.Uint64("blocks_scanned", res.BlocksScanned),
		zap.Uint64("blocks_skipped_by_bloom", res.BlocksSkippedByBloom),
		zap.Int("logs", len(res.Logs)))
	return res, nil
}

func readHeader(tx kv.Tx, block uint64) (Header, bool, error) {
	b, err := tx.GetOne(kv.Headers, kv.EncodeBlockNumber(block))
	if err != nil {
		return Header{}, false, fmt.Errorf("events: reading header %d: %w", block, err)
	}
	if b == nil {
		return Header{}, false, nil
	}
	h, err := DecodeHeader(b)
	if err != nil {
		return Header{}, false, err
	}
	return h, true, nil
}

func readBodyIndex(tx kv.Tx, block uint64) (BodyIndex, bool, error) {
	b, err := tx.GetOne(kv.BlockBody, kv.EncodeBlockNumber(block))
	if err != nil {
		return BodyIndex{}, false, fmt.Errorf("events: reading body index %d: %w", block, err)
	}
	if b == nil {
		return BodyIndex{}, false, nil
	}
	bi, err := DecodeBodyIndex(b)
	if err != nil {
		return BodyIndex{}, false, err
	}
	return bi, true, nil
}

func forEachReceiptLog(tx kv.Tx, body BodyIndex, fn func(txIndex uint64, log Log)) error {
	for txIdx := uint64(0); txIdx < body.TxCount; txIdx++ {
		txNum := body.FirstTxNum + txIdx
		b, err := tx.GetOne(kv.Receipts, kv.EncodeBlockNumber(txNum))
		if err != nil {
			return fmt.Errorf("events: reading receipt %d: %w", txNum, err)
		}
		if b == nil {
			continue
		}
		receipt, err := DecodeReceipt(b)
		if err != nil {
			return err
		}
		for _, log := range receipt.Logs {
			fn(txIdx, log)
		}
	}
	return nil
}

func bloomHasAllTopics(b Bloom, topics []libcommon.Hash) bool {
	for _, t := range topics {
		if !b.TestTopic(t) {
			return false
		}
	}
	return true
}

func topicsMatch(log Log, topics []libcommon.Hash) bool {
	if len(topics) == 0 {
		return true
	}
	if len(log.Topics) < len(topics) {
		return false
	}
	for i, t := range topics {
		if log.Topics[i] != t {
			return false
		}
	}
	return true
}
