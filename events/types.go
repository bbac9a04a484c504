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
	"bytes"
	"encoding/gob"
	"fmt"

	libcommon "github.com/erigontech/ammstate/erigon-lib/common"
)

// Log is one event log body: address, topics, and opaque data (spec §3).
type Log struct {
	Address libcommon.Address
	Topics  []libcommon.Hash
	Data    []byte
}

// Header is the subset of a block header this module reads: its number
// and consensus log bloom (spec §6's "headers" table).
type Header struct {
	Number    uint64
	LogsBloom Bloom
}

// BodyIndex locates a block's transactions within the global,
// monotonically increasing transaction-number space (spec §6's "body
// indices" table).
type BodyIndex struct {
	FirstTxNum uint64
	TxCount    uint64
}

// Receipt carries the logs emitted by one transaction (spec §6's
// "receipts" table; gas/status fields are out of this module's scope).
type Receipt struct {
	Logs []Log
}

// EncodeHeader/DecodeHeader and their Receipts/BodyIndex counterparts give
// table values a wire form for the kv.Tx byte-oriented GetOne/Cursor
// contract. The node's real wire format (RLP plus snappy framing) is
// explicitly out of scope (spec §1); gob is this module's own boundary
// encoding for values it owns on both ends, matching the teacher's stance
// that wire/transport concerns live outside the core.
func EncodeHeader(h Header) []byte {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(h); err != nil {
		panic(fmt.Sprintf("events: encoding header: %v", err))
	}
	return buf.Bytes()
}

func DecodeHeader(b []byte) (Header, error) {
	var h Header
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&h); err != nil {
		return Header{}, fmt.Errorf("events: decoding header: %w", err)
	}
	return h, nil
}

func EncodeBodyIndex(bi BodyIndex) []byte {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(bi); err != nil {
		panic(fmt.Sprintf("events: encoding body index: %v", err))
	}
	return buf.Bytes()
}

func DecodeBodyIndex(b []byte) (BodyIndex, error) {
	var bi BodyIndex
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&bi); err != nil {
		return BodyIndex{}, fmt.Errorf("events: decoding body index: %w", err)
	}
	return bi, nil
}

func EncodeReceipt(r Receipt) []byte {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		panic(fmt.Sprintf("events: encoding receipt: %v", err))
	}
	return buf.Bytes()
}

func DecodeReceipt(b []byte) (Receipt, error) {
	var r Receipt
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&r); err != nil {
		return Receipt{}, fmt.Errorf("events: decoding receipt: %w", err)
	}
	return r, nil
}

// EventLog is one matched log plus its block/transaction position (spec §3).
type EventLog struct {
	Log              Log
	BlockNumber      uint64
	TransactionIndex uint64
}

// ScanResult is the output of scanning one subject address over a block
// range (spec §4.F).
type ScanResult struct {
	Address            libcommon.Address
	FromBlock, ToBlock uint64
	Logs               []EventLog
	BlocksScanned      uint64
	BlocksSkippedByBloom uint64
}
