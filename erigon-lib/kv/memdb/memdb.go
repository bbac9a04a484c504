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

// Package memdb is an in-memory kv.Tx, the same role the teacher's own
// erigon-lib/kv/memdb package plays: a fixture this module's tests build
// up by hand instead of standing up MDBX, with the same key ordering and
// seek-overshoot behavior a real kv.Tx exhibits.
package memdb

import (
	"bytes"
	"sort"

	"github.com/erigontech/ammstate/erigon-lib/kv"
)

type entry struct {
	key   []byte
	value []byte
}

type table struct {
	entries []entry // kept sorted by (key, value), ascending
}

// Tx is a hand-populated, read-only fixture implementing kv.Tx.
type Tx struct {
	tables map[string]*table
}

// New returns an empty Tx.
func New() *Tx {
	return &Tx{tables: map[string]*table{}}
}

func (tx *Tx) table(name string) *table {
	t, ok := tx.tables[name]
	if !ok {
		t = &table{}
		tx.tables[name] = t
	}
	return t
}

func compareEntry(a, b entry) int {
	if c := bytes.Compare(a.key, b.key); c != 0 {
		return c
	}
	return bytes.Compare(a.value, b.value)
}

func insertSorted(t *table, e entry) {
	i := sort.Search(len(t.entries), func(i int) bool { return compareEntry(t.entries[i], e) >= 0 })
	if i < len(t.entries) && compareEntry(t.entries[i], e) == 0 {
		t.entries[i] = e
		return
	}
	t.entries = append(t.entries, entry{})
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = e
}

// Put writes a single-value (non-DupSort) entry: key -> value, overwriting
// any prior value at key.
func (tx *Tx) Put(table string, key, value []byte) {
	t := tx.table(table)
	for i, e := range t.entries {
		if bytes.Equal(e.key, key) {
			t.entries[i].value = value
			return
		}
	}
	insertSorted(t, entry{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
}

// PutDup adds one duplicate value under key in a DupSort table. value is
// expected to carry its sub-key as a fixed-width prefix, per this module's
// own table layouts (erigon-lib/kv/encode.go).
func (tx *Tx) PutDup(table string, key, value []byte) {
	t := tx.table(table)
	insertSorted(t, entry{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
}

// GetOne implements kv.Tx.
func (tx *Tx) GetOne(table string, key []byte) ([]byte, error) {
	t := tx.tables[table]
	if t == nil {
		return nil, nil
	}
	i := sort.Search(len(t.entries), func(i int) bool { return bytes.Compare(t.entries[i].key, key) >= 0 })
	if i < len(t.entries) && bytes.Equal(t.entries[i].key, key) {
		return t.entries[i].value, nil
	}
	return nil, nil
}

// Cursor implements kv.Tx.
func (tx *Tx) Cursor(table string) (kv.Cursor, error) {
	return &memCursor{entries: tx.table(table).entries, pos: -1}, nil
}

// CursorDupSort implements kv.Tx.
func (tx *Tx) CursorDupSort(table string) (kv.CursorDupSort, error) {
	return &memCursor{entries: tx.table(table).entries, pos: -1}, nil
}

type memCursor struct {
	entries []entry
	pos     int
}

func (c *memCursor) Seek(seek []byte) ([]byte, []byte, error) {
	i := sort.Search(len(c.entries), func(i int) bool { return bytes.Compare(c.entries[i].key, seek) >= 0 })
	c.pos = i
	if i >= len(c.entries) {
		return nil, nil, nil
	}
	return c.entries[i].key, c.entries[i].value, nil
}

func (c *memCursor) Next() ([]byte, []byte, error) {
	c.pos++
	if c.pos >= len(c.entries) {
		return nil, nil, nil
	}
	return c.entries[c.pos].key, c.entries[c.pos].value, nil
}

func (c *memCursor) Close() {}

// SeekBothRange mirrors the overshoot semantics documented on
// kv.CursorDupSort: it finds the first entry whose (key, value-prefix) is
// >= (key, subkey) in the table's global sort order, even if that entry
// belongs to a different key. Callers are required to verify the returned
// sub-key themselves.
func (c *memCursor) SeekBothRange(key, subkey []byte) ([]byte, error) {
	i := sort.Search(len(c.entries), func(i int) bool {
		e := c.entries[i]
		if kc := bytes.Compare(e.key, key); kc != 0 {
			return kc >= 0
		}
		n := len(subkey)
		if n > len(e.value) {
			n = len(e.value)
		}
		return bytes.Compare(e.value[:n], subkey) >= 0
	})
	c.pos = i
	if i >= len(c.entries) {
		return nil, nil
	}
	return c.entries[i].value, nil
}
