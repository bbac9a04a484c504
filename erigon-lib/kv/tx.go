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

// Tx is a read-only, point-in-time snapshot over the tables this module
// reads. It is the external collaborator named "opening and holding the
// underlying store handle" — this module never constructs one, only
// consumes it. A real implementation wraps an MDBX (or any other
// transactional KV engine) read transaction; tests use an in-memory fake.
type Tx interface {
	// GetOne returns the value stored at key in table, or nil if absent.
	GetOne(table string, key []byte) ([]byte, error)

	// Cursor opens a forward cursor over table.
	Cursor(table string) (Cursor, error)

	// CursorDupSort opens a cursor over a DupSort table, where a single key
	// carries multiple ordered values (the sub-key is encoded as a prefix
	// of the value).
	CursorDupSort(table string) (CursorDupSort, error)
}

// Cursor is a forward-only iterator over one table.
type Cursor interface {
	// Seek moves to the first key >= seek and returns it with its value.
	// Returns nil, nil, nil at end of table.
	Seek(seek []byte) (k, v []byte, err error)

	// Next advances to the following key.
	Next() (k, v []byte, err error)

	Close()
}

// CursorDupSort is a Cursor over a DupSort table, additionally able to seek
// within the duplicate-value list of one key by a value-encoded sub-key.
//
// Per the store contract (spec §6), SeekBothRange performs "seek-by-subkey
// returning >=": it returns the first value at key whose encoded sub-key is
// >= subkey, or the first value of the next key if the current key is
// exhausted. Callers MUST verify the returned sub-key equals what they
// asked for before trusting the value — this cursor overshoots by design,
// and skipping the check is what produced cross-pool contamination in
// earlier revisions of this kind of reader.
type CursorDupSort interface {
	Cursor

	// SeekBothRange seeks to key, then within key's duplicate list to the
	// first value whose encoded sub-key is >= subkey.
	SeekBothRange(key, subkey []byte) (v []byte, err error)
}
