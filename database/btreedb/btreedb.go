// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package btreedb provides an in-memory implementation of database.DB backed
// by a B-Tree. It's used for temporary stores and for tests, and is
// registered under the names "btree" and "memory".
package btreedb

import (
	"bytes"
	"sync"

	"github.com/ebay/tristore/database"
	pbytes "github.com/ebay/tristore/util/bytes"
	"github.com/google/btree"
)

func init() {
	database.Register(func(database.FactoryArgs) (database.DB, error) {
		return New(), nil
	}, "btree", "memory")
}

// degree is the B-Tree's branching factor.
const degree = 32

type item struct {
	key   []byte
	value []byte
}

func less(a, b item) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// DB is an in-memory ordered key-value store.
type DB struct {
	lock sync.RWMutex
	// protected by lock
	tree *btree.BTreeG[item]
}

// New returns a new empty DB.
func New() *DB {
	return &DB{tree: btree.NewG(degree, less)}
}

// Close releases the DB's contents. The DB can't be used afterwards.
func (db *DB) Close() error {
	db.lock.Lock()
	db.tree = btree.NewG(degree, less)
	db.lock.Unlock()
	return nil
}

// Read returns the value currently stored for the provided key, or
// database.ErrKeyNotFound.
func (db *DB) Read(key []byte) ([]byte, error) {
	db.lock.RLock()
	found, ok := db.tree.Get(item{key: key})
	db.lock.RUnlock()
	if !ok {
		return nil, database.ErrKeyNotFound
	}
	return pbytes.Copy(found.value), nil
}

// ReadFirst implements database.Reader.
func (db *DB) ReadFirst(low, high []byte) ([]byte, []byte, error) {
	var found *item
	visit := func(it item) bool {
		if high != nil && bytes.Compare(it.key, high) >= 0 {
			return false
		}
		found = &it
		return false
	}
	db.lock.RLock()
	if low == nil {
		db.tree.Ascend(visit)
	} else {
		db.tree.AscendGreaterOrEqual(item{key: low}, visit)
	}
	db.lock.RUnlock()
	if found == nil {
		return nil, nil, database.ErrKeyNotFound
	}
	return pbytes.Copy(found.key), pbytes.Copy(found.value), nil
}

// ReadLast implements database.Reader.
func (db *DB) ReadLast(low, high []byte) ([]byte, []byte, error) {
	var found *item
	visit := func(it item) bool {
		if high != nil && bytes.Compare(it.key, high) >= 0 {
			// only the key equal to high can get here; keep going.
			return true
		}
		if low == nil || bytes.Compare(it.key, low) >= 0 {
			found = &it
		}
		return false
	}
	db.lock.RLock()
	if high == nil {
		db.tree.Descend(visit)
	} else {
		db.tree.DescendLessOrEqual(item{key: high}, visit)
	}
	db.lock.RUnlock()
	if found == nil {
		return nil, nil, database.ErrKeyNotFound
	}
	return pbytes.Copy(found.key), pbytes.Copy(found.value), nil
}

// Write will update the database with the one provided key/value pair.
func (db *DB) Write(key []byte, value []byte) error {
	db.lock.Lock()
	db.tree.ReplaceOrInsert(item{key: pbytes.Copy(key), value: pbytes.Copy(value)})
	db.lock.Unlock()
	return nil
}

// Writes will write a batch of key/values to the database atomically.
func (db *DB) Writes(writes []database.KV) error {
	db.lock.Lock()
	for _, kv := range writes {
		db.tree.ReplaceOrInsert(item{key: pbytes.Copy(kv.Key), value: pbytes.Copy(kv.Value)})
	}
	db.lock.Unlock()
	return nil
}

// Count returns the number of keys in the DB.
func (db *DB) Count() (int64, error) {
	db.lock.RLock()
	n := db.tree.Len()
	db.lock.RUnlock()
	return int64(n), nil
}

// Enumerate implements database.DB. It works on a copy-on-write clone of the
// tree, so 'emit' sees a consistent snapshot and may write to the DB.
func (db *DB) Enumerate(startKey, endKey []byte, emit func(key []byte, value []byte) error) error {
	db.lock.Lock()
	snap := db.tree.Clone()
	db.lock.Unlock()
	var err error
	visit := func(it item) bool {
		if endKey != nil && bytes.Compare(it.key, endKey) >= 0 {
			return false
		}
		err = emit(it.key, it.value)
		return err == nil
	}
	if startKey == nil {
		snap.Ascend(visit)
	} else {
		snap.AscendGreaterOrEqual(item{key: startKey}, visit)
	}
	if err == database.ErrHalt {
		return nil
	}
	return err
}

type bulkWriter struct {
	db    *DB
	items []item
}

// BulkWrite returns a new BulkWriter which can be used to buffer up a series
// of writes, which are applied in chunks. You must call Close() to ensure the
// last chunk is written.
func (db *DB) BulkWrite() database.BulkWriter {
	return &bulkWriter{db: db}
}

const bulkWriteChunkCount = 1024

// Buffer will buffer for write a single key/value pair, it may cause the
// current chunk to be written to the tree.
func (writer *bulkWriter) Buffer(key []byte, value []byte) error {
	writer.items = append(writer.items, item{key: pbytes.Copy(key), value: pbytes.Copy(value)})
	if len(writer.items) >= bulkWriteChunkCount {
		return writer.Close()
	}
	return nil
}

// Close writes any pending items and clears the buffer. The bulkWriter is
// still valid to use after calling Close, and Close can be called multiple
// times.
func (writer *bulkWriter) Close() error {
	if len(writer.items) == 0 {
		return nil
	}
	writer.db.lock.Lock()
	for _, it := range writer.items {
		writer.db.tree.ReplaceOrInsert(it)
	}
	writer.db.lock.Unlock()
	writer.items = writer.items[:0]
	return nil
}
