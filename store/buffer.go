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

package store

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ebay/tristore/database"
	"github.com/ebay/tristore/spo"
)

// Buffer accumulates facts and writes them to a store in sorted batches. It
// writes a batch when it reaches capacity, and when Flush is called. A Buffer
// is not thread-safe.
type Buffer struct {
	dst      *Store
	capacity int
	distinct bool
	pending  []spo.Fact
	// seen holds the statements in pending; only used in distinct mode.
	seen     map[spo.Fact]struct{}
	inserted int64
}

// NewBuffer returns a Buffer that writes to 'dst' in batches of up to
// 'capacity' facts. In distinct mode, a fact whose statement is already in
// the current batch is dropped by Add.
func NewBuffer(dst *Store, capacity int, distinct bool) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	b := &Buffer{
		dst:      dst,
		capacity: capacity,
		distinct: distinct,
		pending:  make([]spo.Fact, 0, capacity),
	}
	if distinct {
		b.seen = make(map[spo.Fact]struct{}, capacity)
	}
	return b
}

// Add appends a fact to the current batch, writing the batch out if that
// fills it. Facts with a Null identifier are rejected with ErrNullFact.
func (b *Buffer) Add(f spo.Fact) error {
	if f.HasNull() {
		return fmt.Errorf("%w: %v", ErrNullFact, f)
	}
	if b.distinct {
		st := f.Statement()
		if _, dup := b.seen[st]; dup {
			return nil
		}
		b.seen[st] = struct{}{}
	}
	b.pending = append(b.pending, f)
	if len(b.pending) >= b.capacity {
		_, err := b.Flush()
		return err
	}
	return nil
}

// Len returns the number of facts in the current batch.
func (b *Buffer) Len() int {
	return len(b.pending)
}

// Inserted returns the total number of new facts this Buffer has written to
// its store.
func (b *Buffer) Inserted() int64 {
	return b.inserted
}

// Flush writes the current batch to the store and returns how many of its
// facts were new. Facts already in the store, and repeats within the batch,
// are skipped. The batch is empty when Flush returns, even if writing it
// failed.
func (b *Buffer) Flush() (int, error) {
	if len(b.pending) == 0 {
		return 0, nil
	}
	defer b.reset()
	sort.Slice(b.pending, func(i, j int) bool {
		return lessSPO(b.pending[i], b.pending[j])
	})
	spoIndex := b.dst.indexes[spo.SPO]
	fresh := b.pending[:0:0]
	for i, f := range b.pending {
		if i > 0 && f.SameStatement(b.pending[i-1]) {
			continue
		}
		exists, err := database.Contains(spoIndex, spo.SPO.Key(f))
		if err != nil {
			return 0, fmt.Errorf("unable to check for existing fact %v: %w", f, err)
		}
		if !exists {
			fresh = append(fresh, f)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	// SPO last, so a fact only counts as present once it's in every index.
	for _, order := range []spo.KeyOrder{spo.POS, spo.OSP, spo.SPO} {
		if err := writeSorted(b.dst.indexes[order], order, fresh); err != nil {
			return 0, fmt.Errorf("unable to write %d facts to %v index: %w", len(fresh), order, err)
		}
	}
	b.dst.count.Add(int64(len(fresh)))
	b.inserted += int64(len(fresh))
	return len(fresh), nil
}

func (b *Buffer) reset() {
	b.pending = b.pending[:0]
	if b.distinct {
		for k := range b.seen {
			delete(b.seen, k)
		}
	}
}

func lessSPO(a, b spo.Fact) bool {
	if a.S != b.S {
		return a.S < b.S
	}
	if a.P != b.P {
		return a.P < b.P
	}
	return a.O < b.O
}

// writeSorted writes the facts to the index in key order.
func writeSorted(db database.DB, order spo.KeyOrder, facts []spo.Fact) error {
	kvs := make([]database.KV, len(facts))
	for i, f := range facts {
		kvs[i] = database.KV{Key: order.Key(f), Value: []byte{byte(f.Type)}}
	}
	sort.Slice(kvs, func(i, j int) bool {
		return bytes.Compare(kvs[i].Key, kvs[j].Key) < 0
	})
	w := db.BulkWrite()
	for _, kv := range kvs {
		if err := w.Buffer(kv.Key, kv.Value); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
