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

// Package store holds sets of facts in three ordered indexes, one per
// spo.KeyOrder, which together let any lookup pattern be answered with a
// single range scan. A fact is in the store if its key is in all three
// indexes; Insert, Buffer and Copy keep them in step.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/ebay/tristore/database"
	_ "github.com/ebay/tristore/database/btreedb"  // registers "btree" and "memory"
	_ "github.com/ebay/tristore/database/sqlitedb" // registers "sqlite"
	"github.com/ebay/tristore/spo"
	perrors "github.com/ebay/tristore/util/errors"
	"github.com/ebay/tristore/util/parallel"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ErrIndexMismatch is returned when the three indexes of a store are found to
// hold different sets of facts.
var ErrIndexMismatch = errors.New("store: indexes are inconsistent")

// ErrNullFact is returned when adding a fact with a Null identifier, which is
// only a wildcard.
var ErrNullFact = errors.New("store: fact has a null identifier")

// DefaultBackend is the database implementation used when Options.Backend is
// empty.
const DefaultBackend = "btree"

// Options describe how to open a Store.
type Options struct {
	// Backend is the registered name of the database implementation to use
	// for each index, such as "btree" or "sqlite".
	Backend string
	// Dir holds the index files for persistent backends.
	Dir string
	// Name prefixes the name of each index.
	Name string
}

// Store is a set of facts held in three indexes.
type Store struct {
	name    string
	indexes [3]database.DB
	count   atomic.Int64
}

// New opens (or creates) a store with the given options.
func New(opts Options) (*Store, error) {
	if opts.Backend == "" {
		opts.Backend = DefaultBackend
	}
	if opts.Name == "" {
		opts.Name = "facts"
	}
	s := &Store{name: opts.Name}
	for i, order := range spo.KeyOrders {
		db, err := database.New(opts.Backend, database.FactoryArgs{
			Dir:  opts.Dir,
			Name: fmt.Sprintf("%s-%v", opts.Name, order),
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("unable to open %v index of store %v: %w", order, opts.Name, err)
		}
		s.indexes[i] = db
	}
	n, err := s.indexes[spo.SPO].Count()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("unable to count facts in store %v: %w", opts.Name, err)
	}
	s.count.Store(n)
	log.WithFields(log.Fields{
		"name":    opts.Name,
		"backend": opts.Backend,
		"facts":   n,
	}).Debug("Opened store")
	return s, nil
}

// NewTemp returns a new empty in-memory store with a unique name.
func NewTemp() (*Store, error) {
	return New(Options{Backend: "btree", Name: "tmp-" + uuid.NewString()})
}

// Name returns the name the store was opened with.
func (s *Store) Name() string {
	return s.name
}

// Count returns the number of facts in the store.
func (s *Store) Count() int64 {
	return s.count.Load()
}

// recount resets the statement counter from the SPO index, which holds exactly
// the facts that are present.
func (s *Store) recount() {
	n, err := s.indexes[spo.SPO].Count()
	if err != nil {
		log.WithError(err).WithField("store", s.name).Warn("Unable to recount facts")
		return
	}
	s.count.Store(n)
}

// Index returns the index for the given key order.
func (s *Store) Index(order spo.KeyOrder) database.DB {
	return s.indexes[order]
}

// Range returns a cursor over the keys of the given index in [from, to).
func (s *Store) Range(order spo.KeyOrder, from, to []byte) *database.Cursor {
	return database.NewCursor(s.indexes[order], from, to)
}

// Insert adds the facts to the store, and returns how many of them weren't
// already present. If any fact has a Null identifier, nothing is inserted and
// the error wraps ErrNullFact.
func (s *Store) Insert(ctx context.Context, facts ...spo.Fact) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	buf := NewBuffer(s, len(facts)+1, true)
	for _, f := range facts {
		if err := buf.Add(f); err != nil {
			return 0, err
		}
	}
	return buf.Flush()
}

// Contains returns true if the statement of 'f' is in the store. Its
// provenance is ignored.
func (s *Store) Contains(f spo.Fact) (bool, error) {
	for _, order := range spo.KeyOrders {
		ok, err := database.Contains(s.indexes[order], order.Key(f))
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// lookupCheckInterval is how many facts Lookup emits between checks of its
// context.
const lookupCheckInterval = 1024

// Lookup calls emit for each fact matching the pattern (s, p, o), where
// spo.Null matches anything. It scans the index whose key prefix covers the
// most bound positions. If emit returns database.ErrHalt, Lookup stops and
// returns nil; any other error is returned as is.
func (s *Store) Lookup(ctx context.Context, subject, predicate, object uint64, emit func(spo.Fact) error) error {
	order, bound := spo.BestOrder(subject, predicate, object)
	a, b, c := order.Rotate(subject, predicate, object)
	from, to := spo.Prefix(bound, a, b, c)
	cursor := s.Range(order, from, to)
	for i := 0; ; i++ {
		if i%lookupCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		t, err := cursor.Next()
		if err == database.ErrExhausted {
			return nil
		}
		if err != nil {
			return err
		}
		f, err := decodeFact(order, t.Key, t.Value)
		if err != nil {
			return err
		}
		if !matches(f, subject, predicate, object) {
			continue
		}
		if err := emit(f); err != nil {
			if err == database.ErrHalt {
				return nil
			}
			return err
		}
	}
}

func matches(f spo.Fact, s, p, o uint64) bool {
	return (s == spo.Null || f.S == s) &&
		(p == spo.Null || f.P == p) &&
		(o == spo.Null || f.O == o)
}

func decodeFact(order spo.KeyOrder, key, value []byte) (spo.Fact, error) {
	f, err := order.Decode(key)
	if err != nil {
		return f, err
	}
	f.Type = spo.Explicit
	if len(value) > 0 {
		f.Type = spo.Provenance(value[0])
	}
	return f, nil
}

// Facts returns every fact in the store, in SPO order.
func (s *Store) Facts(ctx context.Context) ([]spo.Fact, error) {
	facts := make([]spo.Fact, 0, s.Count())
	err := s.indexes[spo.SPO].Enumerate(nil, nil, func(key, value []byte) error {
		if len(facts)%lookupCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		f, err := decodeFact(spo.SPO, key, value)
		if err != nil {
			return err
		}
		facts = append(facts, f)
		return nil
	})
	return facts, err
}

// indexSummary is the number of facts in an index along with an order
// independent fingerprint of them.
type indexSummary struct {
	count       int64
	fingerprint uint64
}

// Verify checks that the three indexes hold the same facts, and that they
// agree with the statement counter. It returns an error wrapping
// ErrIndexMismatch if they don't.
func (s *Store) Verify(ctx context.Context) error {
	var summaries [3]indexSummary
	err := parallel.InvokeN(ctx, len(spo.KeyOrders), func(ctx context.Context, i int) error {
		order := spo.KeyOrders[i]
		return s.indexes[order].Enumerate(nil, nil, func(key, value []byte) error {
			f, err := order.Decode(key)
			if err != nil {
				return err
			}
			summaries[i].count++
			summaries[i].fingerprint += xxhash.Sum64(spo.SPO.Key(f))
			if summaries[i].count%lookupCheckInterval == 0 {
				return ctx.Err()
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	for i := 1; i < len(summaries); i++ {
		if summaries[i] != summaries[0] {
			return fmt.Errorf("%w: %v has %d facts (fingerprint %x), %v has %d facts (fingerprint %x)",
				ErrIndexMismatch,
				spo.KeyOrders[0], summaries[0].count, summaries[0].fingerprint,
				spo.KeyOrders[i], summaries[i].count, summaries[i].fingerprint)
		}
	}
	if summaries[0].count != s.Count() {
		return fmt.Errorf("%w: indexes have %d facts but the store counted %d",
			ErrIndexMismatch, summaries[0].count, s.Count())
	}
	return nil
}

// Close closes all the indexes of the store.
func (s *Store) Close() error {
	var errs []error
	for i, db := range s.indexes {
		if db != nil {
			errs = append(errs, db.Close())
			s.indexes[i] = nil
		}
	}
	return perrors.Any(errs...)
}
