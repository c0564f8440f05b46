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

package infer

import (
	"context"
	"sort"

	"github.com/ebay/tristore/spo"
	"github.com/ebay/tristore/store"
	"github.com/ebay/tristore/util/clocks"
	perrors "github.com/ebay/tristore/util/errors"
	opentracing "github.com/opentracing/opentracing-go"
	log "github.com/sirupsen/logrus"
)

// FastClosure computes the RDFS closure by applying the rules in a fixed
// order, each once, except for the transitive rules rdfs5 and rdfs11 which
// are run to their own fixed points. Sub-properties of rdfs:subPropertyOf,
// rdfs:domain, rdfs:range, rdfs:subClassOf and rdf:type are first rewritten
// to use those properties directly.
//
// This is much faster than FullClosure for typical ontologies, but it's
// not complete: facts that only follow from a rule applied after another
// rule that needed them, such as rdfs7 producing a new rdf:type fact after
// rdfs9 ran, are missed. FastClosure's result is always a subset of
// FullClosure's.
func (e *Engine) FastClosure(ctx context.Context) (*Stats, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "fast closure")
	defer span.Finish()
	start := e.opts.Clock.Now()
	firstCount := e.db.Count()

	stats := new(Stats)
	axioms, err := e.AddAxioms(ctx)
	if err != nil {
		return nil, err
	}
	stats.Axioms = axioms

	tmp, err := store.NewTemp()
	if err != nil {
		return nil, err
	}
	defer tmp.Close()
	fc := fastClosure{
		e:     e,
		tmp:   tmp,
		buf:   store.NewBuffer(tmp, e.opts.BufferCapacity, e.opts.Distinct),
		stats: stats,
	}
	v := e.vocab
	r := &e.rules

	props, err := SubProperties(ctx, e.db, v.SubPropertyOf)
	if err != nil {
		return nil, err
	}
	if err := fc.project(ctx, props, v.SubPropertyOf); err != nil {
		return nil, err
	}
	if err := fc.fixedPoint(ctx, r.rdfs5); err != nil {
		return nil, err
	}

	// the sub-properties of domain, range, subClassOf and type.
	canonical := []uint64{v.Domain, v.Range, v.SubClassOf, v.Type}
	subs := make([][]uint64, len(canonical))
	for i, p := range canonical {
		subs[i], err = SubPropertiesOf(ctx, e.db, v.SubPropertyOf, p)
		if err != nil {
			return nil, err
		}
	}
	for i := 0; i < 3; i++ {
		if err := fc.project(ctx, subs[i], canonical[i]); err != nil {
			return nil, err
		}
	}
	if err := fc.fixedPoint(ctx, r.rdfs11); err != nil {
		return nil, err
	}
	if err := fc.project(ctx, subs[3], v.Type); err != nil {
		return nil, err
	}

	for _, rule := range []Rule{r.rdfs2, r.rdfs3, r.rdf1, r.rdfs9, r.rdfs10, r.rdfs8, r.rdfs13, r.rdfs6, r.rdfs7} {
		if err := fc.applyOnce(ctx, rule); err != nil {
			return nil, err
		}
	}

	stats.Elapsed = clocks.Since(e.opts.Clock, start)
	stats.Statements = e.db.Count()
	inferences := stats.Statements - firstCount
	log.WithFields(log.Fields{
		"store":             e.db.Name(),
		"elapsed":           stats.Elapsed,
		"statements":        stats.Statements,
		"inferences":        inferences,
		"entailmentsPerSec": perSecond(inferences, stats),
	}).Info("Computed fast closure")
	return stats, nil
}

// fastClosure holds the state of one FastClosure run. Derived facts collect
// in 'tmp' and are merged into the engine's store after each step.
type fastClosure struct {
	e     *Engine
	tmp   *store.Store
	buf   *store.Buffer
	stats *Stats
}

func (fc *fastClosure) merge(ctx context.Context) error {
	if _, err := fc.buf.Flush(); err != nil {
		return err
	}
	n, err := store.Copy(ctx, fc.tmp, fc.e.db)
	if err != nil {
		return err
	}
	fc.stats.Inserted += n
	metrics.factsMergedTotal.Add(float64(n))
	return nil
}

func (fc *fastClosure) project(ctx context.Context, preds []uint64, canonical uint64) error {
	n, err := ProjectPredicates(ctx, fc.e.db, fc.buf, preds, canonical)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"predicates": len(preds),
		"canonical":  canonical,
		"projected":  n,
	}).Debug("Projected predicates")
	return fc.merge(ctx)
}

func (fc *fastClosure) fixedPoint(ctx context.Context, rule Rule) error {
	sub, err := ComputeClosure(ctx, fc.e.db, []Rule{rule}, fc.e.opts)
	if err != nil {
		return err
	}
	fc.stats.merge(sub)
	return nil
}

func (fc *fastClosure) applyOnce(ctx context.Context, rule Rule) error {
	rs, err := apply(ctx, fc.e.db, rule, fc.buf, fc.e.opts.Clock)
	fc.stats.Add(rs)
	observeRule(rs)
	log.WithFields(log.Fields{
		"rule":        rs.Rule,
		"entailments": rs.Derived,
		"subqueries":  rs.Subqueries,
		"elapsed":     rs.Elapsed,
	}).Debug("Applied rule")
	if err != nil {
		return err
	}
	return fc.merge(ctx)
}

// SubProperties returns the properties that are directly or indirectly
// declared to be sub-properties of 'subPropertyOf', including
// 'subPropertyOf' itself, in ascending order. A property x is included if
// there's a fact (x, q, y) where q and y are both already included.
func SubProperties(ctx context.Context, db *store.Store, subPropertyOf uint64) ([]uint64, error) {
	members := map[uint64]struct{}{subPropertyOf: {}}
	for {
		found := make(map[uint64]struct{})
		for _, p := range sortedIDs(members) {
			err := db.Lookup(ctx, spo.Null, p, spo.Null, func(f spo.Fact) error {
				if _, ok := members[f.O]; ok {
					found[f.S] = struct{}{}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
		before := len(members)
		for id := range found {
			members[id] = struct{}{}
		}
		if len(members) == before {
			return sortedIDs(members), nil
		}
	}
}

// SubPropertiesOf returns 'p' and every x where (x, subPropertyOf, p) is in
// the store, in ascending order.
func SubPropertiesOf(ctx context.Context, db *store.Store, subPropertyOf, p uint64) ([]uint64, error) {
	members := map[uint64]struct{}{p: {}}
	err := db.Lookup(ctx, spo.Null, subPropertyOf, p, func(f spo.Fact) error {
		members[f.S] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sortedIDs(members), nil
}

// ProjectPredicates adds (s, canonical, o) to 'buf' for each fact (s, p, o)
// in 'db' where p is one of 'preds'. Predicates are visited in ascending
// order. It flushes 'buf' before returning, even when a lookup fails, and
// returns the number of facts it added to the buffer.
func ProjectPredicates(ctx context.Context, db *store.Store, buf *store.Buffer, preds []uint64, canonical uint64) (int, error) {
	ordered := append([]uint64(nil), preds...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	n := 0
	for _, p := range ordered {
		err := db.Lookup(ctx, spo.Null, p, spo.Null, func(f spo.Fact) error {
			n++
			return buf.Add(spo.Fact{S: f.S, P: canonical, O: f.O, Type: spo.Inferred})
		})
		if err != nil {
			_, flushErr := buf.Flush()
			if flushErr != nil {
				log.WithError(flushErr).Warn("Unable to flush projected facts")
			}
			return n, perrors.Any(err, flushErr)
		}
	}
	_, err := buf.Flush()
	return n, err
}

func sortedIDs(set map[uint64]struct{}) []uint64 {
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
