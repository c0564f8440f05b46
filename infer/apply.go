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
	"fmt"

	"github.com/ebay/tristore/spo"
	"github.com/ebay/tristore/store"
	"github.com/ebay/tristore/util/clocks"
	opentracing "github.com/opentracing/opentracing-go"
)

// Apply evaluates the rule once against 'db' and adds every fact it derives
// to 'buf', with provenance Inferred. It doesn't flush 'buf'. The returned
// statistics are valid even if Apply fails part way.
func Apply(ctx context.Context, db *store.Store, rule Rule, buf *store.Buffer) (RuleStats, error) {
	return apply(ctx, db, rule, buf, clocks.Wall)
}

func apply(ctx context.Context, db *store.Store, rule Rule, buf *store.Buffer, clock clocks.Source) (RuleStats, error) {
	if isNil(rule) {
		return RuleStats{}, ErrNilRule
	}
	span, ctx := opentracing.StartSpanFromContext(ctx, "apply rule")
	span.SetTag("rule", rule.Name())
	defer span.Finish()

	start := clock.Now()
	j := joiner{
		db:   db,
		buf:  buf,
		head: rule.Head(),
	}
	j.stats.Rule = rule.Name()
	var err error
	switch r := rule.(type) {
	case *Rule1:
		// single scan, no sub-queries
		j.body = []Pattern{r.A}
		err = j.join(ctx, 0)
	case *Rule2:
		j.body = []Pattern{r.A, r.B}
		err = j.join(ctx, 0)
	case *Rule3:
		j.body = []Pattern{r.A, r.B, r.C}
		err = j.join(ctx, 0)
	default:
		err = fmt.Errorf("infer: unexpected rule type %T", rule)
	}
	j.stats.Elapsed = clocks.Since(clock, start)
	span.SetTag("derived", j.stats.Derived)
	if err != nil {
		return j.stats, fmt.Errorf("applying rule %s: %w", rule.Name(), err)
	}
	return j.stats, nil
}

// joiner evaluates a rule body as a nested loop join. The first antecedent is
// a range scan, and each later antecedent is a lookup with the variables
// bound so far substituted in.
type joiner struct {
	db    *store.Store
	buf   *store.Buffer
	head  Pattern
	body  []Pattern
	binds bindings
	stats RuleStats
}

func (j *joiner) join(ctx context.Context, i int) error {
	if i == len(j.body) {
		return j.derive()
	}
	pat := j.body[i]
	if i > 0 {
		j.stats.Subqueries++
	}
	s, p, o := j.binds.lookupArgs(pat)
	return j.db.Lookup(ctx, s, p, o, func(f spo.Fact) error {
		j.stats.Examined[i]++
		mark := j.binds.len()
		if j.binds.bind(pat, f) {
			if err := j.join(ctx, i+1); err != nil {
				return err
			}
		}
		j.binds.truncate(mark)
		return nil
	})
}

func (j *joiner) derive() error {
	f := spo.Fact{
		S:    j.binds.value(j.head.S),
		P:    j.binds.value(j.head.P),
		O:    j.binds.value(j.head.O),
		Type: spo.Inferred,
	}
	j.stats.Derived++
	return j.buf.Add(f)
}

// bindings is a stack of variable assignments.
type bindings struct {
	vars []Term
	vals []uint64
}

func (b *bindings) len() int {
	return len(b.vars)
}

func (b *bindings) truncate(n int) {
	b.vars = b.vars[:n]
	b.vals = b.vals[:n]
}

// get returns the value of a constant or bound variable.
func (b *bindings) get(t Term) (uint64, bool) {
	if !t.IsVar() {
		return t.ID(), true
	}
	for i := len(b.vars) - 1; i >= 0; i-- {
		if b.vars[i] == t {
			return b.vals[i], true
		}
	}
	return spo.Null, false
}

// value is get for terms known to be bound.
func (b *bindings) value(t Term) uint64 {
	v, ok := b.get(t)
	if !ok {
		panic(fmt.Sprintf("infer: variable %v is unbound", t))
	}
	return v
}

// lookupArgs returns the pattern's positions with the current bindings
// substituted, and spo.Null for unbound variables.
func (b *bindings) lookupArgs(p Pattern) (s, pr, o uint64) {
	s, _ = b.get(p.S)
	pr, _ = b.get(p.P)
	o, _ = b.get(p.O)
	return s, pr, o
}

// bind extends the bindings with the pattern's variables as matched by 'f'.
// It returns false if 'f' conflicts with the bindings, which happens when a
// variable appears more than once in the pattern.
func (b *bindings) bind(p Pattern, f spo.Fact) bool {
	vals := [3]uint64{f.S, f.P, f.O}
	for i, t := range p.terms() {
		if !t.IsVar() {
			continue
		}
		if v, ok := b.get(t); ok {
			if v != vals[i] {
				return false
			}
			continue
		}
		b.vars = append(b.vars, t)
		b.vals = append(b.vals, vals[i])
	}
	return true
}
