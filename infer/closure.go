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
	"errors"
	"fmt"

	"github.com/ebay/tristore/store"
	"github.com/ebay/tristore/util/clocks"
	opentracing "github.com/opentracing/opentracing-go"
	log "github.com/sirupsen/logrus"
)

// ErrNoStore is returned when no store is given to close.
var ErrNoStore = errors.New("infer: no store")

// DefaultBufferCapacity is the number of derived facts buffered before they
// are written to the temporary store, when Options.BufferCapacity is 0.
const DefaultBufferCapacity = 100 * 1024

// Options control how a closure is computed. The zero value is usable.
type Options struct {
	// BufferCapacity is how many derived facts are held before they're
	// sorted and written out.
	BufferCapacity int
	// Distinct drops repeated facts as they're derived rather than when
	// they're written out.
	Distinct bool
	// Clock times rule applications. Defaults to the wall clock.
	Clock clocks.Source
}

func (o Options) withDefaults() Options {
	if o.BufferCapacity <= 0 {
		o.BufferCapacity = DefaultBufferCapacity
	}
	if o.Clock == nil {
		o.Clock = clocks.Wall
	}
	return o
}

func validateRules(rules []Rule) error {
	if len(rules) == 0 {
		return ErrNoRules
	}
	for i, r := range rules {
		if isNil(r) {
			return fmt.Errorf("rule %d: %w", i, ErrNilRule)
		}
	}
	return nil
}

// ComputeClosure applies the rules to 'db' in rounds until a round derives
// no fact that an earlier round hadn't. Each round applies every rule in
// order to the facts in 'db' as they were at the start of the round; the
// facts derived are collected in a temporary store and merged into 'db'
// between rounds.
//
// If ComputeClosure fails, facts merged by earlier rounds remain in 'db'.
// Running it again continues towards the same fixed point.
func ComputeClosure(ctx context.Context, db *store.Store, rules []Rule, opts Options) (*Stats, error) {
	if db == nil {
		return nil, ErrNoStore
	}
	if err := validateRules(rules); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	span, ctx := opentracing.StartSpanFromContext(ctx, "closure")
	span.SetTag("rules", len(rules))
	defer span.Finish()

	tmp, err := store.NewTemp()
	if err != nil {
		return nil, err
	}
	defer tmp.Close()
	buf := store.NewBuffer(tmp, opts.BufferCapacity, opts.Distinct)

	stats := new(Stats)
	start := opts.Clock.Now()
	firstCount := db.Count()
	log.WithFields(log.Fields{
		"store":      db.Name(),
		"statements": firstCount,
		"rules":      len(rules),
	}).Debug("Closing store")
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		done, err := closureRound(ctx, db, tmp, buf, rules, opts, stats)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}
	stats.Elapsed = clocks.Since(opts.Clock, start)
	stats.Statements = db.Count()
	metrics.closureDurationSeconds.Observe(stats.Elapsed.Seconds())
	inferences := stats.Statements - firstCount
	log.WithFields(log.Fields{
		"store":             db.Name(),
		"rules":             len(rules),
		"rounds":            stats.Rounds,
		"elapsed":           stats.Elapsed,
		"statements":        stats.Statements,
		"inferences":        inferences,
		"entailmentsPerSec": perSecond(inferences, stats),
	}).Info("Computed closure")
	span.SetTag("rounds", stats.Rounds)
	return stats, nil
}

// closureRound applies every rule once, and merges what they derived into
// 'db'. It returns true if the round reached the fixed point.
func closureRound(ctx context.Context, db, tmp *store.Store, buf *store.Buffer,
	rules []Rule, opts Options, stats *Stats) (bool, error) {

	round := stats.Rounds
	span, ctx := opentracing.StartSpanFromContext(ctx, "closure round")
	span.SetTag("round", round)
	defer span.Finish()

	before := tmp.Count()
	for _, rule := range rules {
		rs, err := apply(ctx, db, rule, buf, opts.Clock)
		stats.Add(rs)
		observeRule(rs)
		log.WithFields(log.Fields{
			"round":               round,
			"rule":                rs.Rule,
			"entailments":         rs.Derived,
			"stmts1":              rs.Examined[0],
			"stmts2":              rs.Examined[1],
			"stmts3":              rs.Examined[2],
			"subqueries":          rs.Subqueries,
			"stmtsExaminedPerSec": rs.ExaminedPerSecond(),
		}).Debug("Applied rule")
		if err != nil {
			return false, err
		}
	}
	if _, err := buf.Flush(); err != nil {
		return false, err
	}
	stats.Rounds++
	metrics.roundsTotal.Inc()
	if tmp.Count() == before {
		return true, nil
	}
	mergeStart := opts.Clock.Now()
	inserted, err := store.Copy(ctx, tmp, db)
	if err != nil {
		return false, err
	}
	stats.Inserted += inserted
	metrics.factsMergedTotal.Add(float64(inserted))
	log.WithFields(log.Fields{
		"round":    round,
		"derived":  stats.Derived,
		"inserted": inserted,
		"elapsed":  clocks.Since(opts.Clock, mergeStart),
	}).Debug("Merged round")
	return false, nil
}

func perSecond(n int64, stats *Stats) int64 {
	if stats.Elapsed <= 0 {
		return 0
	}
	return int64(float64(n) / stats.Elapsed.Seconds())
}
