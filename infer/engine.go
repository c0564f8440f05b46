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
	"github.com/ebay/tristore/terms"
	log "github.com/sirupsen/logrus"
)

// Engine computes the RDFS closure of a store. It is not thread-safe.
type Engine struct {
	db      *store.Store
	dict    terms.Dictionary
	opts    Options
	vocab   Vocabulary
	lastVar Term
	rules   rdfsRules
}

// New returns an Engine for 'db', resolving the RDF and RDFS vocabulary with
// 'dict'.
func New(db *store.Store, dict terms.Dictionary, opts Options) (*Engine, error) {
	if db == nil {
		return nil, ErrNoStore
	}
	if dict == nil {
		return nil, errors.New("infer: no term dictionary")
	}
	e := &Engine{
		db:    db,
		dict:  dict,
		opts:  opts.withDefaults(),
		vocab: NewVocabulary(dict),
	}
	e.rules = newRDFSRules(e.vocab, e.NextVar)
	return e, nil
}

// NextVar returns a variable that this Engine hasn't handed out before. The
// first is -1, then -2, and so on.
func (e *Engine) NextVar() Term {
	e.lastVar--
	return e.lastVar
}

// Rules returns the RDF and RDFS rules, in the order FullClosure applies
// them.
func (e *Engine) Rules() []Rule {
	return e.rules.all()
}

// Vocabulary returns the term identifiers the Engine's rules and axioms use.
func (e *Engine) Vocabulary() Vocabulary {
	return e.vocab
}

// Store returns the store the Engine closes.
func (e *Engine) Store() *store.Store {
	return e.db
}

// AddAxioms inserts the RDF and RDFS axiomatic triples into the store and
// returns how many were new.
func (e *Engine) AddAxioms(ctx context.Context) (int, error) {
	n, err := e.db.Insert(ctx, e.vocab.Axioms()...)
	if err != nil {
		return n, fmt.Errorf("unable to add axioms: %w", err)
	}
	log.WithFields(log.Fields{
		"store":  e.db.Name(),
		"axioms": n,
	}).Debug("Added axioms")
	return n, nil
}

// FullClosure adds the axioms, then runs all the rules to a fixed point with
// ComputeClosure.
func (e *Engine) FullClosure(ctx context.Context) (*Stats, error) {
	axioms, err := e.AddAxioms(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := ComputeClosure(ctx, e.db, e.Rules(), e.opts)
	if err != nil {
		return nil, err
	}
	stats.Axioms = axioms
	return stats, nil
}
