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
	"testing"

	"github.com/ebay/tristore/spo"
	"github.com/ebay/tristore/store"
	"github.com/ebay/tristore/terms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pets is a small ontology along with the engine to close it.
type pets struct {
	dict  *terms.Memory
	voc   Vocabulary
	db    *store.Store
	eng   *Engine
	terms map[string]uint64
}

func newPets(t *testing.T, dict *terms.Memory) *pets {
	if dict == nil {
		dict = terms.NewMemory()
	}
	p := &pets{
		dict:  dict,
		voc:   NewVocabulary(dict),
		db:    newTemp(t),
		terms: make(map[string]uint64),
	}
	for _, name := range []string{"Dog", "Mammal", "Animal", "rex", "fido",
		"hasParent", "hasAncestor", "kind", "name", "Named", "Fido"} {
		p.terms[name] = dict.AddTerm("ex:" + name)
	}
	x := p.id
	v := p.voc
	_, err := p.db.Insert(context.Background(),
		spo.New(x("Dog"), v.SubClassOf, x("Mammal")),
		spo.New(x("Mammal"), v.SubClassOf, x("Animal")),
		spo.New(x("rex"), v.Type, x("Dog")),
		spo.New(x("hasParent"), v.SubPropertyOf, x("hasAncestor")),
		spo.New(x("rex"), x("hasParent"), x("fido")),
		spo.New(x("kind"), v.SubPropertyOf, v.Type),
		spo.New(x("fido"), x("kind"), x("Dog")),
		spo.New(x("name"), v.Domain, x("Named")),
		spo.New(x("fido"), x("name"), x("Fido")),
	)
	require.NoError(t, err)
	p.eng, err = New(p.db, dict, Options{})
	require.NoError(t, err)
	return p
}

func (p *pets) id(name string) uint64 {
	return p.terms[name]
}

// entailments are facts that both closures must derive from pets.
func (p *pets) entailments() []spo.Fact {
	x := p.id
	v := p.voc
	return []spo.Fact{
		spo.New(x("rex"), v.Type, x("Mammal")),
		spo.New(x("rex"), v.Type, x("Animal")),
		spo.New(x("Dog"), v.SubClassOf, x("Animal")),
		spo.New(x("rex"), x("hasAncestor"), x("fido")),
		spo.New(x("hasParent"), v.Type, v.Property),
		spo.New(x("Dog"), v.Type, v.Class),
		spo.New(x("Dog"), v.SubClassOf, x("Dog")),
		spo.New(x("Dog"), v.SubClassOf, v.Resource),
		spo.New(x("fido"), v.Type, x("Dog")),
		spo.New(x("fido"), v.Type, x("Animal")),
		spo.New(x("fido"), v.Type, x("Named")),
		spo.New(v.Type, v.Type, v.Property),
	}
}

func Test_NewEngine(t *testing.T) {
	_, err := New(nil, terms.NewMemory(), Options{})
	assert.Equal(t, ErrNoStore, err)
	_, err = New(newTemp(t), nil, Options{})
	assert.EqualError(t, err, "infer: no term dictionary")
}

func Test_EngineNextVar(t *testing.T) {
	assert := assert.New(t)
	p := newPets(t, nil)
	first := p.eng.NextVar()
	assert.True(first.IsVar())
	assert.Equal(first-1, p.eng.NextVar())
	for _, r := range p.eng.Rules() {
		for _, pat := range r.Body() {
			for _, term := range pat.terms() {
				assert.True(term > first, "rule %v uses %v", r, term)
			}
		}
	}
}

func Test_EngineRules(t *testing.T) {
	p := newPets(t, nil)
	var names []string
	for _, r := range p.eng.Rules() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"rdf1", "rdfs2", "rdfs3", "rdfs5", "rdfs6", "rdfs7",
		"rdfs8", "rdfs9", "rdfs10", "rdfs11", "rdfs12", "rdfs13"}, names)
	assert.Equal(t, p.voc, p.eng.Vocabulary())
	assert.Equal(t, p.db, p.eng.Store())
}

func Test_AddAxioms(t *testing.T) {
	assert := assert.New(t)
	p := newPets(t, nil)
	axioms := p.voc.Axioms()
	n, err := p.eng.AddAxioms(context.Background())
	require.NoError(t, err)
	assert.Equal(len(axioms), n)
	n, err = p.eng.AddAxioms(context.Background())
	require.NoError(t, err)
	assert.Equal(0, n)
	for _, a := range axioms {
		assert.Equal(spo.Axiom, a.Type)
		ok, err := p.db.Contains(a)
		assert.NoError(err)
		assert.True(ok, "missing axiom %v", a)
	}
}

func Test_FullClosure(t *testing.T) {
	assert := assert.New(t)
	p := newPets(t, nil)
	stats, err := p.eng.FullClosure(context.Background())
	require.NoError(t, err)
	assert.Equal(len(p.voc.Axioms()), stats.Axioms)
	assert.Equal(p.db.Count(), stats.Statements)
	assert.True(stats.Rounds > 1)
	got := statements(t, p.db)
	for _, f := range p.entailments() {
		assert.True(got[f], "missing %v", f)
	}
	assert.NoError(p.db.Verify(context.Background()))

	// a closed store stays closed.
	stats, err = p.eng.FullClosure(context.Background())
	require.NoError(t, err)
	assert.Equal(0, stats.Axioms)
	assert.Equal(int64(0), stats.Inserted)
	assert.Equal(got, statements(t, p.db))
}

func Test_FastClosure(t *testing.T) {
	assert := assert.New(t)
	dict := terms.NewMemory()
	fast := newPets(t, dict)
	full := newPets(t, dict)

	stats, err := fast.eng.FastClosure(context.Background())
	require.NoError(t, err)
	assert.Equal(len(fast.voc.Axioms()), stats.Axioms)
	assert.Equal(fast.db.Count(), stats.Statements)
	assert.True(stats.Inserted > 0)
	_, err = full.eng.FullClosure(context.Background())
	require.NoError(t, err)

	fastStmts := statements(t, fast.db)
	fullStmts := statements(t, full.db)
	for _, f := range fast.entailments() {
		assert.True(fastStmts[f], "missing %v", f)
	}
	for f := range fastStmts {
		assert.True(fullStmts[f], "fast closure derived %v, full closure didn't", f)
	}
	assert.NoError(fast.db.Verify(context.Background()))
}

func Test_FastClosureCancelled(t *testing.T) {
	p := newPets(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := p.eng.FastClosure(ctx)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Nil(t, stats)
	assert.Equal(t, int64(9), p.db.Count())
}

func Test_SubProperties(t *testing.T) {
	dict := terms.NewMemory()
	v := NewVocabulary(dict)
	narrower := dict.AddTerm("ex:narrower")
	narrowest := dict.AddTerm("ex:narrowest")
	tiny := dict.AddTerm("ex:tiny")
	other := dict.AddTerm("ex:other")
	db := newTemp(t,
		spo.New(narrower, v.SubPropertyOf, v.SubPropertyOf),
		spo.New(narrowest, narrower, v.SubPropertyOf),
		spo.New(tiny, v.SubPropertyOf, narrowest),
		spo.New(other, v.SubPropertyOf, v.Type),
	)
	got, err := SubProperties(context.Background(), db, v.SubPropertyOf)
	require.NoError(t, err)
	assert.Equal(t, []uint64{v.SubPropertyOf, narrower, narrowest, tiny}, got)

	got, err = SubProperties(context.Background(), newTemp(t), v.SubPropertyOf)
	require.NoError(t, err)
	assert.Equal(t, []uint64{v.SubPropertyOf}, got)
}

func Test_SubPropertiesOf(t *testing.T) {
	dict := terms.NewMemory()
	v := NewVocabulary(dict)
	kind := dict.AddTerm("ex:kind")
	sort := dict.AddTerm("ex:sort")
	indirect := dict.AddTerm("ex:indirect")
	db := newTemp(t,
		spo.New(sort, v.SubPropertyOf, v.Type),
		spo.New(kind, v.SubPropertyOf, v.Type),
		spo.New(indirect, v.SubPropertyOf, kind),
		spo.New(kind, v.Domain, v.Resource),
	)
	got, err := SubPropertiesOf(context.Background(), db, v.SubPropertyOf, v.Type)
	require.NoError(t, err)
	assert.Equal(t, []uint64{v.Type, kind, sort}, got)
	got, err = SubPropertiesOf(context.Background(), db, v.SubPropertyOf, v.Range)
	require.NoError(t, err)
	assert.Equal(t, []uint64{v.Range}, got)
}

func Test_ProjectPredicates(t *testing.T) {
	assert := assert.New(t)
	db := newTemp(t,
		spo.New(1, 20, 2),
		spo.New(3, 21, 4),
		spo.New(5, 22, 6),
		spo.New(7, 10, 8),
	)
	out := newTemp(t)
	buf := store.NewBuffer(out, 16, false)
	n, err := ProjectPredicates(context.Background(), db, buf, []uint64{21, 20, 10}, 10)
	require.NoError(t, err)
	assert.Equal(3, n)
	assert.Equal(0, buf.Len())
	facts, err := out.Facts(context.Background())
	require.NoError(t, err)
	assert.Equal([]spo.Fact{
		{S: 1, P: 10, O: 2, Type: spo.Inferred},
		{S: 3, P: 10, O: 4, Type: spo.Inferred},
		{S: 7, P: 10, O: 8, Type: spo.Inferred},
	}, facts)
}

func Test_ProjectPredicatesCancelled(t *testing.T) {
	db := newTemp(t, spo.New(1, 20, 2))
	out := newTemp(t)
	buf := store.NewBuffer(out, 16, false)
	require.NoError(t, buf.Add(spo.Fact{S: 5, P: 10, O: 6, Type: spo.Inferred}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := ProjectPredicates(ctx, db, buf, []uint64{20}, 10)
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, buf.Len())
	assert.Equal(t, stmts(spo.New(5, 10, 6)), statements(t, out))
}

func Test_ClosureIndependentOfRuleOrder(t *testing.T) {
	dict := terms.NewMemory()
	orders := map[string][]int{
		"given":    {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
		"reversed": {11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
		"shuffled": {7, 2, 11, 0, 9, 4, 1, 10, 5, 3, 8, 6},
	}
	results := make(map[string]map[spo.Fact]bool)
	for name, order := range orders {
		p := newPets(t, dict)
		_, err := p.eng.AddAxioms(context.Background())
		require.NoError(t, err)
		all := p.eng.Rules()
		require.Len(t, all, len(order))
		rules := make([]Rule, len(order))
		for i, j := range order {
			rules[i] = all[j]
		}
		_, err = ComputeClosure(context.Background(), p.db, rules, Options{})
		require.NoError(t, err, name)
		results[name] = statements(t, p.db)
	}
	assert.Equal(t, results["given"], results["reversed"])
	assert.Equal(t, results["given"], results["shuffled"])
}
