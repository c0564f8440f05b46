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

// rdfsRules are the RDF and RDFS entailment rules, named as in the RDF
// Semantics recommendation. rdfs4a, rdfs4b and the literal rules are left
// out as they'd type every resource.
type rdfsRules struct {
	rdf1, rdfs2, rdfs3, rdfs5, rdfs6, rdfs7      Rule
	rdfs8, rdfs9, rdfs10, rdfs11, rdfs12, rdfs13 Rule
}

// all returns the rules in the order FullClosure applies them.
func (r *rdfsRules) all() []Rule {
	return []Rule{
		r.rdf1, r.rdfs2, r.rdfs3, r.rdfs5, r.rdfs6, r.rdfs7,
		r.rdfs8, r.rdfs9, r.rdfs10, r.rdfs11, r.rdfs12, r.rdfs13,
	}
}

// newRDFSRules builds the rules over 'v', taking fresh variables from
// 'nextVar'.
func newRDFSRules(v Vocabulary, nextVar func() Term) rdfsRules {
	c := Const
	var r rdfsRules
	{
		u, a, y := nextVar(), nextVar(), nextVar()
		r.rdf1 = mustRule("rdf1",
			P(a, c(v.Type), c(v.Property)),
			P(u, a, y))
	}
	{
		a, x, u, y := nextVar(), nextVar(), nextVar(), nextVar()
		r.rdfs2 = mustRule("rdfs2",
			P(u, c(v.Type), x),
			P(a, c(v.Domain), x), P(u, a, y))
	}
	{
		a, x, u, w := nextVar(), nextVar(), nextVar(), nextVar()
		r.rdfs3 = mustRule("rdfs3",
			P(w, c(v.Type), x),
			P(a, c(v.Range), x), P(u, a, w))
	}
	{
		u, w, x := nextVar(), nextVar(), nextVar()
		r.rdfs5 = mustRule("rdfs5",
			P(u, c(v.SubPropertyOf), x),
			P(u, c(v.SubPropertyOf), w), P(w, c(v.SubPropertyOf), x))
	}
	{
		u := nextVar()
		r.rdfs6 = mustRule("rdfs6",
			P(u, c(v.SubPropertyOf), u),
			P(u, c(v.Type), c(v.Property)))
	}
	{
		a, b, u, y := nextVar(), nextVar(), nextVar(), nextVar()
		r.rdfs7 = mustRule("rdfs7",
			P(u, b, y),
			P(a, c(v.SubPropertyOf), b), P(u, a, y))
	}
	{
		u := nextVar()
		r.rdfs8 = mustRule("rdfs8",
			P(u, c(v.SubClassOf), c(v.Resource)),
			P(u, c(v.Type), c(v.Class)))
	}
	{
		u, x, w := nextVar(), nextVar(), nextVar()
		r.rdfs9 = mustRule("rdfs9",
			P(w, c(v.Type), x),
			P(u, c(v.SubClassOf), x), P(w, c(v.Type), u))
	}
	{
		u := nextVar()
		r.rdfs10 = mustRule("rdfs10",
			P(u, c(v.SubClassOf), u),
			P(u, c(v.Type), c(v.Class)))
	}
	{
		u, w, x := nextVar(), nextVar(), nextVar()
		r.rdfs11 = mustRule("rdfs11",
			P(u, c(v.SubClassOf), x),
			P(u, c(v.SubClassOf), w), P(w, c(v.SubClassOf), x))
	}
	{
		u := nextVar()
		r.rdfs12 = mustRule("rdfs12",
			P(u, c(v.SubPropertyOf), c(v.Member)),
			P(u, c(v.Type), c(v.ContainerMembershipProperty)))
	}
	{
		u := nextVar()
		r.rdfs13 = mustRule("rdfs13",
			P(u, c(v.SubClassOf), c(v.Literal)),
			P(u, c(v.Type), c(v.Datatype)))
	}
	return r
}
