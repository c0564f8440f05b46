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
	"github.com/ebay/tristore/spo"
	"github.com/ebay/tristore/terms"
)

// Namespaces of the RDF and RDFS vocabularies.
const (
	RDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS = "http://www.w3.org/2000/01/rdf-schema#"
)

// Vocabulary holds the term identifiers of the RDF and RDFS terms the rules
// and axioms use.
type Vocabulary struct {
	Type, Property, Statement, Subject, Predicate, Object uint64

	Alt, Bag, Seq, List, First, Rest, Nil, Value, XMLLiteral uint64

	// Member1 is rdf:_1.
	Member1 uint64

	Resource, Class, Literal, Datatype, Container uint64

	ContainerMembershipProperty uint64

	Domain, Range, SubClassOf, SubPropertyOf, Member uint64

	Comment, Label, SeeAlso, IsDefinedBy uint64
}

// NewVocabulary looks up (or adds) the vocabulary's terms in 'dict'.
func NewVocabulary(dict terms.Dictionary) Vocabulary {
	rdf := func(name string) uint64 { return dict.AddTerm(RDF + name) }
	rdfs := func(name string) uint64 { return dict.AddTerm(RDFS + name) }
	return Vocabulary{
		Type:       rdf("type"),
		Property:   rdf("Property"),
		Statement:  rdf("Statement"),
		Subject:    rdf("subject"),
		Predicate:  rdf("predicate"),
		Object:     rdf("object"),
		Alt:        rdf("Alt"),
		Bag:        rdf("Bag"),
		Seq:        rdf("Seq"),
		List:       rdf("List"),
		First:      rdf("first"),
		Rest:       rdf("rest"),
		Nil:        rdf("nil"),
		Value:      rdf("value"),
		XMLLiteral: rdf("XMLLiteral"),
		Member1:    rdf("_1"),

		Resource:                    rdfs("Resource"),
		Class:                       rdfs("Class"),
		Literal:                     rdfs("Literal"),
		Datatype:                    rdfs("Datatype"),
		Container:                   rdfs("Container"),
		ContainerMembershipProperty: rdfs("ContainerMembershipProperty"),
		Domain:                      rdfs("domain"),
		Range:                       rdfs("range"),
		SubClassOf:                  rdfs("subClassOf"),
		SubPropertyOf:               rdfs("subPropertyOf"),
		Member:                      rdfs("member"),
		Comment:                     rdfs("comment"),
		Label:                       rdfs("label"),
		SeeAlso:                     rdfs("seeAlso"),
		IsDefinedBy:                 rdfs("isDefinedBy"),
	}
}

// Axioms returns the axiomatic triples of RDF and RDFS, with provenance
// Axiom. Container membership properties other than rdf:_1 are left out.
func (v Vocabulary) Axioms() []spo.Fact {
	a := func(s, p, o uint64) spo.Fact {
		return spo.Fact{S: s, P: p, O: o, Type: spo.Axiom}
	}
	return []spo.Fact{
		// RDF
		a(v.Type, v.Type, v.Property),
		a(v.Subject, v.Type, v.Property),
		a(v.Predicate, v.Type, v.Property),
		a(v.Object, v.Type, v.Property),
		a(v.First, v.Type, v.Property),
		a(v.Rest, v.Type, v.Property),
		a(v.Value, v.Type, v.Property),
		a(v.Member1, v.Type, v.Property),
		a(v.Nil, v.Type, v.List),

		// RDFS domains
		a(v.Type, v.Domain, v.Resource),
		a(v.Domain, v.Domain, v.Property),
		a(v.Range, v.Domain, v.Property),
		a(v.SubPropertyOf, v.Domain, v.Property),
		a(v.SubClassOf, v.Domain, v.Class),
		a(v.Subject, v.Domain, v.Statement),
		a(v.Predicate, v.Domain, v.Statement),
		a(v.Object, v.Domain, v.Statement),
		a(v.Member, v.Domain, v.Resource),
		a(v.First, v.Domain, v.List),
		a(v.Rest, v.Domain, v.List),
		a(v.SeeAlso, v.Domain, v.Resource),
		a(v.IsDefinedBy, v.Domain, v.Resource),
		a(v.Comment, v.Domain, v.Resource),
		a(v.Label, v.Domain, v.Resource),
		a(v.Value, v.Domain, v.Resource),

		// RDFS ranges
		a(v.Type, v.Range, v.Class),
		a(v.Domain, v.Range, v.Class),
		a(v.Range, v.Range, v.Class),
		a(v.SubPropertyOf, v.Range, v.Property),
		a(v.SubClassOf, v.Range, v.Class),
		a(v.Subject, v.Range, v.Resource),
		a(v.Predicate, v.Range, v.Resource),
		a(v.Object, v.Range, v.Resource),
		a(v.Member, v.Range, v.Resource),
		a(v.First, v.Range, v.Resource),
		a(v.Rest, v.Range, v.List),
		a(v.SeeAlso, v.Range, v.Resource),
		a(v.IsDefinedBy, v.Range, v.Resource),
		a(v.Comment, v.Range, v.Literal),
		a(v.Label, v.Range, v.Literal),
		a(v.Value, v.Range, v.Resource),

		// RDFS classes and properties
		a(v.Alt, v.SubClassOf, v.Container),
		a(v.Bag, v.SubClassOf, v.Container),
		a(v.Seq, v.SubClassOf, v.Container),
		a(v.ContainerMembershipProperty, v.SubClassOf, v.Property),
		a(v.IsDefinedBy, v.SubPropertyOf, v.SeeAlso),
		a(v.XMLLiteral, v.Type, v.Datatype),
		a(v.XMLLiteral, v.SubClassOf, v.Literal),
		a(v.Datatype, v.SubClassOf, v.Class),
		a(v.Member1, v.Type, v.ContainerMembershipProperty),
		a(v.Member1, v.Domain, v.Resource),
		a(v.Member1, v.Range, v.Resource),
	}
}
