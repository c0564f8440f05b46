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

// Package spo defines the Fact value type and its binary key encodings.
//
// A Fact is a (subject, predicate, object) triple of term identifiers. Term
// identifiers are opaque 64 bit values handed out by a term dictionary. Facts
// are stored in three ordered indexes, one per KeyOrder, so that a lookup
// bound on any combination of positions is a range scan over a key prefix.
package spo

import "fmt"

// Null is the reserved identifier used as a wildcard when building range keys
// and lookups. It's never stored as part of a fact.
const Null uint64 = 0

// Provenance classifies where a fact came from.
type Provenance uint8

const (
	// Explicit facts were asserted by the application.
	Explicit Provenance = iota + 1
	// Axiom facts are part of the vocabulary's axiomatic triples.
	Axiom
	// Inferred facts were derived by rule application.
	Inferred
)

func (p Provenance) String() string {
	switch p {
	case Explicit:
		return "Explicit"
	case Axiom:
		return "Axiom"
	case Inferred:
		return "Inferred"
	}
	return fmt.Sprintf("Provenance(%d)", uint8(p))
}

// Fact is an immutable (subject, predicate, object) triple along with its
// provenance. Two facts with the same S, P, O but different provenance are
// the same statement as far as the indexes are concerned.
type Fact struct {
	S, P, O uint64
	Type    Provenance
}

// New returns an Explicit fact.
func New(s, p, o uint64) Fact {
	return Fact{S: s, P: p, O: o, Type: Explicit}
}

// SameStatement returns true if 'f' and 'other' have the same subject,
// predicate and object, ignoring provenance.
func (f Fact) SameStatement(other Fact) bool {
	return f.S == other.S && f.P == other.P && f.O == other.O
}

// Statement returns 'f' with its provenance cleared, which is convenient as a
// map key.
func (f Fact) Statement() Fact {
	return Fact{S: f.S, P: f.P, O: f.O}
}

// HasNull returns true if any of the fact's identifiers is Null.
func (f Fact) HasNull() bool {
	return f.S == Null || f.P == Null || f.O == Null
}

func (f Fact) String() string {
	return fmt.Sprintf("{%d %d %d %v}", f.S, f.P, f.O, f.Type)
}
