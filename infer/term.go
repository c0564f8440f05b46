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
	"fmt"
	"math"
)

// Term is one position of a Pattern. A positive Term is a term identifier,
// a negative Term is a variable, and zero is not a valid Term.
type Term int64

// Const returns the Term for a term identifier. It panics if the identifier
// doesn't fit.
func Const(id uint64) Term {
	if id > math.MaxInt64 {
		panic(fmt.Sprintf("infer: term identifier %d is too large", id))
	}
	return Term(id)
}

// IsVar returns true if the Term is a variable.
func (t Term) IsVar() bool {
	return t < 0
}

// ID returns the term identifier of a constant Term.
func (t Term) ID() uint64 {
	return uint64(t)
}

func (t Term) String() string {
	if t.IsVar() {
		return fmt.Sprintf("?v%d", -t)
	}
	return fmt.Sprintf("#%d", t)
}

// Pattern is a (subject, predicate, object) triple of Terms.
type Pattern struct {
	S, P, O Term
}

// P returns a new Pattern.
func P(s, p, o Term) Pattern {
	return Pattern{S: s, P: p, O: o}
}

func (p Pattern) terms() [3]Term {
	return [3]Term{p.S, p.P, p.O}
}

// hasVar returns true if any position of the pattern is a variable.
func (p Pattern) hasVar() bool {
	return p.S.IsVar() || p.P.IsVar() || p.O.IsVar()
}

func (p Pattern) String() string {
	return fmt.Sprintf("(%v %v %v)", p.S, p.P, p.O)
}
