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

// Package infer computes the deductive closure of the facts in a store by
// forward chaining: rules are applied to the store over and over, and the
// facts they derive are added to it, until a round derives nothing new.
//
// For example, given the facts
//
// [rex] -type-> [dog]
//
// [dog] -subClassOf-> [mammal]
//
// and the RDFS rule
//
// (?u subClassOf ?x), (?v type ?u) -> (?v type ?x)
//
// the closure also contains
//
// [rex] -type-> [mammal]
//
// Facts derived during a round are written to a temporary store and merged
// into the store being closed between rounds, so rules in the same round
// all see the same facts.
//
// ComputeClosure runs any set of rules to a fixed point. Engine binds the
// RDF and RDFS vocabulary to a store and offers two strategies for the RDFS
// rules: FullClosure, which is ComputeClosure over all of them, and
// FastClosure, which applies them in a fixed order tuned for typical
// ontologies.
package infer
