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

package main

import (
	"fmt"

	"github.com/ebay/tristore/infer"
	"github.com/ebay/tristore/spo"
	"github.com/ebay/tristore/terms"
)

// shape describes the generated ontology.
type shape struct {
	// Levels of subclasses below the root class.
	depth int
	// Subclasses of each non-leaf class.
	width int
	// Instances of each leaf class.
	instances int
}

// generate returns a class tree of the given shape, instances of its leaf
// classes, and a chain of 'depth' sub-properties of ex:related linking each
// instance to the next. ex:related has the root class as its domain and
// range.
func generate(dict terms.Dictionary, v infer.Vocabulary, sh shape) []spo.Fact {
	var facts []spo.Fact
	root := dict.AddTerm("ex:Class")
	level := []uint64{root}
	names := []string{"ex:Class"}
	for d := 0; d < sh.depth; d++ {
		var next []uint64
		var nextNames []string
		for i, parent := range level {
			for w := 0; w < sh.width; w++ {
				name := fmt.Sprintf("%s/%d", names[i], w)
				child := dict.AddTerm(name)
				facts = append(facts, spo.New(child, v.SubClassOf, parent))
				next = append(next, child)
				nextNames = append(nextNames, name)
			}
		}
		level, names = next, nextNames
	}

	related := dict.AddTerm("ex:related")
	facts = append(facts,
		spo.New(related, v.Domain, root),
		spo.New(related, v.Range, root))
	prop := related
	for d := 0; d < sh.depth; d++ {
		sub := dict.AddTerm(fmt.Sprintf("ex:related/%d", d))
		facts = append(facts, spo.New(sub, v.SubPropertyOf, prop))
		prop = sub
	}

	var prev uint64
	for i, leaf := range level {
		for n := 0; n < sh.instances; n++ {
			inst := dict.AddTerm(fmt.Sprintf("ex:thing/%d/%d", i, n))
			facts = append(facts, spo.New(inst, v.Type, leaf))
			if prev != spo.Null {
				facts = append(facts, spo.New(prev, prop, inst))
			}
			prev = inst
		}
	}
	return facts
}
