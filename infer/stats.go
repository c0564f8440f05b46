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
	"bufio"
	"io"
	"time"

	"github.com/ebay/tristore/util/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var fmtr = message.NewPrinter(language.English)

// RuleStats describe one or more applications of a rule.
type RuleStats struct {
	Rule string
	// Examined counts the facts read for each antecedent.
	Examined [3]int
	// Derived counts the facts the rule produced, including ones that were
	// already known.
	Derived    int
	Subqueries int
	Elapsed    time.Duration
}

// TotalExamined returns the number of facts read for all antecedents.
func (rs RuleStats) TotalExamined() int {
	return rs.Examined[0] + rs.Examined[1] + rs.Examined[2]
}

// ExaminedPerSecond returns the rate at which the rule read facts.
func (rs RuleStats) ExaminedPerSecond() int64 {
	if rs.Elapsed <= 0 {
		return 0
	}
	return int64(float64(rs.TotalExamined()) / rs.Elapsed.Seconds())
}

func (rs *RuleStats) add(other RuleStats) {
	for i := range rs.Examined {
		rs.Examined[i] += other.Examined[i]
	}
	rs.Derived += other.Derived
	rs.Subqueries += other.Subqueries
	rs.Elapsed += other.Elapsed
}

// Stats describe a closure computation.
type Stats struct {
	// Rules has the accumulated statistics of each rule, in the order they
	// were first applied.
	Rules []RuleStats
	// Rounds counts rounds of rule application, including the final round
	// that found nothing new.
	Rounds int
	// Derived is the sum of the rules' Derived counts.
	Derived int
	// Axioms counts axiomatic facts that were new to the store.
	Axioms int
	// Inserted counts facts merged into the store.
	Inserted int64
	// Statements is the number of facts in the store at the end.
	Statements int64
	Elapsed    time.Duration
}

// Add accumulates a rule's statistics into 's'.
func (s *Stats) Add(rs RuleStats) {
	s.Derived += rs.Derived
	for i := range s.Rules {
		if s.Rules[i].Rule == rs.Rule {
			s.Rules[i].add(rs)
			return
		}
	}
	s.Rules = append(s.Rules, rs)
}

// merge accumulates the statistics of a nested closure into 's'. Elapsed
// and Statements are left alone, they're the caller's to set.
func (s *Stats) merge(other *Stats) {
	for _, rs := range other.Rules {
		s.Add(rs)
	}
	s.Rounds += other.Rounds
	s.Axioms += other.Axioms
	s.Inserted += other.Inserted
}

// PrettyPrint writes a table of the per rule statistics followed by the
// totals to 'w'.
func (s *Stats) PrettyPrint(w io.Writer) error {
	bw := bufio.NewWriter(w)
	count := func(c int64) string {
		return fmtr.Sprintf("%d", c)
	}
	t := [][]string{{"Rule", "Examined", "Subqueries", "Entailments", "ms", "Examined/s"}}
	for _, rs := range s.Rules {
		t = append(t, []string{
			rs.Rule,
			count(int64(rs.TotalExamined())),
			count(int64(rs.Subqueries)),
			count(int64(rs.Derived)),
			count(rs.Elapsed.Milliseconds()),
			count(rs.ExaminedPerSecond()),
		})
	}
	table.PrettyPrint(bw, t, table.HeaderRow|table.SkipEmpty|table.RightJustify)
	bw.WriteRune('\n')
	t = [][]string{
		{"Rounds", count(int64(s.Rounds))},
		{"Axioms", count(int64(s.Axioms))},
		{"Entailments", count(int64(s.Derived))},
		{"Inserted", count(s.Inserted)},
		{"Statements", count(s.Statements)},
		{"Elapsed", s.Elapsed.String()},
	}
	table.PrettyPrint(bw, t, table.RightJustify)
	return bw.Flush()
}
