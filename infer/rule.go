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
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBadArity is returned for a rule without 1 to 3 body patterns.
	ErrBadArity = errors.New("infer: rules must have 1 to 3 body patterns")
	// ErrNoVariables is returned for a rule whose body has no variables.
	ErrNoVariables = errors.New("infer: rule body has no variables")
	// ErrUnboundHeadVar is returned for a rule with a variable in its head
	// that doesn't appear in its body.
	ErrUnboundHeadVar = errors.New("infer: rule head has a variable not bound by its body")
	// ErrNullTerm is returned for a rule with a zero Term.
	ErrNullTerm = errors.New("infer: rule has a null term")
	// ErrNilRule is returned when a rule set contains a nil rule.
	ErrNilRule = errors.New("infer: nil rule")
	// ErrNoRules is returned when there are no rules to apply.
	ErrNoRules = errors.New("infer: no rules")
)

// Rule derives its head from each solution to its body. The variants are
// *Rule1, *Rule2 and *Rule3, with 1, 2 and 3 body patterns (antecedents).
// Rules are immutable.
type Rule interface {
	// Name identifies the rule in statistics and logs.
	Name() string
	// Head is the pattern of the facts the rule derives.
	Head() Pattern
	// Body returns the rule's antecedents, in join order.
	Body() []Pattern
	isRule()
}

type ruleHead struct {
	name string
	head Pattern
}

func (r *ruleHead) Name() string  { return r.name }
func (r *ruleHead) Head() Pattern { return r.head }

// Rule1 has a single antecedent.
type Rule1 struct {
	ruleHead
	A Pattern
}

// Rule2 joins two antecedents.
type Rule2 struct {
	ruleHead
	A, B Pattern
}

// Rule3 joins three antecedents.
type Rule3 struct {
	ruleHead
	A, B, C Pattern
}

// Body implements Rule.
func (r *Rule1) Body() []Pattern { return []Pattern{r.A} }

// Body implements Rule.
func (r *Rule2) Body() []Pattern { return []Pattern{r.A, r.B} }

// Body implements Rule.
func (r *Rule3) Body() []Pattern { return []Pattern{r.A, r.B, r.C} }

func (*Rule1) isRule() {}
func (*Rule2) isRule() {}
func (*Rule3) isRule() {}

func (r *Rule1) String() string { return ruleString(r) }
func (r *Rule2) String() string { return ruleString(r) }
func (r *Rule3) String() string { return ruleString(r) }

func ruleString(r Rule) string {
	body := r.Body()
	parts := make([]string, len(body))
	for i, p := range body {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s: %s -> %v", r.Name(), strings.Join(parts, ", "), r.Head())
}

// NewRule validates and returns a rule deriving 'head' from 'body'. The body
// is joined in the order given, so more selective patterns should come
// first.
func NewRule(name string, head Pattern, body ...Pattern) (Rule, error) {
	if len(body) < 1 || len(body) > 3 {
		return nil, fmt.Errorf("rule %s has %d body patterns: %w", name, len(body), ErrBadArity)
	}
	bound := make(map[Term]bool)
	hasVar := false
	for _, p := range body {
		for _, t := range p.terms() {
			if t == 0 {
				return nil, fmt.Errorf("rule %s body %v: %w", name, p, ErrNullTerm)
			}
			if t.IsVar() {
				bound[t] = true
				hasVar = true
			}
		}
	}
	if !hasVar {
		return nil, fmt.Errorf("rule %s: %w", name, ErrNoVariables)
	}
	for _, t := range head.terms() {
		if t == 0 {
			return nil, fmt.Errorf("rule %s head %v: %w", name, head, ErrNullTerm)
		}
		if t.IsVar() && !bound[t] {
			return nil, fmt.Errorf("rule %s head variable %v: %w", name, t, ErrUnboundHeadVar)
		}
	}
	h := ruleHead{name: name, head: head}
	switch len(body) {
	case 1:
		return &Rule1{ruleHead: h, A: body[0]}, nil
	case 2:
		return &Rule2{ruleHead: h, A: body[0], B: body[1]}, nil
	default:
		return &Rule3{ruleHead: h, A: body[0], B: body[1], C: body[2]}, nil
	}
}

// mustRule is NewRule for rules built from known good patterns.
func mustRule(name string, head Pattern, body ...Pattern) Rule {
	r, err := NewRule(name, head, body...)
	if err != nil {
		panic(err)
	}
	return r
}

// isNil returns true for a nil Rule, including a nil pointer to a variant.
func isNil(r Rule) bool {
	switch r := r.(type) {
	case nil:
		return true
	case *Rule1:
		return r == nil
	case *Rule2:
		return r == nil
	case *Rule3:
		return r == nil
	}
	return false
}
