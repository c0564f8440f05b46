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

// Package terms maps between term strings, such as URIs, and the 64 bit
// identifiers facts are made of.
package terms

import (
	"sync"

	"github.com/ebay/tristore/spo"
)

// Dictionary assigns identifiers to terms.
type Dictionary interface {
	// AddTerm returns the identifier for 'term', assigning a new one if
	// needed. It's idempotent and never returns spo.Null.
	AddTerm(term string) uint64
	// TermOf returns the term with the given identifier.
	TermOf(id uint64) (string, bool)
}

// Memory is an in-memory Dictionary. It is thread-safe.
type Memory struct {
	lock sync.RWMutex
	// protected by lock
	ids   map[string]uint64
	terms []string
}

// NewMemory returns an empty Memory dictionary. The first term added is
// assigned identifier 1.
func NewMemory() *Memory {
	return &Memory{
		ids: make(map[string]uint64),
		// terms[0] stands in for spo.Null
		terms: []string{""},
	}
}

// AddTerm implements Dictionary.
func (m *Memory) AddTerm(term string) uint64 {
	m.lock.RLock()
	id, ok := m.ids[term]
	m.lock.RUnlock()
	if ok {
		return id
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	if id, ok := m.ids[term]; ok {
		return id
	}
	id = uint64(len(m.terms))
	m.terms = append(m.terms, term)
	m.ids[term] = id
	return id
}

// TermOf implements Dictionary.
func (m *Memory) TermOf(id uint64) (string, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if id == spo.Null || id >= uint64(len(m.terms)) {
		return "", false
	}
	return m.terms[id], true
}

// Len returns the number of terms in the dictionary.
func (m *Memory) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.terms) - 1
}
