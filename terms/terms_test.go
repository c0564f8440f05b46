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

package terms

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Memory(t *testing.T) {
	assert := assert.New(t)
	m := NewMemory()
	a := m.AddTerm("rdf:type")
	b := m.AddTerm("rdfs:Class")
	assert.Equal(uint64(1), a)
	assert.Equal(uint64(2), b)
	assert.Equal(a, m.AddTerm("rdf:type"))
	assert.Equal(2, m.Len())

	term, ok := m.TermOf(b)
	assert.True(ok)
	assert.Equal("rdfs:Class", term)
	_, ok = m.TermOf(0)
	assert.False(ok)
	_, ok = m.TermOf(3)
	assert.False(ok)
}

func Test_MemoryConcurrent(t *testing.T) {
	m := NewMemory()
	var wg sync.WaitGroup
	ids := make([][]uint64, 4)
	for g := range ids {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				ids[g] = append(ids[g], m.AddTerm(fmt.Sprintf("term-%d", i)))
			}
		}(g)
	}
	wg.Wait()
	for g := 1; g < len(ids); g++ {
		assert.Equal(t, ids[0], ids[g])
	}
	assert.Equal(t, 100, m.Len())
}
