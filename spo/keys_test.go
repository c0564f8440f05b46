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

package spo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_KeyOrder_KeyDecode(t *testing.T) {
	f := Fact{S: 1, P: 0x0203, O: 0xFFFFFFFFFFFFFFFF}
	for _, order := range KeyOrders {
		t.Run(order.String(), func(t *testing.T) {
			key := order.Key(f)
			assert.Len(t, key, KeySize)
			decoded, err := order.Decode(key)
			require.NoError(t, err)
			assert.Equal(t, f.Statement(), decoded)
		})
	}
}

func Test_KeyOrder_Layout(t *testing.T) {
	assert := assert.New(t)
	f := Fact{S: 1, P: 2, O: 3}
	assert.Equal([]byte{
		0, 0, 0, 0, 0, 0, 0, 1,
		0, 0, 0, 0, 0, 0, 0, 2,
		0, 0, 0, 0, 0, 0, 0, 3,
	}, SPO.Key(f))
	assert.Equal(StatementKey(2, 3, 1), POS.Key(f))
	assert.Equal(StatementKey(3, 1, 2), OSP.Key(f))
	assert.Equal("KeyOrder(9)", KeyOrder(9).String())
}

func Test_KeyOrder_DecodeBadLength(t *testing.T) {
	_, err := POS.Decode([]byte{1, 2, 3})
	assert.EqualError(t, err, "spo: POS key has 3 bytes, expected 24")
}

func Test_KeyOrderingMatchesNumericOrdering(t *testing.T) {
	// big-endian keys must sort the same way their components do.
	ids := []uint64{1, 0xFF, 0x100, 0xFFFF0000, 1 << 63}
	for i := 1; i < len(ids); i++ {
		a := StatementKey(ids[i-1], 5, 5)
		b := StatementKey(ids[i], 1, 1)
		assert.True(t, bytes.Compare(a, b) < 0, "%x should sort before %x", a, b)
	}
}

func Test_Prefix(t *testing.T) {
	assert := assert.New(t)
	from, to := Prefix(0, 1, 2, 3)
	assert.Nil(from)
	assert.Nil(to)

	from, to = Prefix(1, 7, 2, 3)
	assert.Equal(StatementKey(7, 0, 0)[:8], from)
	assert.Equal(StatementKey(8, 0, 0)[:8], to)
	assert.True(bytes.Compare(StatementKey(7, 9, 9), to) < 0)
	assert.True(bytes.Compare(StatementKey(8, 0, 0), to) >= 0)

	from, to = Prefix(3, 7, 2, 3)
	assert.Equal(StatementKey(7, 2, 3), from)
	assert.True(bytes.Compare(StatementKey(7, 2, 3), to) < 0)
	assert.True(bytes.Compare(StatementKey(7, 2, 4), to) >= 0)

	_, to = Prefix(1, 0xFFFFFFFFFFFFFFFF, 0, 0)
	assert.Nil(to, "an all 0xFF prefix has no upper bound")
}

func Test_BestOrder(t *testing.T) {
	tests := []struct {
		s, p, o uint64
		order   KeyOrder
		bound   int
	}{
		{0, 0, 0, SPO, 0},
		{1, 0, 0, SPO, 1},
		{0, 1, 0, POS, 1},
		{0, 0, 1, OSP, 1},
		{1, 1, 0, SPO, 2},
		{0, 1, 1, POS, 2},
		{1, 0, 1, OSP, 2},
		{1, 1, 1, SPO, 3},
	}
	for _, test := range tests {
		order, bound := BestOrder(test.s, test.p, test.o)
		assert.Equal(t, test.order, order, "lookup %d %d %d", test.s, test.p, test.o)
		assert.Equal(t, test.bound, bound, "lookup %d %d %d", test.s, test.p, test.o)
	}
}

func Test_Fact(t *testing.T) {
	assert := assert.New(t)
	f := New(1, 2, 3)
	assert.Equal(Explicit, f.Type)
	inferred := Fact{S: 1, P: 2, O: 3, Type: Inferred}
	assert.True(f.SameStatement(inferred))
	assert.NotEqual(f, inferred)
	assert.Equal(f.Statement(), inferred.Statement())
	assert.Equal("{1 2 3 Inferred}", inferred.String())
	assert.Equal("Provenance(0)", Provenance(0).String())
}

func Test_FactHasNull(t *testing.T) {
	assert := assert.New(t)
	assert.False(New(1, 2, 3).HasNull())
	assert.True(New(Null, 2, 3).HasNull())
	assert.True(New(1, Null, 3).HasNull())
	assert.True(New(1, 2, Null).HasNull())
}
