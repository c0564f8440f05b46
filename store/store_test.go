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

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ebay/tristore/database"
	"github.com/ebay/tristore/spo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTemp(t *testing.T) *Store {
	s, err := NewTemp()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })
	return s
}

func insert(t *testing.T, s *Store, facts ...spo.Fact) int {
	n, err := s.Insert(context.Background(), facts...)
	require.NoError(t, err)
	return n
}

func Test_NewTemp(t *testing.T) {
	a, b := newTemp(t), newTemp(t)
	assert.True(t, strings.HasPrefix(a.Name(), "tmp-"))
	assert.NotEqual(t, a.Name(), b.Name())
	assert.Equal(t, int64(0), a.Count())
}

func Test_NewUnknownBackend(t *testing.T) {
	_, err := New(Options{Backend: "floppy"})
	assert.EqualError(t, err, "unable to open SPO index of store facts: database implementation floppy not found")
}

func Test_InsertContains(t *testing.T) {
	assert := assert.New(t)
	s := newTemp(t)
	assert.Equal(2, insert(t, s, spo.New(1, 2, 3), spo.New(4, 5, 6), spo.New(1, 2, 3)))
	assert.Equal(int64(2), s.Count())
	assert.Equal(0, insert(t, s, spo.Fact{S: 1, P: 2, O: 3, Type: spo.Inferred}),
		"a statement is present regardless of provenance")
	assert.Equal(1, insert(t, s, spo.New(7, 8, 9)))
	assert.Equal(int64(3), s.Count())

	ok, err := s.Contains(spo.New(4, 5, 6))
	assert.NoError(err)
	assert.True(ok)
	ok, err = s.Contains(spo.New(6, 5, 4))
	assert.NoError(err)
	assert.False(ok)

	// a key in only some of the indexes isn't a fact.
	require.NoError(t, s.Index(spo.SPO).Write(spo.SPO.Key(spo.New(10, 11, 12)), []byte{1}))
	ok, err = s.Contains(spo.New(10, 11, 12))
	assert.NoError(err)
	assert.False(ok)
}

func Test_InsertCancelled(t *testing.T) {
	s := newTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Insert(ctx, spo.New(1, 2, 3))
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, int64(0), s.Count())
}

func Test_InsertNull(t *testing.T) {
	s := newTemp(t)
	for _, f := range []spo.Fact{spo.New(0, 2, 3), spo.New(1, 0, 3), spo.New(1, 2, 0)} {
		n, err := s.Insert(context.Background(), spo.New(7, 8, 9), f)
		assert.True(t, errors.Is(err, ErrNullFact), "got %v", err)
		assert.Equal(t, 0, n)
	}
	assert.Equal(t, int64(0), s.Count())
	assert.NoError(t, s.Verify(context.Background()))
}

func Test_Lookup(t *testing.T) {
	s := newTemp(t)
	insert(t, s,
		spo.New(1, 2, 3),
		spo.New(1, 2, 4),
		spo.New(1, 5, 3),
		spo.New(6, 2, 3),
		spo.Fact{S: 6, P: 6, O: 6, Type: spo.Inferred},
	)
	tests := []struct {
		s, p, o uint64
		exp     []string
	}{
		{0, 0, 0, []string{"1 2 3", "1 2 4", "1 5 3", "6 2 3", "6 6 6"}},
		{1, 0, 0, []string{"1 2 3", "1 2 4", "1 5 3"}},
		{0, 2, 0, []string{"1 2 3", "6 2 3", "1 2 4"}},
		{0, 0, 3, []string{"1 2 3", "1 5 3", "6 2 3"}},
		{1, 2, 0, []string{"1 2 3", "1 2 4"}},
		{0, 2, 3, []string{"1 2 3", "6 2 3"}},
		{1, 0, 3, []string{"1 2 3", "1 5 3"}},
		{1, 2, 3, []string{"1 2 3"}},
		{1, 2, 5, nil},
		{9, 0, 0, nil},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d_%d_%d", test.s, test.p, test.o), func(t *testing.T) {
			var got []string
			err := s.Lookup(context.Background(), test.s, test.p, test.o, func(f spo.Fact) error {
				got = append(got, fmt.Sprintf("%d %d %d", f.S, f.P, f.O))
				return nil
			})
			assert.NoError(t, err)
			assert.Equal(t, test.exp, got)
		})
	}
}

func Test_LookupProvenanceAndHalt(t *testing.T) {
	assert := assert.New(t)
	s := newTemp(t)
	insert(t, s, spo.Fact{S: 1, P: 2, O: 3, Type: spo.Axiom}, spo.New(1, 2, 4))
	var got []spo.Fact
	err := s.Lookup(context.Background(), 1, 0, 0, func(f spo.Fact) error {
		got = append(got, f)
		return database.ErrHalt
	})
	assert.NoError(err)
	assert.Equal([]spo.Fact{{S: 1, P: 2, O: 3, Type: spo.Axiom}}, got)

	boom := errors.New("boom")
	err = s.Lookup(context.Background(), 1, 0, 0, func(f spo.Fact) error {
		return boom
	})
	assert.Equal(boom, err)
}

func Test_LookupCancelled(t *testing.T) {
	s := newTemp(t)
	insert(t, s, spo.New(1, 2, 3))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Lookup(ctx, 0, 0, 0, func(f spo.Fact) error {
		t.Errorf("unexpected fact %v", f)
		return nil
	})
	assert.Equal(t, context.Canceled, err)
}

func Test_Facts(t *testing.T) {
	s := newTemp(t)
	insert(t, s, spo.New(3, 1, 1), spo.Fact{S: 1, P: 1, O: 1, Type: spo.Inferred})
	facts, err := s.Facts(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []spo.Fact{
		{S: 1, P: 1, O: 1, Type: spo.Inferred},
		{S: 3, P: 1, O: 1, Type: spo.Explicit},
	}, facts)
}

func Test_Verify(t *testing.T) {
	ctx := context.Background()
	s := newTemp(t)
	insert(t, s, spo.New(1, 2, 3), spo.New(3, 2, 1))
	assert.NoError(t, s.Verify(ctx))

	require.NoError(t, s.Index(spo.POS).Write(spo.POS.Key(spo.New(7, 7, 7)), []byte{1}))
	err := s.Verify(ctx)
	assert.True(t, errors.Is(err, ErrIndexMismatch), "got %v", err)

	// same counts, different facts.
	other := newTemp(t)
	insert(t, other, spo.New(1, 2, 3))
	require.NoError(t, other.Index(spo.OSP).Write(spo.OSP.Key(spo.New(1, 2, 4)), []byte{1}))
	require.NoError(t, other.Index(spo.SPO).Write(spo.SPO.Key(spo.New(1, 2, 5)), []byte{1}))
	require.NoError(t, other.Index(spo.POS).Write(spo.POS.Key(spo.New(1, 2, 5)), []byte{1}))
	err = other.Verify(ctx)
	assert.True(t, errors.Is(err, ErrIndexMismatch), "got %v", err)
}

func Test_VerifyCounter(t *testing.T) {
	s := newTemp(t)
	for _, order := range spo.KeyOrders {
		require.NoError(t, s.Index(order).Write(order.Key(spo.New(1, 2, 3)), []byte{1}))
	}
	err := s.Verify(context.Background())
	assert.True(t, errors.Is(err, ErrIndexMismatch))
	assert.Contains(t, err.Error(), "indexes have 1 facts but the store counted 0")
}

func Test_SqliteStoreReopens(t *testing.T) {
	assert := assert.New(t)
	opts := Options{Backend: "sqlite", Dir: t.TempDir(), Name: "kb"}
	s, err := New(opts)
	require.NoError(t, err)
	insert(t, s, spo.New(1, 2, 3), spo.New(2, 3, 4))
	require.NoError(t, s.Close())

	s, err = New(opts)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(int64(2), s.Count())
	assert.NoError(s.Verify(context.Background()))
	ok, err := s.Contains(spo.New(2, 3, 4))
	assert.NoError(err)
	assert.True(ok)
}
