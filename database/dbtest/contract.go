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

// Package dbtest has tests that every database.DB implementation must pass.
// Each backend's own tests call Run with a function that opens an empty DB.
package dbtest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/ebay/tristore/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Opener returns a new empty DB. The DB is closed by the caller.
type Opener func(t *testing.T) database.DB

// Run runs all the contract tests against DBs returned by 'open'.
func Run(t *testing.T, open Opener) {
	t.Run("ReadWrite", func(t *testing.T) { testReadWrite(t, open) })
	t.Run("BulkWrite", func(t *testing.T) { testBulkWrite(t, open) })
	t.Run("Enumerate", func(t *testing.T) { testEnumerate(t, open) })
	t.Run("ReadFirstLast", func(t *testing.T) { testReadFirstLast(t, open) })
	t.Run("CursorBaseCase", func(t *testing.T) { testCursorBaseCase(t, open) })
	t.Run("CursorBounded", func(t *testing.T) { testCursorBounded(t, open) })
	t.Run("CursorEmpty", func(t *testing.T) { testCursorEmpty(t, open) })
	t.Run("CursorOneTuple", func(t *testing.T) { testCursorOneTuple(t, open) })
}

// Key returns 'i' encoded as a 4 byte big-endian key.
func Key(i uint32) []byte {
	k := make([]byte, 4)
	binary.BigEndian.PutUint32(k, i)
	return k
}

func tuple(k uint32, v string) *database.Tuple {
	return &database.Tuple{Key: Key(k), Value: []byte(v)}
}

func openWith(t *testing.T, open Opener, kvs map[uint32]string) database.DB {
	db := open(t)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })
	for k, v := range kvs {
		require.NoError(t, db.Write(Key(k), []byte(v)))
	}
	return db
}

func baseCase(t *testing.T, open Opener) database.DB {
	return openWith(t, open, map[uint32]string{10: "Bryan", 20: "Mike", 30: "James"})
}

func testReadWrite(t *testing.T, open Opener) {
	assert := assert.New(t)
	db := openWith(t, open, nil)
	_, err := db.Read(Key(1))
	assert.True(errors.Is(err, database.ErrKeyNotFound))
	ok, err := database.Contains(db, Key(1))
	assert.NoError(err)
	assert.False(ok)

	assert.NoError(db.Write(Key(1), []byte("one")))
	assert.NoError(db.Writes([]database.KV{
		{Key: Key(2), Value: []byte("two")},
		{Key: Key(3), Value: []byte("three")},
	}))
	v, err := db.Read(Key(2))
	assert.NoError(err)
	assert.Equal("two", string(v))
	ok, err = database.Contains(db, Key(3))
	assert.NoError(err)
	assert.True(ok)

	// overwrite doesn't add a key
	assert.NoError(db.Write(Key(1), []byte("uno")))
	v, err = db.Read(Key(1))
	assert.NoError(err)
	assert.Equal("uno", string(v))
	n, err := db.Count()
	assert.NoError(err)
	assert.Equal(int64(3), n)
}

func testBulkWrite(t *testing.T, open Opener) {
	assert := assert.New(t)
	db := openWith(t, open, nil)
	w := db.BulkWrite()
	const count = 2500
	for i := uint32(0); i < count; i++ {
		assert.NoError(w.Buffer(Key(i), []byte{byte(i)}))
	}
	assert.NoError(w.Close())
	assert.NoError(w.Close(), "Close may be called more than once")
	n, err := db.Count()
	assert.NoError(err)
	assert.Equal(int64(count), n)
	v, err := db.Read(Key(count - 1))
	assert.NoError(err)
	last := uint32(count - 1)
	assert.Equal([]byte{byte(last)}, v)
}

func testEnumerate(t *testing.T, open Opener) {
	db := openWith(t, open, map[uint32]string{1: "a", 2: "b", 3: "c", 4: "d"})
	collect := func(start, end []byte, stopAfter int) ([]string, error) {
		var got []string
		err := db.Enumerate(start, end, func(key, value []byte) error {
			got = append(got, fmt.Sprintf("%d=%s", binary.BigEndian.Uint32(key), value))
			if len(got) == stopAfter {
				return database.ErrHalt
			}
			return nil
		})
		return got, err
	}
	tests := []struct {
		name      string
		start     []byte
		end       []byte
		stopAfter int
		exp       []string
	}{
		{"all", nil, nil, -1, []string{"1=a", "2=b", "3=c", "4=d"}},
		{"from", Key(2), nil, -1, []string{"2=b", "3=c", "4=d"}},
		{"to", nil, Key(3), -1, []string{"1=a", "2=b"}},
		{"between", Key(2), Key(4), -1, []string{"2=b", "3=c"}},
		{"empty", Key(5), nil, -1, nil},
		{"halt", nil, nil, 2, []string{"1=a", "2=b"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := collect(test.start, test.end, test.stopAfter)
			assert.NoError(t, err)
			assert.Equal(t, test.exp, got)
		})
	}
	t.Run("error", func(t *testing.T) {
		boom := errors.New("boom")
		err := db.Enumerate(nil, nil, func(key, value []byte) error {
			return boom
		})
		assert.Equal(t, boom, err)
	})
}

func testReadFirstLast(t *testing.T, open Opener) {
	assert := assert.New(t)
	db := baseCase(t, open)
	k, v, err := db.ReadFirst(nil, nil)
	assert.NoError(err)
	assert.Equal(Key(10), k)
	assert.Equal("Bryan", string(v))
	k, _, err = db.ReadFirst(Key(11), nil)
	assert.NoError(err)
	assert.Equal(Key(20), k)
	_, _, err = db.ReadFirst(Key(11), Key(20))
	assert.True(errors.Is(err, database.ErrKeyNotFound))

	k, v, err = db.ReadLast(nil, nil)
	assert.NoError(err)
	assert.Equal(Key(30), k)
	assert.Equal("James", string(v))
	k, _, err = db.ReadLast(nil, Key(30))
	assert.NoError(err)
	assert.Equal(Key(20), k, "high is exclusive")
	_, _, err = db.ReadLast(Key(21), Key(30))
	assert.True(errors.Is(err, database.ErrKeyNotFound))
}

func testCursorBaseCase(t *testing.T, open Opener) {
	db := baseCase(t, open)
	bryan, mike, james := tuple(10, "Bryan"), tuple(20, "Mike"), tuple(30, "James")

	t.Run("first_last_tuple", func(t *testing.T) {
		assert := assert.New(t)
		c := database.NewCursor(db, nil, nil)
		assert.Nil(c.Tuple())
		assert.False(c.IsPositionDefined())
		assertTuple(t, bryan)(c.First())
		assert.Equal(bryan, c.Tuple())
		assertTuple(t, james)(database.NewCursor(db, nil, nil).Last())
	})
	t.Run("next", func(t *testing.T) {
		c := database.NewCursor(db, nil, nil)
		for _, exp := range []*database.Tuple{bryan, mike, james} {
			assertHas(t, true)(c.HasNext())
			assertTuple(t, exp)(c.Next())
		}
		assertHas(t, false)(c.HasNext())
		assert.True(t, c.IsPositionDefined())
		assertExhausted(t)(c.Next())
		assertHas(t, false)(c.HasNext())
		assertExhausted(t)(c.Next())
		assert.Equal(t, james, c.Tuple(), "exhaustion doesn't move")
	})
	t.Run("prior", func(t *testing.T) {
		c := database.NewCursor(db, nil, nil)
		for _, exp := range []*database.Tuple{james, mike, bryan} {
			assertHas(t, true)(c.HasPrior())
			assertTuple(t, exp)(c.Prior())
		}
		assertHas(t, false)(c.HasPrior())
		assert.True(t, c.IsPositionDefined())
		assertExhausted(t)(c.Prior())
		assertHas(t, false)(c.HasPrior())
		assertExhausted(t)(c.Prior())
	})
	t.Run("seek_found", func(t *testing.T) {
		c := database.NewCursor(db, nil, nil)
		assertTuple(t, james)(c.Seek(Key(30)))
		assertHas(t, false)(c.HasNext())
		assertHas(t, true)(c.HasPrior())
		assertTuple(t, mike)(c.Prior())

		assertTuple(t, bryan)(c.Seek(Key(10)))
		assertHas(t, false)(c.HasPrior())
		assertHas(t, true)(c.HasNext())
		assertTuple(t, mike)(c.Next())

		assertTuple(t, mike)(c.Seek(Key(20)))
		assertTuple(t, james)(c.Next())
		assertTuple(t, mike)(c.Seek(Key(20)))
		assertTuple(t, bryan)(c.Prior())
	})
	t.Run("seek_gap", func(t *testing.T) {
		assert := assert.New(t)
		c := database.NewCursor(db, nil, nil)
		assertTuple(t, nil)(c.Seek(Key(29)))
		assert.Nil(c.Tuple())
		assert.Equal(Key(29), c.CurrentKey())
		assertHas(t, true)(c.HasNext())
		assertTuple(t, james)(c.Next())
		assert.Equal(james, c.Tuple())
		assert.Equal(Key(30), c.CurrentKey())
		assertHas(t, false)(c.HasNext())
		assertTuple(t, mike)(c.Prior())
		assert.Equal(Key(20), c.CurrentKey())

		assertTuple(t, nil)(c.Seek(Key(9)))
		assert.Equal(Key(9), c.CurrentKey())
		assertHas(t, false)(c.HasPrior())
		assertTuple(t, bryan)(c.Next())
		assertTuple(t, mike)(c.Next())

		assertTuple(t, nil)(c.Seek(Key(19)))
		assertTuple(t, bryan)(c.Prior())
		assertHas(t, false)(c.HasPrior())

		assertTuple(t, nil)(c.Seek(Key(31)))
		assert.True(c.IsPositionDefined())
		assert.Equal(Key(31), c.CurrentKey())
		assertHas(t, false)(c.HasNext())
		assertExhausted(t)(c.Next())
		assertTuple(t, james)(c.Prior())
	})
}

func testCursorBounded(t *testing.T, open Opener) {
	db := baseCase(t, open)
	t.Run("first_tuple_only", func(t *testing.T) {
		c := database.NewCursor(db, Key(10), Key(20))
		bryan := tuple(10, "Bryan")
		assertHas(t, true)(c.HasNext())
		assertTuple(t, bryan)(c.Next())
		assertHas(t, false)(c.HasNext())
		assertTuple(t, bryan)(c.Last())
		assertHas(t, false)(c.HasNext())
		assertHas(t, false)(c.HasPrior())
		assertTuple(t, bryan)(c.Seek(Key(10)))
		_, err := c.Seek(Key(20))
		assert.True(t, errors.Is(err, database.ErrOutOfRange), "got %v", err)
		assert.Equal(t, bryan, c.Tuple(), "failed Seek doesn't move")
	})
	t.Run("second_tuple_only", func(t *testing.T) {
		c := database.NewCursor(db, Key(20), Key(30))
		mike := tuple(20, "Mike")
		assertTuple(t, mike)(c.Next())
		assertHas(t, false)(c.HasNext())
		assertHas(t, false)(c.HasPrior())
		assertTuple(t, mike)(c.Last())
		assertTuple(t, mike)(c.Seek(Key(20)))
		for _, k := range []uint32{10, 30} {
			_, err := c.Seek(Key(k))
			assert.True(t, errors.Is(err, database.ErrOutOfRange), "seek %d got %v", k, err)
		}
	})
	t.Run("no_tuples_in_range", func(t *testing.T) {
		assert := assert.New(t)
		c := database.NewCursor(db, Key(11), Key(19))
		assertTuple(t, nil)(c.First())
		assertTuple(t, nil)(c.Last())
		assertTuple(t, nil)(c.Seek(Key(15)))
		assert.False(c.IsPositionDefined())
		assert.Nil(c.CurrentKey())
		assertHas(t, false)(c.HasNext())
		assertHas(t, false)(c.HasPrior())
		assertExhausted(t)(c.Next())
	})
}

func testCursorEmpty(t *testing.T, open Opener) {
	db := openWith(t, open, nil)
	for _, bounds := range [][2][]byte{{nil, nil}, {Key(2), Key(7)}} {
		from, to := bounds[0], bounds[1]
		t.Run(fmt.Sprintf("%x_%x", from, to), func(t *testing.T) {
			assert := assert.New(t)
			c := database.NewCursor(db, from, to)
			assertTuple(t, nil)(c.First())
			assert.False(c.IsPositionDefined())
			assert.Nil(c.CurrentKey())
			assert.Nil(c.Tuple())
			assertHas(t, false)(c.HasNext())
			assertHas(t, false)(c.HasPrior())
			assertTuple(t, nil)(c.Last())
			assert.False(c.IsPositionDefined())

			c = database.NewCursor(db, from, to)
			assertExhausted(t)(c.Next())
			assertExhausted(t)(c.Prior())

			c = database.NewCursor(db, from, to)
			assertTuple(t, nil)(c.Seek(Key(4)))
			assert.False(c.IsPositionDefined())
			assertHas(t, false)(c.HasPrior())
			assertHas(t, false)(c.HasNext())
		})
	}
}

func testCursorOneTuple(t *testing.T, open Opener) {
	db := openWith(t, open, map[uint32]string{10: "Bryan"})
	bryan := tuple(10, "Bryan")
	t.Run("first_last", func(t *testing.T) {
		c := database.NewCursor(db, nil, nil)
		assertTuple(t, bryan)(c.First())
		assert.Equal(t, bryan, c.Tuple())
		assertHas(t, false)(c.HasNext())
		assertHas(t, false)(c.HasPrior())
		c = database.NewCursor(db, nil, nil)
		assertTuple(t, bryan)(c.Last())
		assertHas(t, false)(c.HasNext())
		assertHas(t, false)(c.HasPrior())
	})
	t.Run("next_prior", func(t *testing.T) {
		c := database.NewCursor(db, nil, nil)
		assertHas(t, true)(c.HasNext())
		assertTuple(t, bryan)(c.Next())
		assertHas(t, false)(c.HasNext())
		assertExhausted(t)(c.Next())
		c = database.NewCursor(db, nil, nil)
		assertHas(t, true)(c.HasPrior())
		assertTuple(t, bryan)(c.Prior())
		assertHas(t, false)(c.HasPrior())
		assertExhausted(t)(c.Prior())
	})
	t.Run("seek", func(t *testing.T) {
		c := database.NewCursor(db, nil, nil)
		assertTuple(t, bryan)(c.Seek(Key(10)))
		assertHas(t, false)(c.HasPrior())
		assertHas(t, false)(c.HasNext())

		assertTuple(t, nil)(c.Seek(Key(1)))
		assert.Equal(t, Key(1), c.CurrentKey())
		assertHas(t, false)(c.HasPrior())
		assertTuple(t, bryan)(c.Next())

		assertTuple(t, nil)(c.Seek(Key(11)))
		assertHas(t, true)(c.HasPrior())
		assertHas(t, false)(c.HasNext())
		assertTuple(t, bryan)(c.Prior())
	})
	t.Run("range_excludes_tuple", func(t *testing.T) {
		c := database.NewCursor(db, Key(11), nil)
		assertTuple(t, nil)(c.First())
		assertHas(t, false)(c.HasNext())
		assertHas(t, false)(c.HasPrior())
		c = database.NewCursor(db, nil, Key(10))
		assertTuple(t, nil)(c.Last())
		assertExhausted(t)(c.Prior())
	})
}

func assertTuple(t *testing.T, exp *database.Tuple) func(*database.Tuple, error) {
	t.Helper()
	return func(actual *database.Tuple, err error) {
		t.Helper()
		if assert.NoError(t, err) {
			assert.Equal(t, exp, actual)
		}
	}
}

func assertHas(t *testing.T, exp bool) func(bool, error) {
	t.Helper()
	return func(actual bool, err error) {
		t.Helper()
		if assert.NoError(t, err) {
			assert.Equal(t, exp, actual)
		}
	}
}

func assertExhausted(t *testing.T) func(*database.Tuple, error) {
	t.Helper()
	return func(actual *database.Tuple, err error) {
		t.Helper()
		assert.Nil(t, actual)
		assert.Equal(t, database.ErrExhausted, err)
	}
}
