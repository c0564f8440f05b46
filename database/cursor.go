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

package database

import (
	"bytes"
	"errors"
	"fmt"

	pbytes "github.com/ebay/tristore/util/bytes"
)

// Tuple is a key and its value, as returned by a Cursor.
type Tuple struct {
	Key   []byte
	Value []byte
}

func (t *Tuple) String() string {
	if t == nil {
		return "<nil>"
	}
	return fmt.Sprintf("{%x: %x}", t.Key, t.Value)
}

type position uint8

const (
	undefined position = iota
	onTuple
	onGap
)

// Cursor walks the keys of a Reader within the range [from, to) in either
// direction. A nil 'from' or 'to' leaves that end of the range unbounded.
//
// A Cursor has a position that's either undefined (it's new, or the range
// was found to be empty), on a tuple, or on a gap: a key within the range that
// Seek looked for but didn't find. Next and Prior move relative to the
// position's key, so after landing on a gap Next returns the smallest tuple
// after it and Prior the largest tuple before it. With no position defined,
// Next starts from the first tuple and Prior from the last.
//
// The Cursor reads through to the Reader on every call, so it observes
// writes made while it's in use. A Cursor is not thread-safe.
type Cursor struct {
	r     Reader
	from  []byte
	to    []byte
	pos   position
	key   []byte
	tuple *Tuple
}

// NewCursor returns a Cursor over the keys of 'r' in [from, to), with no
// position defined.
func NewCursor(r Reader, from, to []byte) *Cursor {
	return &Cursor{
		r:    r,
		from: pbytes.Copy(from),
		to:   pbytes.Copy(to),
	}
}

// First moves to the smallest tuple in the range and returns it. If the range
// is empty, it returns nil and leaves the position undefined.
func (c *Cursor) First() (*Tuple, error) {
	return c.land(c.r.ReadFirst(c.from, c.to))
}

// Last moves to the largest tuple in the range and returns it. If the range is
// empty, it returns nil and leaves the position undefined.
func (c *Cursor) Last() (*Tuple, error) {
	return c.land(c.r.ReadLast(c.from, c.to))
}

// HasNext returns true if Next would return a tuple. It doesn't move the cursor.
func (c *Cursor) HasNext() (bool, error) {
	return found(c.readNext())
}

// HasPrior returns true if Prior would return a tuple. It doesn't move the cursor.
func (c *Cursor) HasPrior() (bool, error) {
	return found(c.readPrior())
}

// Next moves to the smallest tuple after the current position and returns it.
// If there's no such tuple it returns ErrExhausted and doesn't move; calling
// Next again will return ErrExhausted again.
func (c *Cursor) Next() (*Tuple, error) {
	return c.step(c.readNext())
}

// Prior moves to the largest tuple before the current position and returns
// it. If there's no such tuple it returns ErrExhausted and doesn't move.
func (c *Cursor) Prior() (*Tuple, error) {
	return c.step(c.readPrior())
}

// Seek moves to 'key', which must be within the cursor's range or
// ErrOutOfRange is returned. If 'key' exists, its tuple is returned.
// Otherwise Seek returns nil and the position is a gap at 'key', unless the
// range holds no tuples at all, in which case the position is left undefined.
func (c *Cursor) Seek(key []byte) (*Tuple, error) {
	if !c.inRange(key) {
		return nil, fmt.Errorf("%w: %x not in [%x, %x)", ErrOutOfRange, key, c.from, c.to)
	}
	val, err := c.r.Read(key)
	if err == nil {
		c.setTuple(pbytes.Copy(key), val)
		return c.tuple, nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return nil, err
	}
	_, _, err = c.r.ReadFirst(c.from, c.to)
	switch {
	case errors.Is(err, ErrKeyNotFound):
		c.reset()
		return nil, nil
	case err != nil:
		return nil, err
	}
	c.pos = onGap
	c.key = pbytes.Copy(key)
	c.tuple = nil
	return nil, nil
}

// Tuple returns the tuple at the current position, or nil if the cursor isn't
// on a tuple. It doesn't move the cursor.
func (c *Cursor) Tuple() *Tuple {
	if c.pos != onTuple {
		return nil
	}
	return c.tuple
}

// CurrentKey returns the key of the current position, which may be a gap. It
// returns nil if the position is undefined.
func (c *Cursor) CurrentKey() []byte {
	if c.pos == undefined {
		return nil
	}
	return c.key
}

// IsPositionDefined returns true once the cursor has been positioned on a
// tuple or a gap.
func (c *Cursor) IsPositionDefined() bool {
	return c.pos != undefined
}

func (c *Cursor) inRange(key []byte) bool {
	if c.from != nil && bytes.Compare(key, c.from) < 0 {
		return false
	}
	if c.to != nil && bytes.Compare(key, c.to) >= 0 {
		return false
	}
	return true
}

func (c *Cursor) readNext() ([]byte, []byte, error) {
	if c.pos == undefined {
		return c.r.ReadFirst(c.from, c.to)
	}
	return c.r.ReadFirst(pbytes.Max(pbytes.Successor(c.key), c.from), c.to)
}

func (c *Cursor) readPrior() ([]byte, []byte, error) {
	if c.pos == undefined {
		return c.r.ReadLast(c.from, c.to)
	}
	return c.r.ReadLast(c.from, c.key)
}

func (c *Cursor) land(key, val []byte, err error) (*Tuple, error) {
	switch {
	case errors.Is(err, ErrKeyNotFound):
		c.reset()
		return nil, nil
	case err != nil:
		return nil, err
	}
	c.setTuple(key, val)
	return c.tuple, nil
}

func (c *Cursor) step(key, val []byte, err error) (*Tuple, error) {
	switch {
	case errors.Is(err, ErrKeyNotFound):
		return nil, ErrExhausted
	case err != nil:
		return nil, err
	}
	c.setTuple(key, val)
	return c.tuple, nil
}

func (c *Cursor) setTuple(key, val []byte) {
	c.pos = onTuple
	c.key = key
	c.tuple = &Tuple{Key: key, Value: val}
}

func (c *Cursor) reset() {
	c.pos = undefined
	c.key = nil
	c.tuple = nil
}

func found(_, _ []byte, err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrKeyNotFound):
		return false, nil
	}
	return false, err
}
