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
	"encoding/binary"
	"fmt"

	pbytes "github.com/ebay/tristore/util/bytes"
)

// KeySize is the size in bytes of every encoded fact key.
const KeySize = 24

// KeyOrder identifies one rotation of a fact's positions, and therefore one
// of the three indexes of a store.
type KeyOrder uint8

const (
	// SPO keys are [subject_8][predicate_8][object_8].
	SPO KeyOrder = iota
	// POS keys are [predicate_8][object_8][subject_8].
	POS
	// OSP keys are [object_8][subject_8][predicate_8].
	OSP
)

// KeyOrders lists every KeyOrder, in the order a store keeps its indexes.
var KeyOrders = [3]KeyOrder{SPO, POS, OSP}

func (k KeyOrder) String() string {
	switch k {
	case SPO:
		return "SPO"
	case POS:
		return "POS"
	case OSP:
		return "OSP"
	}
	return fmt.Sprintf("KeyOrder(%d)", uint8(k))
}

// Rotate returns the fact's identifiers in this key order.
func (k KeyOrder) Rotate(s, p, o uint64) (a, b, c uint64) {
	switch k {
	case SPO:
		return s, p, o
	case POS:
		return p, o, s
	case OSP:
		return o, s, p
	}
	panic(fmt.Sprintf("Unexpected KeyOrder %d", k))
}

// Unrotate is the inverse of Rotate.
func (k KeyOrder) Unrotate(a, b, c uint64) (s, p, o uint64) {
	switch k {
	case SPO:
		return a, b, c
	case POS:
		return c, a, b
	case OSP:
		return b, c, a
	}
	panic(fmt.Sprintf("Unexpected KeyOrder %d", k))
}

// Key returns the fact encoded as a key in this key order.
func (k KeyOrder) Key(f Fact) []byte {
	return StatementKey(k.Rotate(f.S, f.P, f.O))
}

// Decode parses a key encoded in this key order back into a fact. The
// returned fact has no provenance; that's held in the index's value.
func (k KeyOrder) Decode(key []byte) (Fact, error) {
	if len(key) != KeySize {
		return Fact{}, fmt.Errorf("spo: %v key has %d bytes, expected %d", k, len(key), KeySize)
	}
	s, p, o := k.Unrotate(
		binary.BigEndian.Uint64(key[0:8]),
		binary.BigEndian.Uint64(key[8:16]),
		binary.BigEndian.Uint64(key[16:24]))
	return Fact{S: s, P: p, O: o}, nil
}

// StatementKey encodes three identifiers, already in key order, as a fixed
// width big-endian key. Null components encode as zero, so
// [StatementKey(p,Null,Null), StatementKey(p+1,Null,Null)) covers exactly the
// keys whose first component is p.
func StatementKey(a, b, c uint64) []byte {
	key := make([]byte, KeySize)
	binary.BigEndian.PutUint64(key[0:8], a)
	binary.BigEndian.PutUint64(key[8:16], b)
	binary.BigEndian.PutUint64(key[16:24], c)
	return key
}

// Prefix returns the key prefix for the leading bound components in key
// order, along with the key range [from, to) that holds every key with that
// prefix. 'bound' is how many leading components are used, 0 to 3. A nil
// 'to' means unbounded.
func Prefix(bound int, a, b, c uint64) (from, to []byte) {
	if bound <= 0 {
		return nil, nil
	}
	if bound > 3 {
		bound = 3
	}
	full := StatementKey(a, b, c)
	prefix := full[:bound*8]
	if bound == 3 {
		return prefix, pbytes.Successor(prefix)
	}
	return prefix, pbytes.PrefixEnd(prefix)
}

// BestOrder picks the key order whose leading components cover the most of
// the bound (non-Null) positions in the lookup (s, p, o), and returns it with
// the number of leading components that are bound.
func BestOrder(s, p, o uint64) (KeyOrder, int) {
	best, bestBound := SPO, -1
	for _, order := range KeyOrders {
		a, b, c := order.Rotate(s, p, o)
		n := 0
		for _, v := range [3]uint64{a, b, c} {
			if v == Null {
				break
			}
			n++
		}
		if n > bestBound {
			best, bestBound = order, n
		}
	}
	return best, bestBound
}
