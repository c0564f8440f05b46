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

// Package database defines an abstract ordered Key/Value store that is used
// as the backing store for each index of a fact store, along with the Cursor
// used to walk a key range in either direction. Implementations should
// register themselves with the Register method.
package database

import (
	"errors"
)

// ErrKeyNotFound is returned when a Read is attempted for a key that doesn't exist.
var ErrKeyNotFound = errors.New("key not found")

// ErrHalt may be returned by an Enumerate callback to stop enumeration but not
// return an error.
var ErrHalt = errors.New("database: no need to continue enumerating")

// ErrExhausted is returned by Cursor.Next and Cursor.Prior when there are no
// more tuples in that direction.
var ErrExhausted = errors.New("database: cursor exhausted")

// ErrOutOfRange is returned by Cursor.Seek for a key outside of the cursor's
// key range.
var ErrOutOfRange = errors.New("database: key outside of cursor range")

// Reader is the read side of an ordered key-value store. It's what a Cursor
// needs. Slices returned by a Reader belong to the caller.
type Reader interface {
	// Read returns the stored value for the given key, or ErrKeyNotFound or unrecoverable errors.
	Read(key []byte) ([]byte, error)

	// ReadFirst finds the smallest key k where low <= k < high. A nil low or
	// high is unbounded. Returns k and its value, or ErrKeyNotFound or
	// unrecoverable errors.
	ReadFirst(low, high []byte) (key []byte, value []byte, err error)

	// ReadLast finds the largest key k where low <= k < high. A nil low or
	// high is unbounded. Returns k and its value, or ErrKeyNotFound or
	// unrecoverable errors.
	ReadLast(low, high []byte) (key []byte, value []byte, err error)
}

// DB represents a local ordered key-value store. It is thread-safe, except
// where otherwise noted. Keys are ordered by bytes.Compare.
type DB interface {
	Reader
	Close() error
	// Write sets the value for a key.
	Write(key []byte, value []byte) error
	// Writes sets the values for a set of keys.
	Writes(writes []KV) error
	// BulkWrite returns an object used for writing large numbers of keys non-atomically.
	BulkWrite() BulkWriter
	// Count returns the number of keys held.
	Count() (int64, error)
	// Enumerate calls emit with every key-value pair in order for all keys
	// from startKey (inclusive) up to endKey (exclusive). startKey and endKey
	// may be nil to indicate the beginning and end of the keyspace.
	// The emit function should normally return nil to continue enumerating, or it
	// can return any error to stop immediately. Except for ErrHalt, such errors will
	// be returned from Enumerate. If emit returns ErrHalt, Enumerate will stop
	// immediately and return nil. The slices passed to emit may be reused
	// after it returns.
	Enumerate(startKey, endKey []byte, emit func(key []byte, value []byte) error) error
}

// KV contains a single Key & Value
type KV struct {
	Key   []byte
	Value []byte
}

// BulkWriter is used for writing large numbers of keys non-atomically. It's
// not thread-safe.
type BulkWriter interface {
	// Buffer will cause key to be set to value sometime before Close returns.
	Buffer(key []byte, value []byte) error
	// Close must be called to finish writing and clean up resources. It may be
	// called multiple times.
	Close() error
}

// Contains returns true if 'key' is present in 'r'.
func Contains(r Reader, key []byte) (bool, error) {
	_, err := r.Read(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrKeyNotFound):
		return false, nil
	}
	return false, err
}
