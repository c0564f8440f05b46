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

// Package bytes has helpers for the byte slice keys used by the ordered
// indexes.
package bytes

import "bytes"

// Copy will return a new byte slice with a copy of 'src's contents
func Copy(src []byte) []byte {
	if src == nil {
		return nil
	}
	r := make([]byte, len(src))
	copy(r, src)
	return r
}

// Successor returns the smallest key that sorts strictly after 'key', which is
// 'key' with a zero byte appended. The result never aliases 'key'.
func Successor(key []byte) []byte {
	r := make([]byte, len(key)+1)
	copy(r, key)
	return r
}

// PrefixEnd returns the smallest key that is larger than every key starting
// with 'prefix'. It returns nil if there is no such key, which is the case when
// the prefix is empty or consists entirely of 0xFF bytes; callers treat nil as
// an unbounded upper end.
func PrefixEnd(prefix []byte) []byte {
	end := Copy(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// Max returns the larger of the two keys. A nil key sorts first.
func Max(a, b []byte) []byte {
	if bytes.Compare(a, b) >= 0 {
		return a
	}
	return b
}
