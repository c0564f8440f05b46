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

// Package table formats rows of strings into a text table for humans.
package table

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Options controls how the table is generated.
type Options int

const (
	// HeaderRow puts a divider after the first row.
	HeaderRow Options = 1 << iota
	// SkipEmpty writes nothing when the table has no rows other than the
	// header.
	SkipEmpty
	// RightJustify left-pads cells instead of right-padding them.
	RightJustify
)

// PrettyPrint writes 't' as a formatted table to 'dest'. Every row must have
// the same number of cells as the first row.
func PrettyPrint(dest io.Writer, t [][]string, opts Options) {
	chrome := 0
	if opts&HeaderRow != 0 {
		chrome = 1
	}
	if len(t) == 0 || (opts&SkipEmpty != 0 && len(t) <= chrome) {
		return
	}
	widths := make([]int, len(t[0]))
	for _, row := range t {
		for i, c := range row {
			if w := width(c); w > widths[i] {
				widths[i] = w
			}
		}
	}
	w := bufio.NewWriter(dest)
	defer w.Flush()
	for ridx, row := range t {
		for i, c := range row {
			pad := strings.Repeat(" ", widths[i]-width(c))
			w.WriteByte(' ')
			if opts&RightJustify != 0 {
				w.WriteString(pad)
				w.WriteString(c)
			} else {
				w.WriteString(c)
				w.WriteString(pad)
			}
			w.WriteString(" |")
		}
		w.WriteByte('\n')
		if ridx == 0 && chrome == 1 {
			for i := range row {
				w.WriteByte(' ')
				w.WriteString(strings.Repeat("-", widths[i]))
				w.WriteString(" |")
			}
			w.WriteByte('\n')
		}
	}
}

// width returns the number of characters used to display 's'.
func width(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}
