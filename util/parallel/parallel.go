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

// Package parallel runs small, fixed-size groups of tasks concurrently and
// joins them synchronously.
package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// InvokeN runs 'call' n times concurrently with i=0..n-1, each in a child of
// 'ctx'. The first callback to fail cancels the child context; InvokeN always
// waits for every callback to return, then returns that first error, or nil.
func InvokeN(ctx context.Context, n int, call func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return call(gctx, i)
		})
	}
	return g.Wait()
}

// CountN is like InvokeN but each callback produces a count. Upon success it
// returns the counts indexed by i. If any callback fails, the counts are nil.
func CountN(ctx context.Context, n int, call func(ctx context.Context, i int) (int64, error)) ([]int64, error) {
	counts := make([]int64, n)
	err := InvokeN(ctx, n, func(ctx context.Context, i int) error {
		c, err := call(ctx, i)
		// each goroutine owns its own slot
		counts[i] = c
		return err
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
