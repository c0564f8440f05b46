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

// Package clocks provides a mockable way to measure elapsed time.
package clocks

import (
	"sync"
	"time"
)

// A Source tells the passage of time. This package provides two sources: Wall
// and Mock.
type Source interface {
	// Now returns the current time.
	Now() time.Time
}

type wallClock struct{}

// Wall is the normal clock, as provided by time.Now().
var Wall Source = wallClock{}

func (wallClock) Now() time.Time {
	return time.Now()
}

// Since returns the time elapsed on 'src' since 'start'.
func Since(src Source, start time.Time) time.Duration {
	return src.Now().Sub(start)
}

// Mock is a Source that only moves when told to. Optionally it can move
// forward by a fixed Step every time it's read, which gives deterministic
// non-zero durations to code that measures with Now() pairs. It is
// thread-safe.
type Mock struct {
	lock sync.Mutex
	now  time.Time
	step time.Duration
}

// NewMock returns a mock clock set to a fixed, arbitrary time.
func NewMock() *Mock {
	return &Mock{now: time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)}
}

// SetStep makes every subsequent call to Now advance the clock by 'step' after
// reading it.
func (c *Mock) SetStep(step time.Duration) {
	c.lock.Lock()
	c.step = step
	c.lock.Unlock()
}

// Now returns the mock's current time.
func (c *Mock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

// Advance moves the mock's time forward by 'amount'.
func (c *Mock) Advance(amount time.Duration) {
	c.lock.Lock()
	c.now = c.now.Add(amount)
	c.lock.Unlock()
}
