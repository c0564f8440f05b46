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

// Package config defines the settings of the closure tool and how they're
// loaded from a JSON file.
package config

import "fmt"

// Closure strategies.
const (
	// StrategyFull runs every rule to a fixed point.
	StrategyFull = "full"
	// StrategyFast applies the rules once each in a fixed order.
	StrategyFast = "fast"
)

// Closure is the top-level configuration of a closure run.
type Closure struct {
	// Where the facts are kept.
	Store Store `json:"store"`
	// How many derived facts are buffered before being written out. If 0,
	// a default is used.
	BufferCapacity int `json:"bufferCapacity,omitempty"`
	// If true, repeated facts are dropped as they're derived.
	Distinct bool `json:"distinct,omitempty"`
	// Either "full" or "fast". Defaults to "full".
	Strategy string `json:"strategy,omitempty"`
	// If set, Prometheus metrics are served on this host:port.
	MetricsAddress string `json:"metricsAddress,omitempty"`
}

// Store settings.
type Store struct {
	// The database backend, such as "btree" or "sqlite". Defaults to "btree".
	Backend string `json:"backend,omitempty"`
	// The directory that a persistent backend writes to. Empty means in
	// memory.
	Dir string `json:"dir,omitempty"`
}

// Validate checks the settings, filling in defaults for any that are unset.
func (cfg *Closure) Validate() error {
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyFull
	}
	switch cfg.Strategy {
	case StrategyFull, StrategyFast:
	default:
		return fmt.Errorf("unknown closure strategy %q, expected %q or %q",
			cfg.Strategy, StrategyFull, StrategyFast)
	}
	if cfg.BufferCapacity < 0 {
		return fmt.Errorf("bufferCapacity must not be negative, got %d", cfg.BufferCapacity)
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "btree"
	}
	return nil
}
