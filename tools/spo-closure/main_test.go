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

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	docopt "github.com/docopt/docopt-go"
	"github.com/ebay/tristore/config"
	"github.com/ebay/tristore/infer"
	"github.com/ebay/tristore/spo"
	"github.com/ebay/tristore/terms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseArgs(t *testing.T) {
	tests := []struct {
		name         string
		inputArgv    []string
		expValidArgs bool
		expOpts      options
	}{
		{
			name:         "defaults",
			inputArgv:    []string{},
			expValidArgs: true,
			expOpts: options{
				DepthString:     "4",
				WidthString:     "3",
				InstancesString: "10",
				Log:             "info",
				shape:           shape{depth: 4, width: 3, instances: 10},
			},
		}, {
			name:         "all",
			inputArgv:    []string{"--cfg", "c.json", "--fast", "--depth=2", "--width=5", "--instances=1", "--log=debug"},
			expValidArgs: true,
			expOpts: options{
				Cfg:             "c.json",
				Fast:            true,
				DepthString:     "2",
				WidthString:     "5",
				InstancesString: "1",
				Log:             "debug",
				shape:           shape{depth: 2, width: 5, instances: 1},
			},
		}, {
			name:         "not_a_number",
			inputArgv:    []string{"--depth=deep"},
			expValidArgs: false,
		}, {
			name:         "zero_width",
			inputArgv:    []string{"--width=0"},
			expValidArgs: false,
		}, {
			name:         "unknown_flag",
			inputArgv:    []string{"--slow"},
			expValidArgs: false,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			docopt.DefaultParser.HelpHandler = func(err error, usage string) {}
			opts, err := parseArgs(test.inputArgv)
			if !test.expValidArgs {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expOpts, *opts)
		})
	}
}

func Test_loadConfig(t *testing.T) {
	cfg, err := loadConfig(&options{})
	require.NoError(t, err)
	assert.Equal(t, config.StrategyFull, cfg.Strategy)
	assert.Equal(t, "btree", cfg.Store.Backend)

	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"distinct": true}`), 0644))
	cfg, err = loadConfig(&options{Cfg: path, Fast: true})
	require.NoError(t, err)
	assert.Equal(t, config.StrategyFast, cfg.Strategy)
	assert.True(t, cfg.Distinct)
}

func Test_generate(t *testing.T) {
	assert := assert.New(t)
	dict := terms.NewMemory()
	v := infer.NewVocabulary(dict)
	facts := generate(dict, v, shape{depth: 2, width: 2, instances: 3})
	counts := make(map[uint64]int)
	for _, f := range facts {
		counts[f.P]++
		assert.Equal(spo.Explicit, f.Type)
	}
	assert.Equal(6, counts[v.SubClassOf])
	assert.Equal(12, counts[v.Type])
	assert.Equal(2, counts[v.SubPropertyOf])
	assert.Equal(1, counts[v.Domain])
	assert.Equal(1, counts[v.Range])
	assert.Len(facts, 33)
}

func Test_run(t *testing.T) {
	for _, strategy := range []string{config.StrategyFull, config.StrategyFast} {
		t.Run(strategy, func(t *testing.T) {
			cfg := &config.Closure{Strategy: strategy}
			require.NoError(t, cfg.Validate())
			err := run(context.Background(), cfg, shape{depth: 2, width: 2, instances: 2})
			assert.NoError(t, err)
		})
	}
	t.Run("sqlite", func(t *testing.T) {
		cfg := &config.Closure{Store: config.Store{Backend: "sqlite", Dir: t.TempDir()}}
		require.NoError(t, cfg.Validate())
		assert.NoError(t, run(context.Background(), cfg, shape{depth: 1, width: 2, instances: 2}))
	})
}
