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

// Command spo-closure generates a synthetic ontology, computes its RDFS
// closure and prints statistics about the run.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"

	docopt "github.com/docopt/docopt-go"
	"github.com/ebay/tristore/config"
	"github.com/ebay/tristore/infer"
	"github.com/ebay/tristore/store"
	"github.com/ebay/tristore/terms"
	"github.com/ebay/tristore/util/debuglog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const usage = `spo-closure computes the RDFS closure of a generated class hierarchy.

Usage:
  spo-closure [options]

Options:
  --cfg=FILE         JSON config file. Without one, facts are kept in memory.
  --fast             Use the fast closure strategy.
  --depth=N          Depth of the class tree [default: 4]
  --width=N          Number of subclasses of each non-leaf class [default: 3]
  --instances=N      Number of instances of each leaf class [default: 10]
  --log=LEVEL        Logging level [default: info]
  -h, --help         Show this message.
`

type options struct {
	Cfg             string `docopt:"--cfg"`
	Fast            bool   `docopt:"--fast"`
	DepthString     string `docopt:"--depth"`
	WidthString     string `docopt:"--width"`
	InstancesString string `docopt:"--instances"`
	Log             string `docopt:"--log"`
	Help            bool   `docopt:"--help"`
	shape           shape
}

func parseArgs(argv []string) (*options, error) {
	opts, err := docopt.DefaultParser.ParseArgs(usage, argv, "")
	if err != nil {
		return nil, err
	}
	var res options
	if err := opts.Bind(&res); err != nil {
		return nil, err
	}
	ints := []struct {
		name string
		in   string
		out  *int
	}{
		{"depth", res.DepthString, &res.shape.depth},
		{"width", res.WidthString, &res.shape.width},
		{"instances", res.InstancesString, &res.shape.instances},
	}
	for _, i := range ints {
		*i.out, err = strconv.Atoi(i.in)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s: %v", i.name, err)
		}
		if *i.out < 1 {
			return nil, fmt.Errorf("--%s must be at least 1, got %d", i.name, *i.out)
		}
	}
	return &res, nil
}

func loadConfig(opts *options) (*config.Closure, error) {
	cfg := new(config.Closure)
	if opts.Cfg != "" {
		var err error
		cfg, err = config.Load(opts.Cfg)
		if err != nil {
			return nil, err
		}
	}
	if opts.Fast {
		cfg.Strategy = config.StrategyFast
	}
	return cfg, cfg.Validate()
}

func main() {
	debuglog.Configure(debuglog.Options{})
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("Error parsing command-line arguments: %v", err)
	}
	if err := debuglog.Configure(debuglog.Options{Level: opts.Log}); err != nil {
		log.Fatalf("Unable to parse log level: %v", err)
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		log.Fatalf("Unable to load configuration: %v", err)
	}
	log.Infof("Using config: %+v", cfg)

	if cfg.MetricsAddress != "" {
		log.Infof("Serving metrics on http://%s/metrics", cfg.MetricsAddress)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			err := http.ListenAndServe(cfg.MetricsAddress, mux)
			log.WithError(err).Warn("Metrics endpoint stopped")
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, cfg, opts.shape); err != nil {
		log.Fatalf("Closure failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Closure, sh shape) error {
	db, err := store.New(store.Options{
		Backend: cfg.Store.Backend,
		Dir:     cfg.Store.Dir,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	dict := terms.NewMemory()
	eng, err := infer.New(db, dict, infer.Options{
		BufferCapacity: cfg.BufferCapacity,
		Distinct:       cfg.Distinct,
	})
	if err != nil {
		return err
	}
	facts := generate(dict, eng.Vocabulary(), sh)
	loaded, err := db.Insert(ctx, facts...)
	if err != nil {
		return fmt.Errorf("unable to load generated facts: %w", err)
	}
	log.WithFields(log.Fields{
		"generated": len(facts),
		"loaded":    loaded,
		"terms":     dict.Len(),
	}).Info("Loaded ontology")

	var stats *infer.Stats
	switch cfg.Strategy {
	case config.StrategyFast:
		stats, err = eng.FastClosure(ctx)
	default:
		stats, err = eng.FullClosure(ctx)
	}
	if err != nil {
		return err
	}
	if err := stats.PrettyPrint(os.Stdout); err != nil {
		return err
	}
	if err := db.Verify(ctx); err != nil {
		return err
	}
	log.WithField("statements", db.Count()).Info("Verified store")
	return nil
}
