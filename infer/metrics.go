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

package infer

import (
	metricsutil "github.com/ebay/tristore/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type inferMetrics struct {
	roundsTotal            prometheus.Counter
	entailmentsTotal       *prometheus.CounterVec
	factsMergedTotal       prometheus.Counter
	ruleDurationSeconds    *prometheus.HistogramVec
	closureDurationSeconds prometheus.Summary
}

var metrics inferMetrics

func init() {
	mr := metricsutil.Registry{R: prometheus.DefaultRegisterer}
	metrics = inferMetrics{
		roundsTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "tristore",
			Subsystem: "infer",
			Name:      "rounds_total",
			Help:      `The total number of closure rounds run, including rounds that reached a fixed point.`,
		}),
		entailmentsTotal: mr.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tristore",
			Subsystem: "infer",
			Name:      "entailments_total",
			Help:      `The total number of facts derived by each rule, including facts that were already known.`,
		}, []string{"rule"}),
		factsMergedTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "tristore",
			Subsystem: "infer",
			Name:      "facts_merged_total",
			Help:      `The total number of inferred facts merged into the store being closed.`,
		}),
		ruleDurationSeconds: mr.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tristore",
			Subsystem: "infer",
			Name:      "rule_duration_seconds",
			Help:      `The time taken by a single application of each rule.`,
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"rule"}),
		closureDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  "tristore",
			Subsystem:  "infer",
			Name:       "closure_duration_seconds",
			Help:       `The time taken to compute a closure to its fixed point.`,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}),
	}
}

func observeRule(rs RuleStats) {
	metrics.entailmentsTotal.WithLabelValues(rs.Rule).Add(float64(rs.Derived))
	metrics.ruleDurationSeconds.WithLabelValues(rs.Rule).Observe(rs.Elapsed.Seconds())
}
