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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func Test_Registry(t *testing.T) {
	assert := assert.New(t)
	reg := prometheus.NewRegistry()
	mr := Registry{R: reg}
	c := mr.NewCounter(prometheus.CounterOpts{Name: "c_total", Help: "c"})
	cv := mr.NewCounterVec(prometheus.CounterOpts{Name: "cv_total", Help: "cv"}, []string{"rule"})
	mr.NewSummary(prometheus.SummaryOpts{Name: "s", Help: "s"})
	mr.NewHistogramVec(prometheus.HistogramOpts{Name: "h", Help: "h"}, []string{"rule"})
	c.Add(2)
	cv.WithLabelValues("rdfs9").Inc()
	assert.Equal(2.0, testutil.ToFloat64(c))
	assert.Equal(1.0, testutil.ToFloat64(cv.WithLabelValues("rdfs9")))
	assert.Panics(func() {
		mr.NewCounter(prometheus.CounterOpts{Name: "c_total", Help: "c"})
	})
}
