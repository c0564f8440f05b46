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

package debuglog

import (
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Configure(t *testing.T) {
	// Ensure CLICOLOR_FORCE isn't set, as it would cause the test to fail.
	value, isSet := os.LookupEnv("CLICOLOR_FORCE")
	if isSet {
		require.NoError(t, os.Unsetenv("CLICOLOR_FORCE"))
		defer os.Setenv("CLICOLOR_FORCE", value)
	}
	tests := []struct {
		name     string
		options  Options
		contains []string
	}{
		{
			name:    "default",
			options: Options{Level: "debug"},
			contains: []string{
				" level=debug ",
				` msg="Initialized Logrus"`,
				" forceColors=false",
				` UTC"`,
				` file="util/debuglog/setup.go:`,
			},
		},
		{
			name:    "forceColors",
			options: Options{Level: "debug", ForceColors: true},
			contains: []string{
				"\x1b[37mDEBU\x1b[0m",
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var buf strings.Builder
			logger := logrus.New()
			logger.SetOutput(&buf)
			test.options.Logger = logger
			require.NoError(t, Configure(test.options))
			for _, exp := range test.contains {
				assert.Contains(t, buf.String(), exp)
			}
		})
	}
}

func Test_Configure_badLevel(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&strings.Builder{})
	assert.Error(t, Configure(Options{Logger: logger, Level: "chatty"}))
}
