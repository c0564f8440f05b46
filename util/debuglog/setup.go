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

// Package debuglog configures Logrus for the tristore tools: caller file and
// line info relative to the module root, UTC timestamps with subsecond
// precision and an optional level.
//
// Main packages should call Configure early, before doing anything that logs.
package debuglog

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options are used to control the debug logger's behavior. The default Options
// are represented by the zero value.
type Options struct {
	// If true, the logger will highlight some output with ANSI colors. This
	// may be overridden by setting the environment variable "CLICOLOR_FORCE".
	ForceColors bool

	// One of logrus's level names ("debug", "info", ...). If empty, the
	// level is left as is.
	Level string

	// If not nil, this will set up the given logger. If nil, it will set up the
	// default Logrus logger (see logrus.StandardLogger()).
	Logger *logrus.Logger
}

// Configure sets up the debug logger. It's safe to call more than once, but not
// concurrently. It returns an error only if Level can't be parsed, in which
// case the logger is otherwise fully configured.
func Configure(opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.SetReportCaller(true)
	logger.ReplaceHooks(make(logrus.LevelHooks))
	logger.AddHook(utcHook{})
	logger.AddHook(trimCallerHook{prefix: moduleRoot()})
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:             true,
		TimestampFormat:           "2006-01-02 15:04:05.000000 MST",
		ForceColors:               opts.ForceColors,
		EnvironmentOverrideColors: true,
	})
	if opts.Level != "" {
		lvl, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return err
		}
		logger.SetLevel(lvl)
	}
	logger.WithFields(logrus.Fields{
		"forceColors": opts.ForceColors,
		"level":       logger.GetLevel().String(),
	}).Debug("Initialized Logrus")
	return nil
}

// utcHook converts each entry's timestamp to UTC.
type utcHook struct{}

func (utcHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (utcHook) Fire(entry *logrus.Entry) error {
	entry.Time = entry.Time.UTC()
	return nil
}

// trimCallerHook strips the module's location on disk from the caller's file
// name, which is otherwise repeated in every log line.
type trimCallerHook struct {
	prefix string
}

func (trimCallerHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h trimCallerHook) Fire(entry *logrus.Entry) error {
	if entry.HasCaller() && h.prefix != "" {
		entry.Caller.File = strings.TrimPrefix(entry.Caller.File, h.prefix)
	}
	return nil
}

// moduleRoot returns the directory containing the module, with a trailing
// separator, based on this file's location. It returns "" if that can't be
// determined.
func moduleRoot() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	// this file lives at <root>/util/debuglog/setup.go
	root := filepath.Dir(filepath.Dir(filepath.Dir(file)))
	return root + string(filepath.Separator)
}
