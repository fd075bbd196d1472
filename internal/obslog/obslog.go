// Copyright 2026 Supabase, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package obslog sets up the process-wide structured logger used by
// cmd/pgrestqlctl and by the schema cache's refresh lifecycle.
package obslog

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	once   sync.Once
	logger *slog.Logger
	mu     sync.Mutex
)

// RegisterFlags adds the --log-level/--log-format/--log-output flags a
// command needs to control Setup's behavior. The caller's viper instance
// picks these up by binding the same flag set (config.New does this via
// BindPFlags), so no binding happens here.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-format", "json", "log format (json, text)")
	fs.String("log-output", "stdout", "log output (stdout, stderr, or a file path)")
}

// Setup builds and installs the process-wide logger from v's log-level,
// log-format, and log-output settings. It runs at most once; later calls
// are no-ops, matching the one-shot initialization a CLI's root command
// performs before dispatching to a subcommand.
func Setup(v *viper.Viper) *slog.Logger {
	once.Do(func() {
		level := parseLevel(v.GetString("log-level"))
		output := openOutput(v.GetString("log-output"))
		handler := newHandler(v.GetString("log-format"), output, level)

		l := slog.New(handler)
		slog.SetDefault(l)

		mu.Lock()
		logger = l
		mu.Unlock()
	})
	return Get()
}

// Get returns the configured logger, or the slog default if Setup has not
// run yet.
func Get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openOutput(s string) io.Writer {
	switch strings.ToLower(s) {
	case "", "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		file, err := os.OpenFile(s, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return os.Stdout
		}
		return file
	}
}

func newHandler(format string, output io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(format) == "text" {
		return slog.NewTextHandler(output, opts)
	}
	return slog.NewJSONHandler(output, opts)
}
