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

// Package config loads cmd/pgrestqlctl's settings from flags, environment
// variables, and an optional config file, with live reload of the settings
// that are safe to change without restarting a refresh in flight.
package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the resolved set of settings the CLI and the schema cache it
// constructs need.
type Config struct {
	DatabaseURL     string
	Tenant          string
	Schema          string
	RefreshTimeout  time.Duration
	LogLevel        string
	LogFormat       string
	LogOutput       string
}

// New builds a viper instance reading, in increasing precedence: defaults,
// an optional config file, PGRESTQL_-prefixed environment variables, and
// bound flags. fs lets callers substitute an in-memory filesystem in tests
// instead of touching the real one.
func New(fs afero.Fs, fset *pflag.FlagSet, configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetFs(fs)

	v.SetDefault("database-url", "")
	v.SetDefault("tenant", "default")
	v.SetDefault("schema", "public")
	v.SetDefault("refresh-timeout", 30*time.Second)
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "json")
	v.SetDefault("log-output", "stdout")

	v.SetEnvPrefix("PGRESTQL")
	v.AutomaticEnv()

	if fset != nil {
		if err := v.BindPFlags(fset); err != nil {
			return nil, err
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			_, notFound := err.(viper.ConfigFileNotFoundError)
			if !notFound && !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	return v, nil
}

// WatchReload re-reads configFile whenever it changes on disk, invoking
// onChange with the freshly loaded Config. Only settings documented as
// dynamic (refresh-timeout, log-level) are meaningful to change this way;
// database-url and tenant/schema changes require a process restart.
func WatchReload(v *viper.Viper, onChange func(Config)) {
	v.OnConfigChange(func(_ fsnotify.Event) {
		onChange(Load(v))
	})
	v.WatchConfig()
}

// Load reads the resolved Config out of v.
func Load(v *viper.Viper) Config {
	return Config{
		DatabaseURL:    v.GetString("database-url"),
		Tenant:         v.GetString("tenant"),
		Schema:         v.GetString("schema"),
		RefreshTimeout: v.GetDuration("refresh-timeout"),
		LogLevel:       v.GetString("log-level"),
		LogFormat:      v.GetString("log-format"),
		LogOutput:      v.GetString("log-output"),
	}
}
