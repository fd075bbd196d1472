// Copyright 2026 Supabase, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package command implements the pgrestqlctl subcommands.
package command

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/supabase/pgrestql/internal/config"
	"github.com/supabase/pgrestql/internal/obslog"
)

// Root holds state shared across pgrestqlctl's subcommands: the resolved
// viper instance and the filesystem it was loaded through.
type Root struct {
	fs         afero.Fs
	v          *viper.Viper
	configFile string
}

// GetRootCommand creates the pgrestqlctl root command with all subcommands
// attached.
func GetRootCommand() *cobra.Command {
	r := &Root{fs: afero.NewOsFs()}

	root := &cobra.Command{
		Use:   "pgrestqlctl",
		Short: "Compile PostgREST-style query strings into parameterized SQL",
		Long: `pgrestqlctl is a command-line companion for the pgrestql query compiler.

Use it to try out query-string-to-SQL compilation from a shell, and to drive
schema cache refreshes against a live database.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			v, err := config.New(r.fs, cmd.Flags(), r.configFile)
			if err != nil {
				return err
			}
			r.v = v
			obslog.Setup(v)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&r.configFile, "config-file", "", "path to a pgrestqlctl config file")
	obslog.RegisterFlags(root.PersistentFlags())

	root.AddCommand(r.newCompileCommand())
	root.AddCommand(r.newSchemaCommand())

	return root
}
