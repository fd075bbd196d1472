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

package command

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/supabase/pgrestql"
)

func (r *Root) newCompileCommand() *cobra.Command {
	var schema, table string

	cmd := &cobra.Command{
		Use:   "compile <query-string>",
		Short: "Compile a PostgREST-style query string into parameterized SQL",
		Long: `Compile a PostgREST-style query string into parameterized SQL.

Embedded relations are not resolved by this command: a select list
containing a relation or spread item fails, since there is no schema
cache here to resolve it against. Use "schema refresh" followed by a
library call to pgrestql.QueryStringToSQLWithRelations for that.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			compiled, err := pgrestql.QueryStringToSQL(schema, table, args[0])
			if err != nil {
				return err
			}
			printCompiled(cmd, compiled.SQL, compiled.Params, compiled.Tables)
			return nil
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "public", "schema the target table lives in")
	cmd.Flags().StringVar(&table, "table", "", "table to compile the query string against (required)")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

func printCompiled(cmd *cobra.Command, sql string, params []any, tables []string) {
	bold := color.New(color.Bold)
	bold.Fprintln(cmd.OutOrStdout(), "SQL")
	fmt.Fprintln(cmd.OutOrStdout(), sql)

	bold.Fprintln(cmd.OutOrStdout(), "\nParams")
	for i, p := range params {
		fmt.Fprintf(cmd.OutOrStdout(), "  $%d = %v\n", i+1, p)
	}

	bold.Fprintln(cmd.OutOrStdout(), "\nTables")
	for _, t := range tables {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", t)
	}
}
