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
	"context"
	"database/sql"
	"fmt"

	"github.com/fatih/color"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/supabase/pgrestql/ast"
	"github.com/supabase/pgrestql/internal/config"
	"github.com/supabase/pgrestql/internal/obslog"
	"github.com/supabase/pgrestql/schemacache"
)

func (r *Root) newSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect and refresh the schema cache",
	}
	cmd.AddCommand(r.newSchemaRefreshCommand())
	cmd.AddCommand(r.newSchemaDumpCommand())
	return cmd
}

func (r *Root) newSchemaRefreshCommand() *cobra.Command {
	var tenant, schema, databaseURL string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Run the catalog introspection and rebuild a tenant's cache entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(r.v)
			if databaseURL == "" {
				databaseURL = cfg.DatabaseURL
			}
			if tenant == "" {
				tenant = cfg.Tenant
			}
			if schema == "" {
				schema = cfg.Schema
			}

			conn, err := sql.Open("postgres", databaseURL)
			if err != nil {
				return fmt.Errorf("opening database connection: %w", err)
			}
			defer conn.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cache := schemacache.New(obslog.Get(), cfg.RefreshTimeout)
			if err := cache.Refresh(ctx, tenant, schema, conn); err != nil {
				return fmt.Errorf("refreshing schema cache: %w", err)
			}

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "schema cache refreshed for tenant %q, schema %q\n", tenant, schema)
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant to refresh (defaults to the config value)")
	cmd.Flags().StringVar(&schema, "schema", "", "schema to introspect (defaults to the config value)")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string (defaults to the config value)")

	return cmd
}

// schemaDump is the YAML shape "schema dump" prints: the tables and
// relationships a fresh Refresh derived for a tenant.
type schemaDump struct {
	Tables        []*ast.Table        `yaml:"tables"`
	Relationships []*ast.Relationship `yaml:"relationships"`
}

func (r *Root) newSchemaDumpCommand() *cobra.Command {
	var tenant, schema, databaseURL string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Introspect a database and print its derived tables and relationships as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(r.v)
			if databaseURL == "" {
				databaseURL = cfg.DatabaseURL
			}
			if tenant == "" {
				tenant = cfg.Tenant
			}
			if schema == "" {
				schema = cfg.Schema
			}

			conn, err := sql.Open("postgres", databaseURL)
			if err != nil {
				return fmt.Errorf("opening database connection: %w", err)
			}
			defer conn.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cache := schemacache.New(obslog.Get(), cfg.RefreshTimeout)
			if err := cache.Refresh(ctx, tenant, schema, conn); err != nil {
				return fmt.Errorf("introspecting schema: %w", err)
			}

			out, err := yaml.Marshal(schemaDump{
				Tables:        cache.Tables(tenant),
				Relationships: cache.AllRelationships(tenant),
			})
			if err != nil {
				return fmt.Errorf("rendering schema dump: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant to dump (defaults to the config value)")
	cmd.Flags().StringVar(&schema, "schema", "", "schema to introspect (defaults to the config value)")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string (defaults to the config value)")

	return cmd
}
