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

// Package schemacache implements the read-only-from-the-core schema cache
// of §4.5/§5: per-tenant Table and Relationship lookups, refreshed
// out-of-band against a live database connection.
package schemacache

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/supabase/pgrestql/ast"
	"github.com/supabase/pgrestql/querr"
	"github.com/supabase/pgrestql/schemaintrospect"
	"golang.org/x/sync/singleflight"
)

// DefaultRefreshTimeout is the §5-mandated default bound on a single
// Refresh call's database round-trip.
const DefaultRefreshTimeout = 30 * time.Second

type tenantState struct {
	tables        map[string]*ast.Table            // "schema.table" -> Table
	relationships map[string][]*ast.Relationship    // "schema.table" (source) -> edges
}

func emptyState() *tenantState {
	return &tenantState{tables: map[string]*ast.Table{}, relationships: map[string][]*ast.Relationship{}}
}

// Cache is the process-wide schema cache. The zero value is not usable;
// construct with New.
type Cache struct {
	logger  *slog.Logger
	timeout time.Duration

	states sync.Map // tenant string -> *atomic.Pointer[tenantState]
	group  singleflight.Group
}

// New constructs an empty cache, ready for reads that return not_found, per
// §5's Init lifecycle stage.
func New(logger *slog.Logger, timeout time.Duration) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	return &Cache{logger: logger, timeout: timeout}
}

func (c *Cache) stateFor(tenant string) *tenantState {
	v, ok := c.states.Load(tenant)
	if !ok {
		return emptyState()
	}
	ptr := v.(*atomic.Pointer[tenantState])
	st := ptr.Load()
	if st == nil {
		return emptyState()
	}
	return st
}

func tableKey(schema, table string) string { return schema + "." + table }

// GetTable implements the §4.5 get_table lookup.
func (c *Cache) GetTable(tenant, schema, table string) (*ast.Table, bool) {
	st := c.stateFor(tenant)
	t, ok := st.tables[tableKey(schema, table)]
	return t, ok
}

// GetRelationships implements the §4.5 get_relationships lookup.
func (c *Cache) GetRelationships(tenant, schema, table string) []ast.Relationship {
	st := c.stateFor(tenant)
	edges := st.relationships[tableKey(schema, table)]
	out := make([]ast.Relationship, 0, len(edges))
	for _, e := range edges {
		out = append(out, *e)
	}
	return out
}

// FindRelationship implements the §4.5 find_relationship lookup: the unique
// edge from source whose target table matches target. Zero matches and two
// or more matches are both not_found.
func (c *Cache) FindRelationship(tenant, schema, source, target string) (*ast.Relationship, error) {
	st := c.stateFor(tenant)
	edges := st.relationships[tableKey(schema, source)]
	var found *ast.Relationship
	for _, e := range edges {
		if e.TargetTable == target {
			if found != nil {
				return nil, querr.RelationshipNotFound(target)
			}
			found = e
		}
	}
	if found == nil {
		return nil, querr.RelationshipNotFound(target)
	}
	return found, nil
}

// FindRelationshipWithHint implements the §4.5 find_relationship_with_hint
// lookup: edges from source to target additionally filtered by hint against
// the constraint name or either side's column list. Zero matches is
// not_found; two or more is ambiguous.
func (c *Cache) FindRelationshipWithHint(tenant, schema, source, target, hint string) (*ast.Relationship, error) {
	st := c.stateFor(tenant)
	edges := st.relationships[tableKey(schema, source)]
	var matches []*ast.Relationship
	for _, e := range edges {
		if e.TargetTable != target {
			continue
		}
		if hintMatches(e, hint) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return nil, querr.RelationshipNotFound(target)
	case 1:
		return matches[0], nil
	default:
		return nil, querr.RelationshipAmbiguous(target)
	}
}

func hintMatches(e *ast.Relationship, hint string) bool {
	if e.ConstraintName == hint {
		return true
	}
	for _, c := range e.SourceColumns {
		if c == hint {
			return true
		}
	}
	for _, c := range e.TargetColumns {
		if c == hint {
			return true
		}
	}
	return false
}

// Tables returns every table known for tenant, sorted by schema-qualified
// name, for inspection tooling such as "schema dump" rather than compiler
// lookups.
func (c *Cache) Tables(tenant string) []*ast.Table {
	st := c.stateFor(tenant)
	out := make([]*ast.Table, 0, len(st.tables))
	for _, t := range st.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return tableKey(out[i].Schema, out[i].Name) < tableKey(out[j].Schema, out[j].Name)
	})
	return out
}

// AllRelationships returns every relationship edge known for tenant across
// every source table, sorted by source then target, for inspection tooling.
func (c *Cache) AllRelationships(tenant string) []*ast.Relationship {
	st := c.stateFor(tenant)
	var out []*ast.Relationship
	for _, edges := range st.relationships {
		out = append(out, edges...)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		ka := tableKey(a.SourceSchema, a.SourceTable) + ">" + tableKey(a.TargetSchema, a.TargetTable)
		kb := tableKey(b.SourceSchema, b.SourceTable) + ">" + tableKey(b.TargetSchema, b.TargetTable)
		return ka < kb
	})
	return out
}

// Refresh implements the §4.5/§5 refresh operation: introspects schema via
// conn, derives cardinalities, and atomically swaps the tenant's state.
// Concurrent Refresh calls for the same tenant are collapsed into one
// in-flight introspection via singleflight; refreshes of different tenants
// never block each other.
func (c *Cache) Refresh(ctx context.Context, tenant, schema string, conn *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err, _ := c.group.Do(tenant, func() (any, error) {
		snap, err := schemaintrospect.Introspect(ctx, conn, schema)
		if err != nil {
			c.logger.Error("schema refresh failed", "tenant", tenant, "schema", schema, "error", err)
			return nil, err
		}

		tables, relationships := deriveSchema(schema, snap)
		ptrAny, _ := c.states.LoadOrStore(tenant, &atomic.Pointer[tenantState]{})
		ptr := ptrAny.(*atomic.Pointer[tenantState])
		ptr.Store(&tenantState{tables: tables, relationships: relationships})
		c.logger.Info("schema refreshed", "tenant", tenant, "schema", schema, "tables", len(tables))
		return nil, nil
	})
	return err
}

// Clear implements the §5 Clear(tenant) lifecycle stage.
func (c *Cache) Clear(tenant string) {
	c.states.Delete(tenant)
}

// Teardown implements the §5 Teardown lifecycle stage.
func (c *Cache) Teardown() {
	c.states.Range(func(key, _ any) bool {
		c.states.Delete(key)
		return true
	})
}
