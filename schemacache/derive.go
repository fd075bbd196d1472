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

package schemacache

import (
	"sort"

	"github.com/supabase/pgrestql/ast"
	"github.com/supabase/pgrestql/schemaintrospect"
)

// deriveSchema implements the §4.5 cardinality-derivation algorithm over one
// schema's raw introspection snapshot: tables/columns pass through
// unchanged, and foreign keys are turned into the mirrored m2o/o2m/o2o edge
// pairs plus any m2m edges a junction table implies.
func deriveSchema(schema string, snap *schemaintrospect.Snapshot) (map[string]*ast.Table, map[string][]*ast.Relationship) {
	tables := buildTables(snap)
	uniqueKeys := buildUniqueKeys(snap)

	relationships := map[string][]*ast.Relationship{}
	addEdge := func(e *ast.Relationship) {
		key := tableKey(e.SourceSchema, e.SourceTable)
		relationships[key] = append(relationships[key], e)
	}

	fksByTable := map[string][]schemaintrospect.ForeignKeyRow{}
	for _, fk := range snap.ForeignKeys {
		fksByTable[tableKey(fk.SourceSchema, fk.SourceTable)] = append(fksByTable[tableKey(fk.SourceSchema, fk.SourceTable)], fk)
	}

	junctioned := map[string]bool{} // constraint-name pairs already emitted as m2m, skip m2o mirroring for these

	for key, fks := range fksByTable {
		if len(fks) < 2 {
			continue
		}
		for i := 0; i < len(fks); i++ {
			for j := i + 1; j < len(fks); j++ {
				if isJunctionPair(fks[i], fks[j], uniqueKeys[key]) {
					addEdge(m2mEdge(fks[i], fks[j]))
					addEdge(m2mEdge(fks[j], fks[i]))
					junctioned[fks[i].ConstraintName] = true
					junctioned[fks[j].ConstraintName] = true
				}
			}
		}
	}

	for _, fk := range snap.ForeignKeys {
		if junctioned[fk.ConstraintName] {
			continue
		}
		sourceKey := tableKey(fk.SourceSchema, fk.SourceTable)
		cardinality := ast.ManyToOne
		if columnsSubsetOfAnyKey(fk.SourceColumns, uniqueKeys[sourceKey]) {
			cardinality = ast.OneToOne
		}

		forward := &ast.Relationship{
			ConstraintName: fk.ConstraintName,
			SourceSchema:   fk.SourceSchema,
			SourceTable:    fk.SourceTable,
			SourceColumns:  fk.SourceColumns,
			TargetSchema:   fk.TargetSchema,
			TargetTable:    fk.TargetTable,
			TargetColumns:  fk.TargetColumns,
			Cardinality:    cardinality,
		}
		addEdge(forward)

		reverseCardinality := ast.OneToMany
		if cardinality == ast.OneToOne {
			reverseCardinality = ast.OneToOne
		}
		reverse := &ast.Relationship{
			ConstraintName: fk.ConstraintName,
			SourceSchema:   fk.TargetSchema,
			SourceTable:    fk.TargetTable,
			SourceColumns:  fk.TargetColumns,
			TargetSchema:   fk.SourceSchema,
			TargetTable:    fk.SourceTable,
			TargetColumns:  fk.SourceColumns,
			Cardinality:    reverseCardinality,
		}
		addEdge(reverse)
	}

	for key := range relationships {
		sort.Slice(relationships[key], func(i, j int) bool {
			return relationships[key][i].TargetTable < relationships[key][j].TargetTable
		})
	}

	return tables, relationships
}

func buildTables(snap *schemaintrospect.Snapshot) map[string]*ast.Table {
	tables := map[string]*ast.Table{}
	for _, col := range snap.Columns {
		key := tableKey(col.Schema, col.Table)
		t, ok := tables[key]
		if !ok {
			t = &ast.Table{Schema: col.Schema, Name: col.Table}
			tables[key] = t
		}
		t.Columns = append(t.Columns, ast.Column{Name: col.Name, DataType: col.DataType, Nullable: col.Nullable})
	}
	return tables
}

// buildUniqueKeys indexes each table's primary/unique key column sets by
// "schema.table" for the subset checks below.
func buildUniqueKeys(snap *schemaintrospect.Snapshot) map[string][][]string {
	keys := map[string][][]string{}
	for _, uk := range snap.UniqueKeys {
		key := tableKey(uk.Schema, uk.Table)
		keys[key] = append(keys[key], uk.Columns)
	}
	return keys
}

func columnsSubsetOfAnyKey(cols []string, keys [][]string) bool {
	for _, key := range keys {
		if isSubset(cols, key) {
			return true
		}
	}
	return false
}

func isSubset(cols, key []string) bool {
	set := make(map[string]bool, len(key))
	for _, c := range key {
		set[c] = true
	}
	for _, c := range cols {
		if !set[c] {
			return false
		}
	}
	return true
}

// anyKeySubsetOf reports whether any of keys is fully contained in cols.
func anyKeySubsetOf(keys [][]string, cols []string) bool {
	for _, key := range keys {
		if isSubset(key, cols) {
			return true
		}
	}
	return false
}

// isJunctionPair reports whether the union of two FKs' source columns
// (on the same table) contains one of that table's primary/unique keys,
// making the table a junction between their two targets.
func isJunctionPair(a, b schemaintrospect.ForeignKeyRow, keys [][]string) bool {
	union := append(append([]string{}, a.SourceColumns...), b.SourceColumns...)
	return anyKeySubsetOf(keys, unique(union))
}

func unique(cols []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// m2mEdge builds the m2m Relationship whose source is via's target table and
// whose target is to's target table, bridged by their shared junction table
// (via.SourceTable == to.SourceTable), per §4.5 step 3.
func m2mEdge(via, to schemaintrospect.ForeignKeyRow) *ast.Relationship {
	return &ast.Relationship{
		ConstraintName: via.ConstraintName + "+" + to.ConstraintName,
		SourceSchema:   via.TargetSchema,
		SourceTable:    via.TargetTable,
		SourceColumns:  via.TargetColumns,
		TargetSchema:   to.TargetSchema,
		TargetTable:    to.TargetTable,
		TargetColumns:  to.TargetColumns,
		Cardinality:    ast.ManyToMany,
		Junction: &ast.Junction{
			Schema:           via.SourceSchema,
			Table:            via.SourceTable,
			SourceColumns:    via.SourceColumns,
			TargetColumns:    to.SourceColumns,
			SourceConstraint: via.ConstraintName,
			TargetConstraint: to.ConstraintName,
		},
	}
}
