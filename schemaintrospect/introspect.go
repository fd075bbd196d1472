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

// Package schemaintrospect runs the catalog queries that feed
// schemacache.Refresh. Spec-wise it is the external collaborator named but
// left unimplemented by the core: the core specifies the *shape* of a
// refresh's input (columns, foreign keys, primary/unique keys), not how
// that shape is obtained from a live database.
package schemaintrospect

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

// ColumnRow is one row of a table's column metadata.
type ColumnRow struct {
	Schema   string
	Table    string
	Name     string
	DataType string
	Nullable bool
}

// ForeignKeyRow is one foreign-key constraint, columns paired positionally
// between Source and Target.
type ForeignKeyRow struct {
	ConstraintName string
	SourceSchema   string
	SourceTable    string
	SourceColumns  []string
	TargetSchema   string
	TargetTable    string
	TargetColumns  []string
}

// UniqueKeyRow is one primary or unique key's column set.
type UniqueKeyRow struct {
	Schema  string
	Table   string
	Columns []string
}

// Snapshot is the full raw introspection result for one schema, the input
// to the §4.5 cardinality-derivation algorithm.
type Snapshot struct {
	Columns     []ColumnRow
	ForeignKeys []ForeignKeyRow
	UniqueKeys  []UniqueKeyRow
}

// Introspect runs the column/foreign-key/primary-and-unique-key catalog
// queries against conn for the given schema. conn is expected to be a
// *sql.DB opened with the lib/pq driver ("postgres"); lib/pq is also
// imported directly here for pq.StringArray, used to scan array-typed
// catalog columns.
func Introspect(ctx context.Context, conn *sql.DB, schema string) (*Snapshot, error) {
	snap := &Snapshot{}

	cols, err := queryColumns(ctx, conn, schema)
	if err != nil {
		return nil, err
	}
	snap.Columns = cols

	fks, err := queryForeignKeys(ctx, conn, schema)
	if err != nil {
		return nil, err
	}
	snap.ForeignKeys = fks

	uks, err := queryUniqueKeys(ctx, conn, schema)
	if err != nil {
		return nil, err
	}
	snap.UniqueKeys = uks

	return snap, nil
}

const columnsQuery = `
SELECT table_schema, table_name, column_name, data_type, is_nullable = 'YES'
FROM information_schema.columns
WHERE table_schema = $1
ORDER BY table_name, ordinal_position`

func queryColumns(ctx context.Context, conn *sql.DB, schema string) ([]ColumnRow, error) {
	rows, err := conn.QueryContext(ctx, columnsQuery, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ColumnRow
	for rows.Next() {
		var c ColumnRow
		if err := rows.Scan(&c.Schema, &c.Table, &c.Name, &c.DataType, &c.Nullable); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const foreignKeysQuery = `
SELECT
	con.conname,
	src_ns.nspname, src_cls.relname,
	array_agg(src_att.attname ORDER BY u.ord),
	tgt_ns.nspname, tgt_cls.relname,
	array_agg(tgt_att.attname ORDER BY u.ord)
FROM pg_constraint con
JOIN pg_class src_cls ON src_cls.oid = con.conrelid
JOIN pg_namespace src_ns ON src_ns.oid = src_cls.relnamespace
JOIN pg_class tgt_cls ON tgt_cls.oid = con.confrelid
JOIN pg_namespace tgt_ns ON tgt_ns.oid = tgt_cls.relnamespace
JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS u(srcattnum, tgtattnum, ord) ON true
JOIN pg_attribute src_att ON src_att.attrelid = con.conrelid AND src_att.attnum = u.srcattnum
JOIN pg_attribute tgt_att ON tgt_att.attrelid = con.confrelid AND tgt_att.attnum = u.tgtattnum
WHERE con.contype = 'f' AND src_ns.nspname = $1
GROUP BY con.conname, src_ns.nspname, src_cls.relname, tgt_ns.nspname, tgt_cls.relname`

func queryForeignKeys(ctx context.Context, conn *sql.DB, schema string) ([]ForeignKeyRow, error) {
	rows, err := conn.QueryContext(ctx, foreignKeysQuery, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ForeignKeyRow
	for rows.Next() {
		var fk ForeignKeyRow
		var srcCols, tgtCols pq.StringArray
		if err := rows.Scan(&fk.ConstraintName, &fk.SourceSchema, &fk.SourceTable, &srcCols,
			&fk.TargetSchema, &fk.TargetTable, &tgtCols); err != nil {
			return nil, err
		}
		fk.SourceColumns = []string(srcCols)
		fk.TargetColumns = []string(tgtCols)
		out = append(out, fk)
	}
	return out, rows.Err()
}

const uniqueKeysQuery = `
SELECT ns.nspname, cls.relname, array_agg(att.attname ORDER BY u.ord)
FROM pg_constraint con
JOIN pg_class cls ON cls.oid = con.conrelid
JOIN pg_namespace ns ON ns.oid = cls.relnamespace
JOIN LATERAL unnest(con.conkey) WITH ORDINALITY AS u(attnum, ord) ON true
JOIN pg_attribute att ON att.attrelid = con.conrelid AND att.attnum = u.attnum
WHERE con.contype IN ('p', 'u') AND ns.nspname = $1
GROUP BY con.conname, ns.nspname, cls.relname`

func queryUniqueKeys(ctx context.Context, conn *sql.DB, schema string) ([]UniqueKeyRow, error) {
	rows, err := conn.QueryContext(ctx, uniqueKeysQuery, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UniqueKeyRow
	for rows.Next() {
		var uk UniqueKeyRow
		var cols pq.StringArray
		if err := rows.Scan(&uk.Schema, &uk.Table, &cols); err != nil {
			return nil, err
		}
		uk.Columns = []string(cols)
		out = append(out, uk)
	}
	return out, rows.Err()
}
