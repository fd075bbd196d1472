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

// Package relation emits LEFT JOIN LATERAL subqueries for embedded
// relation/spread select items, resolving each against a schema cache
// lookup and recursing for nested embeddings.
package relation

import (
	"fmt"
	"strings"

	"github.com/supabase/pgrestql/ast"
	"github.com/supabase/pgrestql/internal/sqlquote"
	"github.com/supabase/pgrestql/querr"
)

// Lookup is the subset of the schema cache's read contract the builder
// needs. Defined here, consumer-side, so this package never has to import
// the schemacache package itself.
type Lookup interface {
	FindRelationship(tenant, schema, source, target string) (*ast.Relationship, error)
	FindRelationshipWithHint(tenant, schema, source, target, hint string) (*ast.Relationship, error)
}

// Embedded is one resolved embedding: the LEFT JOIN LATERAL text to splice
// after the FROM clause, the outer projection column(s) it contributes
// (plural only for a spread item), and the schema-qualified table names it
// touches.
type Embedded struct {
	Join    string
	Columns []string
	Tables  []string
}

// Builder resolves and emits relation/spread embeddings for one query.
// Depth is shared across every embedding in that query so synthetic aliases
// never collide.
type Builder struct {
	lookup   Lookup
	tenant   string
	schema   string
	depth    int
	tableSet map[string]bool
	tables   []string
}

func NewBuilder(lookup Lookup, tenant, schema string) *Builder {
	return &Builder{lookup: lookup, tenant: tenant, schema: schema, tableSet: map[string]bool{}}
}

// Tables returns every schema-qualified table name touched by embeddings
// built so far, in first-touched order.
func (b *Builder) Tables() []string { return b.tables }

func (b *Builder) touch(schema, table string) {
	qualified := schema + "." + table
	if !b.tableSet[qualified] {
		b.tableSet[qualified] = true
		b.tables = append(b.tables, qualified)
	}
}

// Build resolves item (a relation or spread SelectItem) against parentTable,
// using parentAlias to qualify the parent side of the join condition, and
// returns the LATERAL join text plus outer projection column(s).
func (b *Builder) Build(parentTable, parentAlias string, item *ast.SelectItem) (*Embedded, error) {
	rel, err := b.resolve(parentTable, item)
	if err != nil {
		return nil, err
	}

	depth := b.depth
	b.depth++
	alias := fmt.Sprintf("%s_%d", item.Name, depth)
	if rel.Cardinality == ast.ManyToMany && rel.Junction != nil {
		b.touch(rel.Junction.Schema, rel.Junction.Table)
	}
	b.touch(rel.TargetSchema, rel.TargetTable)

	switch rel.Cardinality {
	case ast.ManyToMany:
		return b.buildManyToMany(parentAlias, alias, depth, rel, item)
	case ast.OneToMany:
		return b.buildSingleJoin(parentAlias, alias, rel, item, "json_agg", false)
	default: // ManyToOne, OneToOne
		return b.buildSingleJoin(parentAlias, alias, rel, item, "row_to_json", true)
	}
}

func (b *Builder) resolve(parentTable string, item *ast.SelectItem) (*ast.Relationship, error) {
	if item.RelHint != "" {
		rel, err := b.lookup.FindRelationshipWithHint(b.tenant, b.schema, parentTable, item.Name, item.RelHint)
		if err != nil {
			return nil, err
		}
		return rel, nil
	}
	rel, err := b.lookup.FindRelationship(b.tenant, b.schema, parentTable, item.Name)
	if err != nil {
		return nil, err
	}
	return rel, nil
}

// buildSingleJoin covers m2o, o2o, and o2m: a single target table correlated
// to the parent by the relationship's column pairs.
func (b *Builder) buildSingleJoin(parentAlias, alias string, rel *ast.Relationship, item *ast.SelectItem, aggFn string, limitOne bool) (*Embedded, error) {
	target := sqlquote.Ident(rel.TargetSchema) + "." + sqlquote.Ident(rel.TargetTable)
	join := joinConditionSQL(parentAlias, rel.SourceColumns, alias, rel.TargetColumns)

	projection, innerTables, err := b.childProjection(rel.TargetTable, alias, item.Children)
	if err != nil {
		return nil, err
	}

	var limit string
	if limitOne {
		limit = " LIMIT 1"
	}

	var b2 strings.Builder
	fmt.Fprintf(&b2, `LEFT JOIN LATERAL ( SELECT %s(%s) AS %s FROM ( SELECT %s FROM %s AS %s WHERE %s%s ) AS %s ) AS %s_agg ON true`,
		aggFn, alias, alias, projection, target, alias, join, limit, alias, alias)

	return &Embedded{
		Join:    b2.String(),
		Columns: outerColumns(alias, item),
		Tables:  append([]string{rel.TargetSchema + "." + rel.TargetTable}, innerTables...),
	}, nil
}

// buildManyToMany covers m2m: the junction table bridges parent and target.
func (b *Builder) buildManyToMany(parentAlias, alias string, depth int, rel *ast.Relationship, item *ast.SelectItem) (*Embedded, error) {
	if rel.Junction == nil {
		return nil, querr.RelationshipNotFound(item.Name)
	}
	junctionAlias := fmt.Sprintf("junction_%d", depth)
	junction := sqlquote.Ident(rel.Junction.Schema) + "." + sqlquote.Ident(rel.Junction.Table)
	target := sqlquote.Ident(rel.TargetSchema) + "." + sqlquote.Ident(rel.TargetTable)

	junctionToTarget := joinConditionSQL(junctionAlias, rel.Junction.TargetColumns, alias, rel.TargetColumns)
	parentToJunction := joinConditionSQL(parentAlias, rel.SourceColumns, junctionAlias, rel.Junction.SourceColumns)

	projection, innerTables, err := b.childProjection(rel.TargetTable, alias, item.Children)
	if err != nil {
		return nil, err
	}

	var b2 strings.Builder
	fmt.Fprintf(&b2, `LEFT JOIN LATERAL ( SELECT json_agg(%s.*) AS %s FROM ( SELECT %s FROM %s AS %s JOIN %s AS %s ON %s WHERE %s ) AS %s ) AS %s_agg ON true`,
		alias, alias, projection, junction, junctionAlias, target, alias, junctionToTarget, parentToJunction, alias, alias)

	tables := append([]string{rel.Junction.Schema + "." + rel.Junction.Table, rel.TargetSchema + "." + rel.TargetTable}, innerTables...)
	return &Embedded{Join: b2.String(), Columns: outerColumns(alias, item), Tables: tables}, nil
}

// childProjection renders an embedded relation's inner projection list: each
// field child becomes an "<alias>.col"-qualified identifier; each
// relation/spread child recurses, contributing its own LATERAL join inline
// via a correlated subquery expression in the projection list. An empty or
// missing child list yields "<alias>.*".
func (b *Builder) childProjection(targetTable, alias string, children []*ast.SelectItem) (string, []string, error) {
	if len(children) == 0 {
		return sqlquote.Ident(alias) + ".*", nil, nil
	}

	var cols []string
	var tables []string
	for _, child := range children {
		switch child.Kind {
		case ast.SelectField:
			cols = append(cols, sqlquote.QualifiedColumn(alias, child))
		case ast.SelectRelation, ast.SelectSpread:
			nested, err := b.Build(targetTable, alias, child)
			if err != nil {
				return "", nil, err
			}
			// A nested embedding inside a derived-table projection list is
			// expressed as a correlated scalar subquery producing the same
			// JSON value the top-level LATERAL form would.
			cols = append(cols, nestedAsScalarSubquery(nested))
			tables = append(tables, nested.Tables...)
		}
	}
	return strings.Join(cols, ", "), tables, nil
}

func nestedAsScalarSubquery(e *Embedded) string {
	// e.Join is "LEFT JOIN LATERAL ( ... ) AS <alias>_agg ON true"; the
	// correlated scalar form is the parenthesized body itself.
	start := strings.Index(e.Join, "(")
	end := strings.LastIndex(e.Join, ")")
	body := e.Join[start+1 : end]
	return "(" + strings.TrimSpace(body) + ") AS " + lastColumnAlias(e)
}

func lastColumnAlias(e *Embedded) string {
	col := e.Columns[len(e.Columns)-1]
	if idx := strings.LastIndex(col, " AS "); idx >= 0 {
		return col[idx+len(" AS "):]
	}
	return col
}

// outerColumns is the outer projection contributed by an embedded item. A
// relation contributes one column: "<alias>_agg.<alias> AS "<output>"",
// output being the user alias if present else the relation name, per
// §4.7/§8 property 7. A spread instead inlines its children as individual
// top-level columns extracted from the same JSON value.
func outerColumns(alias string, item *ast.SelectItem) []string {
	jsonRef := fmt.Sprintf("%s_agg.%s", alias, alias)

	if item.Kind != ast.SelectSpread {
		output := item.Name
		if item.Alias != "" {
			output = item.Alias
		}
		return []string{fmt.Sprintf("%s AS %s", jsonRef, sqlquote.Ident(output))}
	}

	if len(item.Children) == 0 {
		return nil
	}
	cols := make([]string, 0, len(item.Children))
	for _, child := range item.Children {
		if child.Kind != ast.SelectField {
			continue // nested relation/spread inside a spread is not flattened further
		}
		output := child.Name
		if child.Alias != "" {
			output = child.Alias
		}
		cols = append(cols, fmt.Sprintf("%s->>%s AS %s", jsonRef, sqlquote.Literal(child.Name), sqlquote.Ident(output)))
	}
	return cols
}

// joinConditionSQL pairs left/right column lists positionally into
// AND-joined, identifier-quoted equalities.
func joinConditionSQL(leftAlias string, leftCols []string, rightAlias string, rightCols []string) string {
	n := len(leftCols)
	if len(rightCols) < n {
		n = len(rightCols)
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, fmt.Sprintf("%s.%s = %s.%s",
			sqlquote.Ident(leftAlias), sqlquote.Ident(leftCols[i]),
			sqlquote.Ident(rightAlias), sqlquote.Ident(rightCols[i])))
	}
	return strings.Join(parts, " AND ")
}
