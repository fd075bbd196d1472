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

package sqlemit

import (
	"fmt"
	"strings"

	"github.com/supabase/pgrestql/ast"
	"github.com/supabase/pgrestql/internal/relation"
	"github.com/supabase/pgrestql/internal/sqlquote"
	"github.com/supabase/pgrestql/querr"
)

// Result is a compiled statement: the SQL text with positional "$n"
// placeholders, the bound parameter values in order, and every
// schema-qualified table the statement touches (the base table first, then
// any embedded relation/junction tables in the order they were first
// encountered).
type Result struct {
	SQL    string
	Params []any
	Tables []string
}

// Emit lowers params against baseSchema/baseTable into a full SELECT
// statement. rels is nil when the request has no embedded relation/spread
// items; a nil rels with a params.Select entry of that kind is a
// caller error reported as a relational not_found, matching the behavior of
// looking a relationship up in an empty schema cache.
func Emit(baseSchema, baseTable string, params *ast.ParsedParams, rels *relation.Builder) (*Result, error) {
	var paramValues []any
	addParam := func(value any) string {
		paramValues = append(paramValues, value)
		return fmt.Sprintf("$%d", len(paramValues))
	}

	baseAlias := baseTable
	qualifiedBase := sqlquote.Ident(baseSchema) + "." + sqlquote.Ident(baseTable)

	projection, joins, err := buildProjection(baseTable, baseAlias, params.Select, rels)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(projection)
	b.WriteString(" FROM ")
	b.WriteString(qualifiedBase)
	b.WriteString(" AS ")
	b.WriteString(sqlquote.Ident(baseAlias))

	for _, join := range joins {
		b.WriteString(" ")
		b.WriteString(join)
	}

	if len(params.Filters) > 0 {
		clause, err := whereClauseSQL(params.Filters, addParam)
		if err != nil {
			return nil, err
		}
		b.WriteString(" WHERE ")
		b.WriteString(clause)
	}

	if len(params.Order) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(orderBySQL(params.Order))
	}

	if params.Limit != nil {
		fmt.Fprintf(&b, " LIMIT %s", addParam(int64(*params.Limit)))
	}
	if params.Offset != nil {
		fmt.Fprintf(&b, " OFFSET %s", addParam(int64(*params.Offset)))
	}

	tables := []string{baseSchema + "." + baseTable}
	if rels != nil {
		tables = append(tables, rels.Tables()...)
	}

	return &Result{SQL: b.String(), Params: paramValues, Tables: tables}, nil
}

// buildProjection renders the top-level select list and the LEFT JOIN
// LATERAL text for every relation/spread item in it. A nil items means "*"
// was requested implicitly.
func buildProjection(baseTable, baseAlias string, items []*ast.SelectItem, rels *relation.Builder) (string, []string, error) {
	if items == nil {
		return sqlquote.Ident(baseAlias) + ".*", nil, nil
	}
	if len(items) == 0 {
		return "", nil, nil
	}

	var cols []string
	var joins []string
	for _, item := range items {
		switch item.Kind {
		case ast.SelectField:
			cols = append(cols, FieldColumnSQL(item))
		case ast.SelectRelation, ast.SelectSpread:
			if rels == nil {
				return "", nil, querr.RelationshipNotFound(item.Name)
			}
			embedded, err := rels.Build(baseTable, baseAlias, item)
			if err != nil {
				return "", nil, err
			}
			cols = append(cols, embedded.Columns...)
			joins = append(joins, embedded.Join)
		}
	}
	return strings.Join(cols, ", "), joins, nil
}

// EmitFilterClause lowers a filter/logic condition list into a WHERE-body
// expression with no surrounding SELECT, for subscription-filter use.
func EmitFilterClause(conditions []ast.Condition) (string, []any, error) {
	var paramValues []any
	addParam := func(value any) string {
		paramValues = append(paramValues, value)
		return fmt.Sprintf("$%d", len(paramValues))
	}
	clause, err := whereClauseSQL(conditions, addParam)
	if err != nil {
		return "", nil, err
	}
	return clause, paramValues, nil
}

// whereClauseSQL lowers the top-level filter list, implicitly AND-combined
// per §4.3, into one WHERE-clause expression.
func whereClauseSQL(conditions []ast.Condition, addParam func(any) string) (string, error) {
	parts := make([]string, 0, len(conditions))
	for _, c := range conditions {
		part, err := conditionSQL(c, addParam)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return strings.Join(parts, " AND "), nil
}

func conditionSQL(c ast.Condition, addParam func(any) string) (string, error) {
	switch v := c.(type) {
	case *ast.Filter:
		fieldSQL := LowerFieldSQL(v.Field)
		return LowerFilter(v, fieldSQL, addParam)
	case *ast.LogicTree:
		return logicTreeSQL(v, addParam)
	default:
		return "", querr.UnexpectedToken(fmt.Sprintf("%T", v))
	}
}

func logicTreeSQL(tree *ast.LogicTree, addParam func(any) string) (string, error) {
	parts := make([]string, 0, len(tree.Conditions))
	for _, c := range tree.Conditions {
		part, err := conditionSQL(c, addParam)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	joiner := " AND "
	if tree.Op == ast.LogicOr {
		joiner = " OR "
	}
	inner := "(" + strings.Join(parts, joiner) + ")"
	if tree.Negated {
		inner = "NOT " + inner
	}
	return inner, nil
}

func orderBySQL(terms []ast.OrderTerm) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		part := LowerFieldSQL(t.Field)
		if t.Direction == ast.Desc {
			part += " DESC"
		} else {
			part += " ASC"
		}
		switch t.Nulls {
		case ast.NullsFirst:
			part += " NULLS FIRST"
		case ast.NullsLast:
			part += " NULLS LAST"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}
