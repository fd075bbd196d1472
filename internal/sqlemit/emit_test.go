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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supabase/pgrestql/ast"
	"github.com/supabase/pgrestql/internal/relation"
	"github.com/supabase/pgrestql/querr"
)

func intPtr(n int) *int { return &n }

// fakeLookup satisfies relation.Lookup with a single fixed customers->orders
// one-to-many relationship, enough to exercise Emit's relation-embedding
// path without depending on the relation package's own test fixtures.
type fakeLookup struct{}

func (fakeLookup) FindRelationship(tenant, schema, source, target string) (*ast.Relationship, error) {
	if source == "customers" && target == "orders" {
		return &ast.Relationship{
			SourceSchema: "public", SourceTable: "customers", SourceColumns: []string{"id"},
			TargetSchema: "public", TargetTable: "orders", TargetColumns: []string{"customer_id"},
			Cardinality: ast.OneToMany,
		}, nil
	}
	return nil, querr.RelationshipNotFound(target)
}

func (f fakeLookup) FindRelationshipWithHint(tenant, schema, source, target, hint string) (*ast.Relationship, error) {
	return f.FindRelationship(tenant, schema, source, target)
}

func TestEmit_NoFilterProjectsStar(t *testing.T) {
	params := &ast.ParsedParams{}
	result, err := Emit("public", "customers", params, nil)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "customers".* FROM "public"."customers" AS "customers"`, result.SQL)
	assert.Empty(t, result.Params)
	assert.Equal(t, []string{"public.customers"}, result.Tables)
}

func TestEmit_SingleFilterAndSelectList(t *testing.T) {
	params := &ast.ParsedParams{
		Select: []*ast.SelectItem{
			{Kind: ast.SelectField, Name: "id"},
			{Kind: ast.SelectField, Name: "name"},
		},
		Filters: []ast.Condition{
			&ast.Filter{Field: ast.Field{Name: "category"}, Op: ast.OpEq, Scalar: "books"},
		},
	}
	result, err := Emit("public", "products", params, nil)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "id", "name" FROM "public"."products" AS "products" WHERE "category" = $1`,
		result.SQL)
	assert.Equal(t, []any{"books"}, result.Params)
}

func TestEmit_MultipleTopLevelFiltersAreANDed(t *testing.T) {
	params := &ast.ParsedParams{
		Filters: []ast.Condition{
			&ast.Filter{Field: ast.Field{Name: "category"}, Op: ast.OpEq, Scalar: "books"},
			&ast.Filter{Field: ast.Field{Name: "price"}, Op: ast.OpLt, Scalar: "20"},
		},
	}
	result, err := Emit("public", "products", params, nil)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "products".* FROM "public"."products" AS "products" WHERE "category" = $1 AND "price" < $2`,
		result.SQL)
	assert.Equal(t, []any{"books", int64(20)}, result.Params)
}

func TestEmit_LogicTreeBesideFilterGetsItsOwnParens(t *testing.T) {
	params := &ast.ParsedParams{
		Filters: []ast.Condition{
			&ast.Filter{Field: ast.Field{Name: "category"}, Op: ast.OpEq, Scalar: "books"},
			&ast.LogicTree{
				Op: ast.LogicOr,
				Conditions: []ast.Condition{
					&ast.Filter{Field: ast.Field{Name: "price"}, Op: ast.OpLt, Scalar: "20"},
					&ast.Filter{Field: ast.Field{Name: "stock"}, Op: ast.OpGt, Scalar: "0"},
				},
			},
		},
	}
	result, err := Emit("public", "products", params, nil)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "products".* FROM "public"."products" AS "products" WHERE "category" = $1 AND ("price" < $2 OR "stock" > $3)`,
		result.SQL)
}

func TestEmit_NegatedLogicTree(t *testing.T) {
	params := &ast.ParsedParams{
		Filters: []ast.Condition{
			&ast.LogicTree{
				Op:      ast.LogicAnd,
				Negated: true,
				Conditions: []ast.Condition{
					&ast.Filter{Field: ast.Field{Name: "a"}, Op: ast.OpEq, Scalar: "1"},
					&ast.Filter{Field: ast.Field{Name: "b"}, Op: ast.OpEq, Scalar: "2"},
				},
			},
		},
	}
	result, err := Emit("public", "t", params, nil)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "t".* FROM "public"."t" AS "t" WHERE NOT ("a" = $1 AND "b" = $2)`,
		result.SQL)
}

func TestEmit_OrderAndLimitOffset(t *testing.T) {
	params := &ast.ParsedParams{
		Order: []ast.OrderTerm{
			{Field: ast.Field{Name: "name"}, Direction: ast.Asc},
			{Field: ast.Field{Name: "age"}, Direction: ast.Desc, Nulls: ast.NullsLast},
		},
		Limit:  intPtr(10),
		Offset: intPtr(5),
	}
	result, err := Emit("public", "people", params, nil)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "people".* FROM "public"."people" AS "people" ORDER BY "name" ASC, "age" DESC NULLS LAST LIMIT $1 OFFSET $2`,
		result.SQL)
	assert.Equal(t, []any{int64(10), int64(5)}, result.Params)
}

func TestEmit_RelationWithoutBuilderIsRelationalNotFound(t *testing.T) {
	params := &ast.ParsedParams{
		Select: []*ast.SelectItem{
			{Kind: ast.SelectRelation, Name: "orders"},
		},
	}
	_, err := Emit("public", "customers", params, nil)
	require.Error(t, err)
}

func TestEmit_EmbeddedRelationJoinsAndProjectsJSON(t *testing.T) {
	b := relation.NewBuilder(fakeLookup{}, "t1", "public")
	params := &ast.ParsedParams{
		Select: []*ast.SelectItem{
			{Kind: ast.SelectField, Name: "id"},
			{Kind: ast.SelectRelation, Name: "orders", Children: []*ast.SelectItem{
				{Kind: ast.SelectField, Name: "id"},
			}},
		},
	}
	result, err := Emit("public", "customers", params, b)
	require.NoError(t, err)
	assert.Contains(t, result.SQL, `SELECT "id", orders_0_agg.orders_0 AS "orders" FROM "public"."customers" AS "customers"`)
	assert.Contains(t, result.SQL, "LEFT JOIN LATERAL")
	assert.Contains(t, result.Tables, "public.orders")
}

func TestEmitFilterClause_NoSelectSurroundsNothing(t *testing.T) {
	conditions := []ast.Condition{
		&ast.Filter{Field: ast.Field{Name: "status"}, Op: ast.OpEq, Scalar: "active"},
	}
	clause, params, err := EmitFilterClause(conditions)
	require.NoError(t, err)
	assert.Equal(t, `"status" = $1`, clause)
	assert.Equal(t, []any{"active"}, params)
}
