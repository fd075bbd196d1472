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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supabase/pgrestql/ast"
	"github.com/supabase/pgrestql/schemaintrospect"
)

func findEdge(t *testing.T, relationships map[string][]*ast.Relationship, sourceKey, target string) *ast.Relationship {
	t.Helper()
	for _, e := range relationships[sourceKey] {
		if e.TargetTable == target {
			return e
		}
	}
	require.Failf(t, "no edge found", "source=%s target=%s", sourceKey, target)
	return nil
}

func TestDeriveSchema_ManyToOneAndMirroredOneToMany(t *testing.T) {
	snap := &schemaintrospect.Snapshot{
		Columns: []schemaintrospect.ColumnRow{
			{Schema: "public", Table: "customers", Name: "id", DataType: "integer"},
			{Schema: "public", Table: "orders", Name: "id", DataType: "integer"},
			{Schema: "public", Table: "orders", Name: "customer_id", DataType: "integer"},
		},
		ForeignKeys: []schemaintrospect.ForeignKeyRow{
			{
				ConstraintName: "orders_customer_id_fkey",
				SourceSchema:   "public", SourceTable: "orders", SourceColumns: []string{"customer_id"},
				TargetSchema: "public", TargetTable: "customers", TargetColumns: []string{"id"},
			},
		},
		UniqueKeys: []schemaintrospect.UniqueKeyRow{
			{Schema: "public", Table: "customers", Columns: []string{"id"}},
			{Schema: "public", Table: "orders", Columns: []string{"id"}},
		},
	}

	tables, relationships := deriveSchema("public", snap)

	require.Contains(t, tables, "public.customers")
	require.Contains(t, tables, "public.orders")

	forward := findEdge(t, relationships, "public.orders", "customers")
	assert.Equal(t, ast.ManyToOne, forward.Cardinality)
	assert.Equal(t, []string{"customer_id"}, forward.SourceColumns)
	assert.Equal(t, []string{"id"}, forward.TargetColumns)

	reverse := findEdge(t, relationships, "public.customers", "orders")
	assert.Equal(t, ast.OneToMany, reverse.Cardinality)
}

func TestDeriveSchema_OneToOneWhenForeignKeyIsUniqueKey(t *testing.T) {
	snap := &schemaintrospect.Snapshot{
		ForeignKeys: []schemaintrospect.ForeignKeyRow{
			{
				ConstraintName: "profiles_user_id_fkey",
				SourceSchema:   "public", SourceTable: "profiles", SourceColumns: []string{"user_id"},
				TargetSchema: "public", TargetTable: "users", TargetColumns: []string{"id"},
			},
		},
		UniqueKeys: []schemaintrospect.UniqueKeyRow{
			{Schema: "public", Table: "profiles", Columns: []string{"user_id"}},
			{Schema: "public", Table: "users", Columns: []string{"id"}},
		},
	}

	_, relationships := deriveSchema("public", snap)

	forward := findEdge(t, relationships, "public.profiles", "users")
	assert.Equal(t, ast.OneToOne, forward.Cardinality)
	reverse := findEdge(t, relationships, "public.users", "profiles")
	assert.Equal(t, ast.OneToOne, reverse.Cardinality)
}

func TestDeriveSchema_ManyToManyViaJunctionTable(t *testing.T) {
	snap := &schemaintrospect.Snapshot{
		ForeignKeys: []schemaintrospect.ForeignKeyRow{
			{
				ConstraintName: "post_tags_post_id_fkey",
				SourceSchema:   "public", SourceTable: "post_tags", SourceColumns: []string{"post_id"},
				TargetSchema: "public", TargetTable: "posts", TargetColumns: []string{"id"},
			},
			{
				ConstraintName: "post_tags_tag_id_fkey",
				SourceSchema:   "public", SourceTable: "post_tags", SourceColumns: []string{"tag_id"},
				TargetSchema: "public", TargetTable: "tags", TargetColumns: []string{"id"},
			},
		},
		UniqueKeys: []schemaintrospect.UniqueKeyRow{
			{Schema: "public", Table: "post_tags", Columns: []string{"post_id", "tag_id"}},
			{Schema: "public", Table: "posts", Columns: []string{"id"}},
			{Schema: "public", Table: "tags", Columns: []string{"id"}},
		},
	}

	_, relationships := deriveSchema("public", snap)

	postsToTags := findEdge(t, relationships, "public.posts", "tags")
	require.NotNil(t, postsToTags.Junction)
	assert.Equal(t, ast.ManyToMany, postsToTags.Cardinality)
	assert.Equal(t, "public.post_tags", postsToTags.Junction.Schema+"."+postsToTags.Junction.Table)
	assert.Equal(t, []string{"post_id"}, postsToTags.Junction.SourceColumns)
	assert.Equal(t, []string{"tag_id"}, postsToTags.Junction.TargetColumns)

	tagsToPosts := findEdge(t, relationships, "public.tags", "posts")
	require.NotNil(t, tagsToPosts.Junction)
	assert.Equal(t, ast.ManyToMany, tagsToPosts.Cardinality)

	// The junction's own rows never appear as m2o edges under this table key.
	assert.Empty(t, relationships["public.post_tags"])
}

func TestDeriveSchema_FKPairSubsetOfLargerCompositeKeyIsNotAJunction(t *testing.T) {
	snap := &schemaintrospect.Snapshot{
		ForeignKeys: []schemaintrospect.ForeignKeyRow{
			{
				ConstraintName: "order_items_order_id_fkey",
				SourceSchema:   "public", SourceTable: "order_items", SourceColumns: []string{"order_id"},
				TargetSchema: "public", TargetTable: "orders", TargetColumns: []string{"id"},
			},
			{
				ConstraintName: "order_items_product_id_fkey",
				SourceSchema:   "public", SourceTable: "order_items", SourceColumns: []string{"product_id"},
				TargetSchema: "public", TargetTable: "products", TargetColumns: []string{"id"},
			},
		},
		UniqueKeys: []schemaintrospect.UniqueKeyRow{
			{Schema: "public", Table: "order_items", Columns: []string{"order_id", "product_id", "line_no"}},
			{Schema: "public", Table: "orders", Columns: []string{"id"}},
			{Schema: "public", Table: "products", Columns: []string{"id"}},
		},
	}

	_, relationships := deriveSchema("public", snap)

	// The FK pair's combined columns {order_id, product_id} are a strict
	// subset of the table's composite key, not a superset of it, so
	// order_items is not a junction: no m2m edge between orders and
	// products, and the ordinary m2o/o2m edges for order_items survive.
	for _, e := range relationships["public.orders"] {
		assert.NotEqual(t, "products", e.TargetTable)
	}
	for _, e := range relationships["public.products"] {
		assert.NotEqual(t, "orders", e.TargetTable)
	}

	forwardToOrders := findEdge(t, relationships, "public.order_items", "orders")
	assert.Equal(t, ast.ManyToOne, forwardToOrders.Cardinality)
	forwardToProducts := findEdge(t, relationships, "public.order_items", "products")
	assert.Equal(t, ast.ManyToOne, forwardToProducts.Cardinality)
}
