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

package selectparser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supabase/pgrestql/ast"
)

func TestParse_EmptyValueYieldsNilList(t *testing.T) {
	items, err := Parse("")
	require.NoError(t, err)
	assert.Nil(t, items)
}

func TestParse_PlainFieldList(t *testing.T) {
	items, err := Parse("id,name")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, ast.SelectField, items[0].Kind)
	assert.Equal(t, "id", items[0].Name)
	assert.Equal(t, "name", items[1].Name)
}

func TestParse_AliasedField(t *testing.T) {
	items, err := Parse("user_id:id")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "user_id", items[0].Alias)
	assert.Equal(t, "id", items[0].Name)
}

func TestParse_CastThenAlias(t *testing.T) {
	items, err := Parse("age::text:age_text")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "age_text", items[0].Alias)
	assert.Equal(t, "age", items[0].Name)
	assert.Equal(t, "text", items[0].Cast)
	assert.Equal(t, ast.HintCast, items[0].HintKind)
}

func TestParse_TrailingCommaAllowed(t *testing.T) {
	items, err := Parse("id,name,")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestParse_RelationWithChildren(t *testing.T) {
	items, err := Parse("orders(id,status)")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, ast.SelectRelation, items[0].Kind)
	assert.Equal(t, "orders", items[0].Name)
	require.Len(t, items[0].Children, 2)
	assert.Equal(t, "id", items[0].Children[0].Name)
}

func TestParse_RelationWithHintAndAlias(t *testing.T) {
	items, err := Parse("o:orders!orders_customer_id_fkey(id)")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "o", items[0].Alias)
	assert.Equal(t, "orders", items[0].Name)
	assert.Equal(t, "orders_customer_id_fkey", items[0].RelHint)
}

func TestParse_SpreadItem(t *testing.T) {
	items, err := Parse("...customers(id,name)")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, ast.SelectSpread, items[0].Kind)
	assert.Equal(t, "customers", items[0].Name)
}

func TestParse_NestedRelations(t *testing.T) {
	items, err := Parse("orders(id,items(sku))")
	require.NoError(t, err)
	require.Len(t, items, 1)
	orders := items[0]
	require.Len(t, orders.Children, 2)
	nested := orders.Children[1]
	assert.Equal(t, ast.SelectRelation, nested.Kind)
	assert.Equal(t, "items", nested.Name)
	require.Len(t, nested.Children, 1)
	assert.Equal(t, "sku", nested.Children[0].Name)
}

func TestParse_JSONPathField(t *testing.T) {
	items, err := Parse("data->>name")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "data", items[0].Name)
	assert.Equal(t, ast.HintJSONPath, items[0].HintKind)
}

func TestParse_UnclosedRelationParenErrors(t *testing.T) {
	_, err := Parse("orders(id,status")
	require.Error(t, err)
}

func TestParse_DoubleCommaErrors(t *testing.T) {
	_, err := Parse("id,,name")
	require.Error(t, err)
}

func TestParse_TrailingGarbageErrors(t *testing.T) {
	_, err := Parse("id)")
	require.Error(t, err)
}

func TestParse_FullTreeShape(t *testing.T) {
	items, err := Parse("id,amount::numeric:total,orders(id,...customers(name))")
	require.NoError(t, err)

	want := []*ast.SelectItem{
		{Kind: ast.SelectField, Name: "id"},
		{Kind: ast.SelectField, Name: "amount", Alias: "total", Cast: "numeric", HintKind: ast.HintCast},
		{Kind: ast.SelectRelation, Name: "orders", Children: []*ast.SelectItem{
			{Kind: ast.SelectField, Name: "id"},
			{Kind: ast.SelectSpread, Name: "customers", Children: []*ast.SelectItem{
				{Kind: ast.SelectField, Name: "name"},
			}},
		}},
	}

	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("parsed select tree mismatch (-want +got):\n%s", diff)
	}
}
