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

package orderparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supabase/pgrestql/ast"
)

func TestParse_EmptyValueYieldsNilTerms(t *testing.T) {
	terms, err := Parse("")
	require.NoError(t, err)
	assert.Nil(t, terms)
}

func TestParse_PlainFieldDefaultsAscending(t *testing.T) {
	terms, err := Parse("name")
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "name", terms[0].Field.Name)
	assert.Equal(t, ast.Asc, terms[0].Direction)
	assert.Equal(t, ast.NullsDefault, terms[0].Nulls)
}

func TestParse_DirectionOnly(t *testing.T) {
	terms, err := Parse("age.desc")
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, ast.Desc, terms[0].Direction)
}

func TestParse_NullsOptionOnlyDefaultsDirectionAscending(t *testing.T) {
	terms, err := Parse("age.nullslast")
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, ast.Asc, terms[0].Direction)
	assert.Equal(t, ast.NullsLast, terms[0].Nulls)
}

func TestParse_DirectionThenNulls(t *testing.T) {
	terms, err := Parse("age.desc.nullsfirst")
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, ast.Desc, terms[0].Direction)
	assert.Equal(t, ast.NullsFirst, terms[0].Nulls)
}

func TestParse_MultipleTerms(t *testing.T) {
	terms, err := Parse("name.asc,age.desc.nullslast")
	require.NoError(t, err)
	require.Len(t, terms, 2)
	assert.Equal(t, "name", terms[0].Field.Name)
	assert.Equal(t, "age", terms[1].Field.Name)
	assert.Equal(t, ast.NullsLast, terms[1].Nulls)
}

func TestParse_CastIsIgnored(t *testing.T) {
	terms, err := Parse("age::text.desc")
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "", terms[0].Field.Cast)
	assert.Equal(t, ast.Desc, terms[0].Direction)
}

func TestParse_EmptyTermErrors(t *testing.T) {
	_, err := Parse("name,,age")
	require.Error(t, err)
}
