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

package pgrestql

import (
	"net/url"

	"github.com/supabase/pgrestql/ast"
	"github.com/supabase/pgrestql/internal/relation"
	"github.com/supabase/pgrestql/internal/sqlemit"
	"github.com/supabase/pgrestql/schemacache"
)

// Compiled is the result of emitting SQL from a ParsedParams: the statement
// text with positional placeholders, the parameters to bind in order, and
// every schema-qualified table the statement reads from.
type Compiled struct {
	SQL    string
	Params []any
	Tables []string
}

// ToSQL emits params against table without resolving any embedded
// relation/spread items. A params containing a relation or spread select
// item fails with a relational not_found error, since there is no schema
// cache to resolve it against.
func ToSQL(schema, table string, params *ast.ParsedParams) (*Compiled, error) {
	result, err := sqlemit.Emit(schema, table, params, nil)
	if err != nil {
		return nil, err
	}
	return &Compiled{SQL: result.SQL, Params: result.Params, Tables: result.Tables}, nil
}

// ToSQLWithRelations emits params against table, resolving any embedded
// relation/spread items against cache under tenant.
func ToSQLWithRelations(cache *schemacache.Cache, tenant, schema, table string, params *ast.ParsedParams) (*Compiled, error) {
	builder := relation.NewBuilder(cache, tenant, schema)
	result, err := sqlemit.Emit(schema, table, params, builder)
	if err != nil {
		return nil, err
	}
	return &Compiled{SQL: result.SQL, Params: result.Params, Tables: result.Tables}, nil
}

// QueryStringToSQL is the convenience composition of ParseQueryString and
// ToSQL.
func QueryStringToSQL(schema, table, qs string) (*Compiled, error) {
	params, err := ParseQueryString(qs)
	if err != nil {
		return nil, err
	}
	return ToSQL(schema, table, params)
}

// QueryStringToSQLWithRelations is the convenience composition of
// ParseQueryString and ToSQLWithRelations.
func QueryStringToSQLWithRelations(cache *schemacache.Cache, tenant, schema, table, qs string) (*Compiled, error) {
	params, err := ParseQueryString(qs)
	if err != nil {
		return nil, err
	}
	return ToSQLWithRelations(cache, tenant, schema, table, params)
}

// FilterClause is the result of BuildFilterClause: a WHERE-body expression
// with no surrounding SELECT, for embedding in a subscription/notification
// filter rather than a full query.
type FilterClause struct {
	Clause string
	Params []any
}

// BuildFilterClause emits just the WHERE-body expression pairs' filter/logic
// keys would produce, with no surrounding SELECT. Any select, order, limit,
// or offset key in pairs is parsed but silently has no effect on the
// result, since a subscription filter has no projection or pagination.
func BuildFilterClause(pairs url.Values) (*FilterClause, error) {
	params, err := ParseParams(pairs)
	if err != nil {
		return nil, err
	}
	clause, values, err := sqlemit.EmitFilterClause(params.Filters)
	if err != nil {
		return nil, err
	}
	return &FilterClause{Clause: clause, Params: values}, nil
}
