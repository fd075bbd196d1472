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

// Package orderparser parses the "order" query-string value into an
// ordered list of *ast.OrderTerm.
package orderparser

import (
	"strings"

	"github.com/supabase/pgrestql/ast"
	"github.com/supabase/pgrestql/internal/lexer"
	"github.com/supabase/pgrestql/querr"
)

// Parse parses a comma-separated "order" value. Each term is
// "field[.direction][.nulls-option]"; direction and nulls-option may appear
// in either order when only one is present, but direction always precedes
// nulls-option when both are given.
func Parse(value string) ([]ast.OrderTerm, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	raw := strings.Split(value, ",")
	terms := make([]ast.OrderTerm, 0, len(raw))
	for _, r := range raw {
		term := strings.TrimSpace(r)
		if term == "" {
			return nil, querr.InvalidOrderOptions(value)
		}
		t, err := parseTerm(term)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}

func parseTerm(term string) (ast.OrderTerm, error) {
	segments := strings.Split(term, ".")
	direction, nulls, fieldSegs := splitSuffix(segments)

	fieldStr := strings.Join(fieldSegs, ".")
	if fieldStr == "" {
		return ast.OrderTerm{}, querr.EmptyFieldName()
	}

	field, err := lexer.ParseFieldExpr(fieldStr)
	if err != nil {
		return ast.OrderTerm{}, err
	}
	field.Cast = "" // casts are ignored for order terms

	return ast.OrderTerm{Field: field, Direction: direction, Nulls: nulls}, nil
}

// splitSuffix peels a trailing direction and/or nulls-option off segments,
// returning the remaining field segments unchanged.
func splitSuffix(segments []string) (ast.Direction, ast.NullsOption, []string) {
	n := len(segments)
	if n >= 2 {
		if d, ok := parseDirection(segments[n-2]); ok {
			if nu, ok2 := parseNulls(segments[n-1]); ok2 {
				return d, nu, segments[:n-2]
			}
		}
	}
	if n >= 1 {
		if d, ok := parseDirection(segments[n-1]); ok {
			return d, ast.NullsDefault, segments[:n-1]
		}
		if nu, ok := parseNulls(segments[n-1]); ok {
			return ast.Asc, nu, segments[:n-1]
		}
	}
	return ast.Asc, ast.NullsDefault, segments
}

func parseDirection(s string) (ast.Direction, bool) {
	switch s {
	case "asc":
		return ast.Asc, true
	case "desc":
		return ast.Desc, true
	default:
		return ast.Asc, false
	}
}

func parseNulls(s string) (ast.NullsOption, bool) {
	switch s {
	case "nullsfirst":
		return ast.NullsFirst, true
	case "nullslast":
		return ast.NullsLast, true
	default:
		return ast.NullsDefault, false
	}
}
