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

// Package filterparser parses a single key/value pair of a PostgREST-style
// query string into an *ast.Filter.
package filterparser

import (
	"strings"

	"github.com/supabase/pgrestql/ast"
	"github.com/supabase/pgrestql/internal/lexer"
	"github.com/supabase/pgrestql/querr"
)

// validOperators is the closed set of twenty-four operators.
var validOperators = map[ast.Operator]bool{
	ast.OpEq: true, ast.OpNeq: true, ast.OpGt: true, ast.OpGte: true,
	ast.OpLt: true, ast.OpLte: true,
	ast.OpLike: true, ast.OpIlike: true, ast.OpMatch: true, ast.OpImatch: true,
	ast.OpIn: true, ast.OpCs: true, ast.OpCd: true, ast.OpOv: true,
	ast.OpFts: true, ast.OpPlfts: true, ast.OpPhfts: true, ast.OpWfts: true,
	ast.OpSl: true, ast.OpSr: true, ast.OpNxl: true, ast.OpNxr: true, ast.OpAdj: true,
	ast.OpIs: true,
}

// quantifiable is the set of operators a "(any)"/"(all)" modifier may attach
// to: comparisons and pattern operators.
var quantifiable = map[ast.Operator]bool{
	ast.OpEq: true, ast.OpNeq: true, ast.OpGt: true, ast.OpGte: true,
	ast.OpLt: true, ast.OpLte: true,
	ast.OpLike: true, ast.OpIlike: true, ast.OpMatch: true, ast.OpImatch: true,
}

var ftsOperators = map[ast.Operator]bool{
	ast.OpFts: true, ast.OpPlfts: true, ast.OpPhfts: true, ast.OpWfts: true,
}

var reservedKeys = map[string]bool{
	"select": true, "order": true, "limit": true, "offset": true,
	"on_conflict": true, "columns": true,
}

// ReservedKey reports whether key is one of the query-string keys the core
// recognizes outside the filter/logic grammars.
func ReservedKey(key string) bool {
	return reservedKeys[key]
}

// Parse parses a single key/value pair into an *ast.Filter. key is the
// field-side expression ("name(->|->>)*(cast)?"); value is
// "(not.)?op(modifier)?.<payload>".
func Parse(key, value string) (*ast.Filter, error) {
	field, err := lexer.ParseFieldExpr(key)
	if err != nil {
		return nil, err
	}

	negated := false
	rest := value
	if strings.HasPrefix(rest, "not.") {
		negated = true
		rest = rest[len("not."):]
	}

	i := 0
	for i < len(rest) && isLowerAlpha(rest[i]) {
		i++
	}
	if i == 0 {
		return nil, querr.MissingOperatorOrValue()
	}
	opName := rest[:i]
	op := ast.Operator(opName)
	if !validOperators[op] {
		return nil, querr.UnknownOperator(opName)
	}
	rest = rest[i:]

	var quant ast.Quantifier
	var ftsLang string
	if len(rest) > 0 && rest[0] == '(' {
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return nil, querr.UnclosedParenthesis()
		}
		modifier := rest[1:end]
		rest = rest[end+1:]

		switch modifier {
		case "any", "all":
			if !quantifiable[op] {
				return nil, querr.OperatorDoesNotSupportQuantifiers(opName)
			}
			quant = ast.Quantifier(modifier)
		default:
			if !ftsOperators[op] {
				return nil, querr.OperatorDoesNotSupportQuantifiers(opName)
			}
			if modifier == "" {
				return nil, querr.MissingOperatorOrValue()
			}
			ftsLang = modifier
		}
	}

	if len(rest) == 0 || rest[0] != '.' {
		return nil, querr.MissingOperatorOrValue()
	}
	payload := rest[1:]

	f := &ast.Filter{
		Field:       field,
		Op:          op,
		Quantifier:  quant,
		FTSLanguage: ftsLang,
		Negated:     negated,
	}

	switch {
	case op == ast.OpIn || op == ast.OpOv:
		items, err := lexer.ParseDelimitedList(payload, '(', ')')
		if err != nil {
			return nil, err
		}
		f.IsList = true
		f.List = items
	case quant != ast.QuantNone:
		items, err := lexer.ParseDelimitedList(payload, '{', '}')
		if err != nil {
			return nil, err
		}
		f.IsList = true
		f.List = items
	default:
		f.Scalar = payload
	}

	return f, nil
}

func isLowerAlpha(c byte) bool {
	return c >= 'a' && c <= 'z'
}
