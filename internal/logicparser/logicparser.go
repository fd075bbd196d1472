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

// Package logicparser parses a boolean combinator expression rooted at a
// key of "and", "or", "not.and", or "not.or" into an *ast.LogicTree,
// recursing into filterparser for leaf conditions.
package logicparser

import (
	"strings"

	"github.com/supabase/pgrestql/ast"
	"github.com/supabase/pgrestql/internal/filterparser"
	"github.com/supabase/pgrestql/querr"
)

var nestedPrefixes = []string{"not.and(", "not.or(", "and(", "or("}

// Parse parses the value of a logic key into an *ast.LogicTree. value must
// be a parenthesized comma list of conditions.
func Parse(key, value string) (*ast.LogicTree, error) {
	negated, op, ok := rootOp(key)
	if !ok {
		return nil, querr.InvalidNestedLogic(key)
	}

	if len(value) < 2 || value[0] != '(' || value[len(value)-1] != ')' {
		return nil, querr.LogicExpressionMustBeParenthesized()
	}
	inner := value[1 : len(value)-1]

	rawConditions, err := splitTopLevel(inner)
	if err != nil {
		return nil, err
	}

	tree := &ast.LogicTree{Op: op, Negated: negated}
	for _, raw := range rawConditions {
		cond := strings.TrimSpace(raw)
		if subKey, ok := nestedLogicPrefix(cond); ok {
			subValue := cond[len(subKey):]
			child, err := Parse(subKey, subValue)
			if err != nil {
				return nil, err
			}
			tree.Conditions = append(tree.Conditions, child)
			continue
		}

		filter, err := parseConditionFilter(cond)
		if err != nil {
			return nil, err
		}
		tree.Conditions = append(tree.Conditions, filter)
	}

	return tree, nil
}

func rootOp(key string) (negated bool, op ast.LogicOp, ok bool) {
	switch key {
	case "and":
		return false, ast.LogicAnd, true
	case "or":
		return false, ast.LogicOr, true
	case "not.and":
		return true, ast.LogicAnd, true
	case "not.or":
		return true, ast.LogicOr, true
	default:
		return false, "", false
	}
}

// nestedLogicPrefix reports whether cond opens with one of the nested logic
// keys immediately followed by "(", returning the bare key.
func nestedLogicPrefix(cond string) (string, bool) {
	for _, p := range nestedPrefixes {
		if strings.HasPrefix(cond, p) {
			return strings.TrimSuffix(p, "("), true
		}
	}
	return "", false
}

// parseConditionFilter parses a leaf condition in either dot-notation
// ("field.op.value", including "field.not.op.value") or equals-notation
// ("field=op.value").
func parseConditionFilter(cond string) (*ast.Filter, error) {
	if idx := strings.IndexByte(cond, '='); idx >= 0 {
		return filterparser.Parse(cond[:idx], cond[idx+1:])
	}
	idx := strings.IndexByte(cond, '.')
	if idx < 0 {
		return nil, querr.InvalidFilterFormat(cond)
	}
	return filterparser.Parse(cond[:idx], cond[idx+1:])
}

// splitTopLevel splits s on commas that occur at paren/brace depth zero.
// Depth is tracked jointly across "(...)" and "{...}" spans so that a
// quantified-list payload embedded in a condition ("id.eq(any).{1,2,3}")
// does not fracture on its internal commas.
func splitTopLevel(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}

	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '{':
			depth++
		case ')', '}':
			depth--
			if depth < 0 {
				return nil, querr.UnexpectedClosingParenthesis()
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, querr.UnclosedParenthesisInLogicExpression()
	}
	parts = append(parts, s[start:])
	return parts, nil
}
