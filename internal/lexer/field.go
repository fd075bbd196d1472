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

package lexer

import (
	"strconv"
	"strings"

	"github.com/supabase/pgrestql/ast"
	"github.com/supabase/pgrestql/querr"
)

// ParseFieldExpr parses a field expression of the form
// "name(->|->>)*(cast)?". It tries the strict, character-class-limited
// grammar first; when that fails to consume the entire input it falls back
// to a permissive split so that names containing characters outside
// [A-Za-z0-9_] (e.g. "schema.table.column") are still preserved verbatim.
func ParseFieldExpr(key string) (ast.Field, error) {
	if key == "" {
		return ast.Field{}, querr.EmptyFieldName()
	}
	if f, ok := tryStrictField(key); ok {
		return f, nil
	}
	return tryPermissiveField(key)
}

func tryStrictField(key string) (ast.Field, bool) {
	pos := 0
	n := len(key)

	var name string
	if key[pos] == '*' {
		name = "*"
		pos++
	} else {
		start := pos
		for pos < n && IsIdentChar(key[pos]) {
			pos++
		}
		if pos == start {
			return ast.Field{}, false
		}
		name = key[start:pos]
	}

	var steps []ast.PathStep
	for pos < n {
		switch {
		case strings.HasPrefix(key[pos:], "->>"):
			pos += 3
			seg, ok := readIdentRun(key, &pos)
			if !ok {
				return ast.Field{}, false
			}
			steps = append(steps, stepFor(ast.DoubleArrow, seg))
		case strings.HasPrefix(key[pos:], "->"):
			pos += 2
			seg, ok := readIdentRun(key, &pos)
			if !ok {
				return ast.Field{}, false
			}
			steps = append(steps, stepFor(ast.Arrow, seg))
		default:
			goto afterSteps
		}
	}
afterSteps:

	var cast string
	if pos < n && strings.HasPrefix(key[pos:], "::") {
		pos += 2
		start := pos
		for pos < n && IsIdentChar(key[pos]) {
			pos++
		}
		if pos == start {
			return ast.Field{}, false
		}
		cast = key[start:pos]
	}

	if pos != n {
		return ast.Field{}, false
	}
	return ast.Field{Name: name, Path: steps, Cast: cast}, true
}

func readIdentRun(s string, pos *int) (string, bool) {
	start := *pos
	for *pos < len(s) && IsIdentChar(s[*pos]) {
		*pos++
	}
	if *pos == start {
		return "", false
	}
	return s[start:*pos], true
}

func stepFor(kind ast.StepKind, seg string) ast.PathStep {
	if IsAllDigits(seg) {
		idx, _ := strconv.Atoi(seg)
		return ast.PathStep{Kind: ast.ArrayIndex, Index: idx}
	}
	return ast.PathStep{Kind: kind, Key: seg}
}

// tryPermissiveField implements the fallback described in §4.1/§9: take the
// entire key up to the first "::" as the provisional base name, then
// re-extract JSON steps from that prefix by pairing consecutive "->"/"->>"
// tokens with their following segments. Whatever remains before the first
// arrow token (or the whole prefix, if none) is the base name, unrestricted
// by the strict identifier alphabet.
func tryPermissiveField(key string) (ast.Field, error) {
	pre := key
	cast := ""
	if idx := strings.Index(key, "::"); idx >= 0 {
		pre = key[:idx]
		cast = key[idx+2:]
	}
	if pre == "" {
		return ast.Field{}, querr.EmptyFieldName()
	}

	arrowAt := strings.Index(pre, "->")
	if arrowAt < 0 {
		return ast.Field{Name: pre, Cast: cast}, nil
	}

	base := pre[:arrowAt]
	if base == "" {
		return ast.Field{}, querr.EmptyFieldName()
	}

	var steps []ast.PathStep
	rest := pre[arrowAt:]
	pos := 0
	for pos < len(rest) {
		var kind ast.StepKind
		switch {
		case strings.HasPrefix(rest[pos:], "->>"):
			kind = ast.DoubleArrow
			pos += 3
		case strings.HasPrefix(rest[pos:], "->"):
			kind = ast.Arrow
			pos += 2
		default:
			return ast.Field{}, querr.InvalidJSONPathSyntax()
		}
		start := pos
		for pos < len(rest) && rest[pos] != '-' {
			pos++
		}
		seg := rest[start:pos]
		if seg == "" {
			return ast.Field{}, querr.InvalidJSONPathSyntax()
		}
		steps = append(steps, stepFor(kind, seg))
	}

	return ast.Field{Name: base, Path: steps, Cast: cast}, nil
}
