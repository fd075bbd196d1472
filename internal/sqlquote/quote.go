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

// Package sqlquote holds the identifier/literal quoting and scalar-coercion
// primitives shared by the SQL emitter and the relation builder, kept
// separate from both so that neither has to import the other just to reach
// these leaf helpers.
package sqlquote

import (
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/spf13/cast"

	"github.com/supabase/pgrestql/ast"
)

// Ident wraps name in double quotes, doubling any embedded double quote.
func Ident(name string) string {
	return pq.QuoteIdentifier(name)
}

// Literal wraps s as a single-quoted SQL literal, for the handful of places
// (FTS language names, JSON path keys, spread child keys) where a value is
// SQL-quoted in-line rather than bound as a parameter.
func Literal(s string) string {
	return pq.QuoteLiteral(s)
}

// CoerceScalar converts a filter's string payload into the Go value that
// should be bound as its parameter: integer-parseable strings become an
// int64, decimal-parseable strings become a float64, anything else is kept
// as the original string.
func CoerceScalar(s string) any {
	if n, err := cast.ToInt64E(s); err == nil && strconv.FormatInt(n, 10) == s {
		return n
	}
	if f, err := cast.ToFloat64E(s); err == nil && looksDecimal(s) {
		return f
	}
	return s
}

// looksDecimal reports whether s is plain fixed-point decimal notation
// (optional leading '-', digits, optional '.', digits) -- never scientific
// notation, and never an integer part with a leading zero such as "007".
func looksDecimal(s string) bool {
	t := s
	if strings.HasPrefix(t, "-") {
		t = t[1:]
	}
	if t == "" {
		return false
	}
	dot := strings.IndexByte(t, '.')
	intPart := t
	if dot >= 0 {
		intPart = t[:dot]
	}
	if len(intPart) > 1 && intPart[0] == '0' {
		return false
	}
	if dot < 0 {
		return isAllDigits(t)
	}
	return isAllDigits(t[:dot]) && isAllDigits(t[dot+1:]) && t[dot+1:] != ""
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// QualifiedColumn renders a field-kind SelectItem as an "<alias>.col"
// identifier, qualified against a relation's join alias rather than the
// query's base table, per §4.7's child-projection rule. Relation/spread
// children are not valid here; the relation builder resolves those
// recursively instead of qualifying them as plain columns.
func QualifiedColumn(alias string, item *ast.SelectItem) string {
	base := Ident(alias) + "." + Ident(item.Name)
	switch item.HintKind {
	case ast.HintCast:
		base += "::" + item.Cast
	case ast.HintJSONPath, ast.HintJSONPathCast:
		for _, step := range item.Path {
			switch step.Kind {
			case ast.Arrow:
				base += "->" + Literal(step.Key)
			case ast.DoubleArrow:
				base += "->>" + Literal(step.Key)
			case ast.ArrayIndex:
				base += "->" + strconv.Itoa(step.Index)
			}
		}
		if item.HintKind == ast.HintJSONPathCast {
			base += "::" + item.Cast
		}
	}
	if item.Alias != "" {
		return base + " AS " + Ident(item.Alias)
	}
	return base
}

// ListParam coerces a list filter's items the same way CoerceScalar coerces
// a single value, then packs the whole list into one array-shaped
// parameter: all-integer-parseable items become an int64 array,
// all-decimal-parseable items become a float64 array, anything else (or a
// mix) stays a string array.
func ListParam(items []string) any {
	ints := make([]int64, 0, len(items))
	allInt := true
	for _, s := range items {
		n, err := cast.ToInt64E(s)
		if err != nil || strconv.FormatInt(n, 10) != s {
			allInt = false
			break
		}
		ints = append(ints, n)
	}
	if allInt {
		return pq.Int64Array(ints)
	}

	floats := make([]float64, 0, len(items))
	allFloat := true
	for _, s := range items {
		f, err := cast.ToFloat64E(s)
		if err != nil || !looksDecimal(s) {
			allFloat = false
			break
		}
		floats = append(floats, f)
	}
	if allFloat {
		return pq.Float64Array(floats)
	}

	return pq.StringArray(items)
}
