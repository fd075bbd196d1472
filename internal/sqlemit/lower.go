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
	"fmt"
	"strings"

	"github.com/supabase/pgrestql/ast"
	"github.com/supabase/pgrestql/internal/sqlquote"
	"github.com/supabase/pgrestql/querr"
)

// binaryForms maps a comparison/pattern/range/set operator to its positive
// and negated SQL infix, per the §4.6.1 lowering table.
var binaryForms = map[ast.Operator][2]string{
	ast.OpEq:    {"=", "<>"},
	ast.OpNeq:   {"<>", "="},
	ast.OpGt:    {">", "<="},
	ast.OpGte:   {">=", "<"},
	ast.OpLt:    {"<", ">="},
	ast.OpLte:   {"<=", ">"},
	ast.OpLike:  {"LIKE", "NOT LIKE"},
	ast.OpIlike: {"ILIKE", "NOT ILIKE"},
	ast.OpMatch: {"~", "!~"},
	ast.OpImatch: {"~*", "!~*"},
	ast.OpCs:  {"@>", "@>"},
	ast.OpCd:  {"<@", "<@"},
	ast.OpSl:  {"<<", "<<"},
	ast.OpSr:  {">>", ">>"},
	ast.OpNxl: {"&<", "&<"},
	ast.OpNxr: {"&>", "&>"},
	ast.OpAdj: {"-|-", "-|-"},
}

// prefixNegated is the set of operators whose negated form is "NOT <positive
// form>" rather than a distinct infix token.
var prefixNegated = map[ast.Operator]bool{
	ast.OpCs: true, ast.OpCd: true,
	ast.OpSl: true, ast.OpSr: true, ast.OpNxl: true, ast.OpNxr: true, ast.OpAdj: true,
}

// ftsFuncs maps the four FTS operators to their PostgreSQL tsquery
// constructor.
var ftsFuncs = map[ast.Operator]string{
	ast.OpFts:   "to_tsquery",
	ast.OpPlfts: "plainto_tsquery",
	ast.OpPhfts: "phraseto_tsquery",
	ast.OpWfts:  "websearch_to_tsquery",
}

// isForms maps each is-payload to its positive and negated SQL suffix.
var isForms = map[string][2]string{
	"null":     {"IS NULL", "IS NOT NULL"},
	"not_null": {"IS NOT NULL", "IS NULL"},
	"true":     {"IS TRUE", "IS NOT TRUE"},
	"false":    {"IS FALSE", "IS NOT FALSE"},
	"unknown":  {"IS UNKNOWN", "IS NOT UNKNOWN"},
}

// LowerFilter renders f's SQL condition against fieldSQL (the already-lowered
// field expression, e.g. `"name"` or `"data"->>'key'`), appending parameters
// to bind via addParam and returning the rendered condition text.
//
// addParam is called at most once per Filter (scalar and list filters both
// bind a single parameter; "is" and quantified-scalar forms bind none or one
// respectively) and must return the "$n" placeholder text to splice in.
func LowerFilter(f *ast.Filter, fieldSQL string, addParam func(value any) string) (string, error) {
	if f.Op == ast.OpIs {
		forms, ok := isForms[f.Scalar]
		if !ok {
			return "", querr.InvalidFilterFormat(f.Scalar)
		}
		suffix := forms[0]
		if f.Negated {
			suffix = forms[1]
		}
		return fieldSQL + " " + suffix, nil
	}

	if fn, ok := ftsFuncs[f.Op]; ok {
		placeholder := addParam(sqlquote.CoerceScalar(f.Scalar))
		arg := placeholder
		if f.FTSLanguage != "" {
			arg = sqlquote.Literal(f.FTSLanguage) + ", " + placeholder
		}
		expr := fmt.Sprintf("%s @@ %s(%s)", fieldSQL, fn, arg)
		if f.Negated {
			expr = "NOT " + expr
		}
		return expr, nil
	}

	if f.Op == ast.OpIn {
		placeholder := addParam(sqlquote.ListParam(f.List))
		expr := fmt.Sprintf("%s = ANY(%s)", fieldSQL, placeholder)
		if f.Negated {
			expr = fmt.Sprintf("%s NOT = ANY(%s)", fieldSQL, placeholder)
		}
		return expr, nil
	}

	if f.Op == ast.OpOv {
		placeholder := addParam(sqlquote.ListParam(f.List))
		expr := fmt.Sprintf("%s && %s", fieldSQL, placeholder)
		if f.Negated {
			expr = "NOT " + expr
		}
		return expr, nil
	}

	forms, ok := binaryForms[f.Op]
	if !ok {
		return "", querr.UnknownOperator(string(f.Op))
	}

	if f.Quantifier != ast.QuantNone {
		placeholder := addParam(sqlquote.ListParam(f.List))
		quant := strings.ToUpper(string(f.Quantifier))
		op := forms[0]
		expr := fmt.Sprintf("%s %s %s(%s)", fieldSQL, op, quant, placeholder)
		if f.Negated {
			expr = "NOT " + expr
		}
		return expr, nil
	}

	op := forms[0]
	if f.Negated {
		op = forms[1]
	}
	placeholder := addParam(sqlquote.CoerceScalar(f.Scalar))
	expr := fmt.Sprintf("%s %s %s", fieldSQL, op, placeholder)
	if f.Negated && prefixNegated[f.Op] {
		expr = fmt.Sprintf("NOT %s %s %s", fieldSQL, op, placeholder)
	}
	return expr, nil
}

// LowerFieldSQL renders a Field as its SQL source expression: the quoted
// base column, any JSON path steps, and any cast.
func LowerFieldSQL(f ast.Field) string {
	var b strings.Builder
	b.WriteString(fieldBase(f.Name))
	for _, step := range f.Path {
		switch step.Kind {
		case ast.Arrow:
			b.WriteString("->")
			b.WriteString(sqlquote.Literal(step.Key))
		case ast.DoubleArrow:
			b.WriteString("->>")
			b.WriteString(sqlquote.Literal(step.Key))
		case ast.ArrayIndex:
			b.WriteString("->")
			fmt.Fprintf(&b, "%d", step.Index)
		}
	}
	if f.Cast != "" {
		b.WriteString("::")
		b.WriteString(f.Cast)
	}
	return b.String()
}

// fieldBase renders a field's base name: "*" unquoted, everything else
// identifier-quoted. A name containing "." (the permissive fallback's
// dotted-name case) is quoted as a single identifier, matching the source's
// treatment of such names as opaque column references rather than
// schema-qualified paths -- qualification is the caller's job via FROM/alias,
// not the field name itself.
func fieldBase(name string) string {
	if name == "*" {
		return "*"
	}
	return sqlquote.Ident(name)
}
