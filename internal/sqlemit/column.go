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
	"strconv"
	"strings"

	"github.com/supabase/pgrestql/ast"
	"github.com/supabase/pgrestql/internal/sqlquote"
)

// FieldColumnSQL renders a single field-kind SelectItem into its output
// column expression, per §4.6's column-emission table.
func FieldColumnSQL(item *ast.SelectItem) string {
	var expr string
	switch item.HintKind {
	case ast.HintNone:
		expr = fieldBase(item.Name)
	case ast.HintCast:
		expr = fieldBase(item.Name) + "::" + item.Cast
	case ast.HintJSONPath:
		expr = jsonPathSQL(item.Name, item.Path)
	case ast.HintJSONPathCast:
		expr = jsonPathSQL(item.Name, item.Path) + "::" + item.Cast
	}
	if item.Alias != "" {
		return expr + " AS " + sqlquote.Ident(item.Alias)
	}
	return expr
}

func jsonPathSQL(name string, path []ast.PathStep) string {
	var b strings.Builder
	b.WriteString(fieldBase(name))
	for _, step := range path {
		switch step.Kind {
		case ast.Arrow:
			b.WriteString("->")
			b.WriteString(sqlquote.Literal(step.Key))
		case ast.DoubleArrow:
			b.WriteString("->>")
			b.WriteString(sqlquote.Literal(step.Key))
		case ast.ArrayIndex:
			b.WriteString("->")
			b.WriteString(strconv.Itoa(step.Index))
		}
	}
	return b.String()
}
