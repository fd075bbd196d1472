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

// Package ast defines the language-neutral abstract syntax tree produced by
// the query-string parsers and consumed by the SQL emitter. Every value in
// this package is immutable once constructed; callers never mutate a parsed
// tree in place, they build a fresh one.
package ast

// StepKind identifies the shape of a single JSON path step.
type StepKind int

const (
	// Arrow is the "->" step; it yields JSON.
	Arrow StepKind = iota
	// DoubleArrow is the "->>" step; it yields text.
	DoubleArrow
	// ArrayIndex is an integer array offset; it is always lowered with "->".
	ArrayIndex
)

// PathStep is one hop in a JSON path traversal.
type PathStep struct {
	Kind  StepKind
	Key   string // set when Kind is Arrow or DoubleArrow
	Index int    // set when Kind is ArrayIndex
}

// Field is a column reference, optionally walked through a JSON path and
// optionally cast to another type.
type Field struct {
	Name string
	Path []PathStep
	Cast string // empty when no cast was requested
}

// YieldsText reports whether the field's last path step produces text rather
// than JSON. A field with no path yields whatever its column type is.
func (f Field) YieldsText() bool {
	if len(f.Path) == 0 {
		return false
	}
	return f.Path[len(f.Path)-1].Kind == DoubleArrow
}

// Operator is one of the twenty-four closed-set comparison/pattern/set/FTS/
// range/null-test operators recognized by the filter grammar.
type Operator string

const (
	OpEq    Operator = "eq"
	OpNeq   Operator = "neq"
	OpGt    Operator = "gt"
	OpGte   Operator = "gte"
	OpLt    Operator = "lt"
	OpLte   Operator = "lte"
	OpLike  Operator = "like"
	OpIlike Operator = "ilike"
	OpMatch Operator = "match"
	OpImatch Operator = "imatch"
	OpIn    Operator = "in"
	OpCs    Operator = "cs"
	OpCd    Operator = "cd"
	OpOv    Operator = "ov"
	OpFts   Operator = "fts"
	OpPlfts Operator = "plfts"
	OpPhfts Operator = "phfts"
	OpWfts  Operator = "wfts"
	OpSl    Operator = "sl"
	OpSr    Operator = "sr"
	OpNxl   Operator = "nxl"
	OpNxr   Operator = "nxr"
	OpAdj   Operator = "adj"
	OpIs    Operator = "is"
)

// Quantifier is the "(any)"/"(all)" modifier on comparison and pattern
// operators.
type Quantifier string

const (
	QuantNone Quantifier = ""
	QuantAny  Quantifier = "any"
	QuantAll  Quantifier = "all"
)

// Filter is a single comparison against a Field.
type Filter struct {
	Field       Field
	Op          Operator
	Quantifier  Quantifier
	FTSLanguage string // non-empty only for fts|plfts|phfts|wfts
	Negated     bool

	// Value carries the filter's payload. IsList distinguishes a flat list
	// (in, ov, and quantified comparisons/patterns) from a scalar.
	Scalar string
	List   []string
	IsList bool
}

func (*Filter) isCondition() {}

// LogicOp is the boolean combinator of a LogicTree.
type LogicOp string

const (
	LogicAnd LogicOp = "and"
	LogicOr  LogicOp = "or"
)

// Condition is either a *Filter or a *LogicTree; it is the sum type used for
// LogicTree children.
type Condition interface {
	isCondition()
}

// LogicTree is a boolean combinator over an ordered list of conditions.
type LogicTree struct {
	Op         LogicOp
	Negated    bool
	Conditions []Condition
}

func (*LogicTree) isCondition() {}

// SelectItemKind discriminates the three shapes of SelectItem.
type SelectItemKind int

const (
	SelectField SelectItemKind = iota
	SelectRelation
	SelectSpread
)

// SelectHintKind discriminates how a field-kind SelectItem's source
// expression should be rendered.
type SelectHintKind int

const (
	HintNone SelectHintKind = iota
	HintCast
	HintJSONPath
	HintJSONPathCast
)

// SelectItem is one entry of a parsed select projection. Kind field has no
// children; relation and spread carry an ordered (possibly empty) list of
// children.
type SelectItem struct {
	Kind SelectItemKind

	// Name is the column name (field) or the related table name
	// (relation/spread).
	Name  string
	Alias string

	// HintKind/Path/Cast describe a field item's source expression.
	HintKind SelectHintKind
	Path     []PathStep
	Cast     string

	// RelHint is the disambiguation hint on a relation/spread item: a
	// join-kind keyword, a foreign-key constraint name, or a column name.
	RelHint string

	Children []*SelectItem
}

// Direction is the sort direction of an OrderTerm.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// NullsOption is the explicit NULLS FIRST/LAST placement of an OrderTerm.
type NullsOption int

const (
	NullsDefault NullsOption = iota
	NullsFirst
	NullsLast
)

// OrderTerm is one entry of a parsed ORDER BY list.
type OrderTerm struct {
	Field     Field
	Direction Direction
	Nulls     NullsOption
}

// ParsedParams is the root of the AST produced by the query-string
// decomposer. It is built exactly once per request and never mutated.
type ParsedParams struct {
	// Select is nil when the request did not specify "select" or gave it an
	// empty value (both meaning "*"); it is a non-empty slice otherwise.
	Select []*SelectItem

	Filters []Condition
	Order   []OrderTerm

	Limit  *int
	Offset *int
}
