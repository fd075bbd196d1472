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

// Package querr defines the structured error taxonomy shared across the
// query-string compiler's stages. Every error the compiler returns is a
// *querr.Error so callers can branch on Kind without parsing message text,
// while the message text itself remains the literal, user-facing string
// documented by the compiler's error taxonomy.
package querr

import "fmt"

// Kind classifies an Error into one of the three taxonomy buckets.
type Kind int

const (
	// InputFormat covers malformed query-string syntax: bad operators,
	// unbalanced parens, invalid field names, and the like.
	InputFormat Kind = iota
	// Semantic covers otherwise well-formed input that violates a rule,
	// such as a negative limit or a quantifier on an operator that
	// doesn't support one.
	Semantic
	// Relational covers failures resolving an embedded relation against
	// the schema cache.
	Relational
)

// Error is the structured error value returned by every stage of the
// compiler. Its Error() text is considered part of the interface: the
// literal strings it produces for known failure modes are documented
// alongside each constructor below.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Input-format errors (§4.1, §4.2, §4.3, §4.4, §7).

func MissingOperatorOrValue() *Error { return newf(InputFormat, "missing operator or value") }

func UnknownOperator(name string) *Error { return newf(InputFormat, "unknown operator: %s", name) }

func FieldMustBeString() *Error { return newf(InputFormat, "field must be a string") }

func InvalidJSONPathSyntax() *Error { return newf(InputFormat, "invalid JSON path syntax") }

func ExpectedListFormat() *Error {
	return newf(InputFormat, "expected list format: (item1,item2,…)")
}

func UnclosedParenthesis() *Error { return newf(InputFormat, "unclosed parenthesis") }

func UnexpectedClosingParenthesis() *Error {
	return newf(InputFormat, "unexpected closing parenthesis")
}

func UnexpectedToken(tok string) *Error { return newf(InputFormat, "unexpected token: %s", tok) }

func EmptyFieldName() *Error { return newf(InputFormat, "empty field name") }

func InvalidFieldName(name string) *Error {
	return newf(InputFormat, "invalid field name: %s", name)
}

func LogicExpressionMustBeParenthesized() *Error {
	return newf(InputFormat, "logic expression must be wrapped in parentheses")
}

func InvalidNestedLogic(key string) *Error {
	return newf(InputFormat, "invalid nested logic: %s", key)
}

func InvalidFilterFormat(cond string) *Error {
	return newf(InputFormat, "invalid filter format: %s", cond)
}

func InvalidOrderOptions(term string) *Error {
	return newf(InputFormat, "invalid order options: %s", term)
}

func UnclosedParenthesisInLogicExpression() *Error {
	return newf(InputFormat, "unclosed parenthesis in logic expression")
}

// Semantic errors (§7).

func LimitMustBeNonNegativeInteger() *Error {
	return newf(Semantic, "limit must be a non-negative integer")
}

func OffsetMustBeNonNegativeInteger() *Error {
	return newf(Semantic, "offset must be a non-negative integer")
}

func OperatorDoesNotSupportQuantifiers(op string) *Error {
	return newf(Semantic, "operator %s does not support quantifiers", op)
}

// Relational errors (§4.7, §7).

func RelationshipNotFound(name string) *Error {
	return newf(Relational, "relationship '%s' not found", name)
}

func RelationshipAmbiguous(name string) *Error {
	return newf(Relational, "relationship '%s' is ambiguous, use hint", name)
}
