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

// Package pgrestql translates PostgREST-style URL query strings into
// parameterized SQL SELECT statements for PostgreSQL. See the package-level
// functions ParseQueryString, ToSQL, and ToSQLWithRelations for the three
// pipeline stages: decompose-and-dispatch, AST construction, and SQL
// emission.
package pgrestql

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/supabase/pgrestql/ast"
	"github.com/supabase/pgrestql/internal/filterparser"
	"github.com/supabase/pgrestql/internal/lexer"
	"github.com/supabase/pgrestql/internal/logicparser"
	"github.com/supabase/pgrestql/internal/orderparser"
	"github.com/supabase/pgrestql/internal/selectparser"
	"github.com/supabase/pgrestql/querr"
)

// ParseQueryString decodes qs as an application/x-www-form-urlencoded pair
// list and dispatches each key to the matching sublanguage parser. Pairs are
// separated by '&' only; a ';' is ordinary value text.
func ParseQueryString(qs string) (*ast.ParsedParams, error) {
	values := url.Values{}
	for qs != "" {
		var pair string
		pair, qs, _ = strings.Cut(qs, "&")
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, keyErr := url.QueryUnescape(rawKey)
		value, valueErr := url.QueryUnescape(rawValue)
		if keyErr != nil || valueErr != nil {
			return nil, querr.InvalidFilterFormat(pair)
		}
		values[key] = append(values[key], value)
	}
	return ParseParams(values)
}

// ParseParams dispatches each key of pairs to the matching sublanguage
// parser and assembles the resulting ParsedParams. Repeated keys are
// permitted: each occurrence of a filter key contributes its own Filter.
//
// Keys are visited in sorted order so that compilation is deterministic;
// the core does not otherwise attach meaning to query-string key order.
func ParseParams(pairs url.Values) (*ast.ParsedParams, error) {
	params := &ast.ParsedParams{}

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		values := pairs[key]

		switch {
		case key == "select":
			items, err := selectparser.Parse(firstValue(values))
			if err != nil {
				return nil, err
			}
			if items != nil {
				params.Select = items
			}

		case key == "order":
			order, err := orderparser.Parse(firstValue(values))
			if err != nil {
				return nil, err
			}
			params.Order = order

		case key == "limit":
			n, err := parseNonNegativeInt(firstValue(values), querr.LimitMustBeNonNegativeInteger())
			if err != nil {
				return nil, err
			}
			params.Limit = &n

		case key == "offset":
			n, err := parseNonNegativeInt(firstValue(values), querr.OffsetMustBeNonNegativeInteger())
			if err != nil {
				return nil, err
			}
			params.Offset = &n

		case filterparser.ReservedKey(key):
			// on_conflict and columns are recognized but have no parser
			// behavior in the core; see the design notes.

		case isLogicKey(key):
			for _, v := range values {
				tree, err := logicparser.Parse(key, v)
				if err != nil {
					return nil, err
				}
				params.Filters = append(params.Filters, tree)
			}

		default:
			for _, v := range values {
				f, err := filterparser.Parse(key, v)
				if err != nil {
					return nil, err
				}
				params.Filters = append(params.Filters, f)
			}
		}
	}

	return params, nil
}

func isLogicKey(key string) bool {
	switch key {
	case "and", "or", "not.and", "not.or":
		return true
	default:
		return false
	}
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// parseNonNegativeInt accepts only a plain, non-negative decimal integer
// string: no sign, no fractional or scientific notation.
func parseNonNegativeInt(s string, onError *querr.Error) (int, error) {
	if !lexer.IsAllDigits(s) {
		return 0, onError
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, onError
	}
	return n, nil
}
