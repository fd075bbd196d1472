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
	"strings"

	"github.com/supabase/pgrestql/querr"
)

// ParseDelimitedList parses a payload of the form "<open>item,item,…<close>"
// (e.g. "(a,b,c)" or "{a,b,c}") into its items. Items are comma-split,
// trimmed, and may be double-quoted with \" escaping an embedded quote. An
// empty list ("()" or "{}") yields a single empty-string item, matching the
// source grammar's treatment of an empty payload.
func ParseDelimitedList(payload string, open, close byte) ([]string, error) {
	if len(payload) < 2 || payload[0] != open || payload[len(payload)-1] != close {
		return nil, querr.ExpectedListFormat()
	}
	inner := payload[1 : len(payload)-1]
	if inner == "" {
		return []string{""}, nil
	}

	raw := splitUnquotedComma(inner)
	items := make([]string, 0, len(raw))
	for _, r := range raw {
		items = append(items, unquoteItem(strings.TrimSpace(r)))
	}
	return items, nil
}

// splitUnquotedComma splits s on commas that are not inside a double-quoted
// span. A backslash immediately before a quote escapes it.
func splitUnquotedComma(s string) []string {
	var parts []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && s[i+1] == '"':
			cur.WriteByte(c)
			cur.WriteByte(s[i+1])
			i++
		case c == '"':
			inQuote = !inQuote
			cur.WriteByte(c)
		case c == ',' && !inQuote:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	parts = append(parts, cur.String())
	return parts
}

// unquoteItem strips a surrounding pair of double quotes and unescapes \"
// to " when the item is quoted; otherwise it is returned unchanged.
func unquoteItem(item string) string {
	if len(item) >= 2 && item[0] == '"' && item[len(item)-1] == '"' {
		inner := item[1 : len(item)-1]
		return strings.ReplaceAll(inner, `\"`, `"`)
	}
	return item
}
