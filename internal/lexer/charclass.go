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

// Package lexer holds the small grammar primitives shared by the filter,
// select, and order sublanguage parsers: the identifier character class,
// JSON-path/cast field-expression parsing (with its permissive fallback),
// and quoted list-item splitting.
package lexer

// IsIdentChar reports whether r belongs to the strict identifier alphabet
// [A-Za-z0-9_].
func IsIdentChar(r byte) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// IsDigit reports whether r is an ASCII digit.
func IsDigit(r byte) bool {
	return r >= '0' && r <= '9'
}

// IsAllDigits reports whether s is non-empty and consists only of ASCII
// digits, i.e. it is a candidate JSON array index.
func IsAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsDigit(s[i]) {
			return false
		}
	}
	return true
}
