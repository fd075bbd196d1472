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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDelimitedList_Plain(t *testing.T) {
	items, err := ParseDelimitedList("(1,2,3)", '(', ')')
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, items)
}

func TestParseDelimitedList_TrimsWhitespace(t *testing.T) {
	items, err := ParseDelimitedList("{a, b , c}", '{', '}')
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, items)
}

func TestParseDelimitedList_QuotedItemWithEmbeddedComma(t *testing.T) {
	items, err := ParseDelimitedList(`("a,b",c)`, '(', ')')
	require.NoError(t, err)
	assert.Equal(t, []string{"a,b", "c"}, items)
}

func TestParseDelimitedList_EscapedQuoteInsideQuotedItem(t *testing.T) {
	items, err := ParseDelimitedList(`("say \"hi\"",ok)`, '(', ')')
	require.NoError(t, err)
	assert.Equal(t, []string{`say "hi"`, "ok"}, items)
}

func TestParseDelimitedList_Empty(t *testing.T) {
	items, err := ParseDelimitedList("()", '(', ')')
	require.NoError(t, err)
	assert.Equal(t, []string{""}, items)
}

func TestParseDelimitedList_WrongDelimitersErrors(t *testing.T) {
	_, err := ParseDelimitedList("[1,2,3]", '(', ')')
	require.Error(t, err)
}

func TestParseDelimitedList_TooShortErrors(t *testing.T) {
	_, err := ParseDelimitedList("(", '(', ')')
	require.Error(t, err)
}
