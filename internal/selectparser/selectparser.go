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

// Package selectparser parses the "select" query-string value into an
// ordered list of *ast.SelectItem with arbitrary recursive nesting under
// relation and spread items. It is a hand-written, depth-tracking scanner
// rather than a split-then-parse pipeline, since the grammar's balanced
// parens are cleanest to track directly against a cursor.
package selectparser

import (
	"strings"

	"github.com/supabase/pgrestql/ast"
	"github.com/supabase/pgrestql/internal/lexer"
	"github.com/supabase/pgrestql/querr"
)

// Parse parses a "select" value into its top-level items. An empty or
// absent value yields an empty (nil) list.
func Parse(value string) ([]*ast.SelectItem, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	p := &parser{s: value}
	items, err := p.parseItems()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.s) {
		return nil, querr.UnexpectedToken(string(p.s[p.pos]))
	}
	return items, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) parseItems() ([]*ast.SelectItem, error) {
	var items []*ast.SelectItem
	for {
		if p.pos >= len(p.s) || p.s[p.pos] == ')' {
			break
		}
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		if p.pos < len(p.s) && p.s[p.pos] == ',' {
			p.pos++
			if p.pos >= len(p.s) || p.s[p.pos] == ')' {
				break // trailing comma
			}
			if p.s[p.pos] == ',' {
				return nil, querr.UnexpectedToken(",")
			}
			continue
		}
		break
	}
	return items, nil
}

func (p *parser) parseItem() (*ast.SelectItem, error) {
	spread := false
	if strings.HasPrefix(p.s[p.pos:], "...") {
		spread = true
		p.pos += 3
	}

	head := p.readHead()
	if head == "" {
		return nil, querr.EmptyFieldName()
	}

	hasChildren := p.pos < len(p.s) && p.s[p.pos] == '('

	var kind ast.SelectItemKind
	switch {
	case spread:
		kind = ast.SelectSpread
	case hasChildren:
		kind = ast.SelectRelation
	default:
		kind = ast.SelectField
	}

	alias, core := extractAlias(head)
	item := &ast.SelectItem{Kind: kind, Alias: alias}

	if kind == ast.SelectField {
		field, err := lexer.ParseFieldExpr(core)
		if err != nil {
			return nil, err
		}
		item.Name = field.Name
		item.Path = field.Path
		item.Cast = field.Cast
		switch {
		case len(field.Path) > 0 && field.Cast != "":
			item.HintKind = ast.HintJSONPathCast
		case len(field.Path) > 0:
			item.HintKind = ast.HintJSONPath
		case field.Cast != "":
			item.HintKind = ast.HintCast
		default:
			item.HintKind = ast.HintNone
		}
	} else {
		name, hint := splitRelHint(core)
		if name == "" {
			return nil, querr.EmptyFieldName()
		}
		item.Name = name
		item.RelHint = hint
	}

	if hasChildren {
		children, err := p.parseChildren()
		if err != nil {
			return nil, err
		}
		item.Children = children
	}

	return item, nil
}

// readHead consumes up to (but not including) the next ',', '(', or ')'.
func (p *parser) readHead() string {
	start := p.pos
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ',', '(', ')':
			return p.s[start:p.pos]
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

func (p *parser) parseChildren() ([]*ast.SelectItem, error) {
	p.pos++ // consume '('
	items, err := p.parseItems()
	if err != nil {
		return nil, err
	}
	if p.pos >= len(p.s) || p.s[p.pos] != ')' {
		return nil, querr.UnclosedParenthesis()
	}
	p.pos++ // consume ')'
	return items, nil
}

// extractAlias implements the alias-extraction rule: when the head has no
// "::" cast, the alias is the substring before the first ':' at the item's
// top level ("alias:field"). When a "::" cast is present, the alias instead
// follows the cast ("field::cast:alias").
func extractAlias(head string) (alias, core string) {
	if idx := strings.Index(head, "::"); idx >= 0 {
		afterCast := head[idx+2:]
		if cidx := strings.IndexByte(afterCast, ':'); cidx >= 0 {
			cast := afterCast[:cidx]
			alias = afterCast[cidx+1:]
			core = head[:idx+2] + cast
			return alias, core
		}
		return "", head
	}
	if cidx := strings.IndexByte(head, ':'); cidx >= 0 {
		return head[:cidx], head[cidx+1:]
	}
	return "", head
}

// splitRelHint splits a relation/spread core on its trailing "!hint"
// disambiguation suffix, if any.
func splitRelHint(core string) (name, hint string) {
	if idx := strings.LastIndexByte(core, '!'); idx >= 0 {
		return core[:idx], core[idx+1:]
	}
	return core, ""
}
