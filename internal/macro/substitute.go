// Copyright 2025 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package macro

import (
	"github.com/chdr-project/chdr/internal/collections"
	"github.com/chdr-project/chdr/internal/diag"
	"github.com/chdr-project/chdr/token"
)

// painted pairs a token with the set of macro names it must not be
// re-expanded for. A token picks up a name in its hide set the moment it is
// produced by expanding that macro, and keeps it through any further
// rescans — this is what stops a self-referential macro body from looping.
type painted struct {
	tok  token.Token
	hide collections.Set[string]
}

func paintAll(toks []token.Token, hide collections.Set[string]) []painted {
	out := make([]painted, len(toks))
	for i, t := range toks {
		h := make(collections.Set[string], len(hide))
		h.Join(hide)
		out[i] = painted{tok: t, hide: h}
	}
	return out
}

func unpaint(ps []painted) []token.Token {
	out := make([]token.Token, len(ps))
	for i, p := range ps {
		out[i] = p.tok
	}
	return out
}

// budget threads a shrinking rescan allowance through recursive expansion
// so a runaway macro halts instead of looping forever, per §4.2's "rescan
// is bounded" rule.
type budget struct {
	remaining int
	diags     *diag.Sink
	exceeded  bool
}

func (b *budget) take(loc token.Cursor, name string) bool {
	if b.remaining <= 0 {
		if !b.exceeded {
			b.exceeded = true
			b.diags.Warn(diag.KindExpansionDepthExceeded, loc, "expansion of %q exceeded the configured limit; partial result kept", name)
		}
		return false
	}
	b.remaining--
	return true
}

// Substitute expands every macro invocation in tokens, rescanning the
// result, and returns the fully-substituted stream. maxExpansion bounds the
// total number of macro substitutions performed (§4.2, §6's
// Config.MaxExpansion).
func (t *Table) Substitute(tokens []token.Token, diags *diag.Sink, maxExpansion int) []token.Token {
	b := &budget{remaining: maxExpansion, diags: diags}
	return unpaint(t.expandList(paintAll(tokens, collections.Set[string]{}), b))
}

func (t *Table) expandList(in []painted, b *budget) []painted {
	var out []painted
	i := 0
	for i < len(in) {
		pt := in[i]
		if pt.tok.Type != token.Identifier || pt.hide.Contains(pt.tok.Content) {
			out = append(out, pt)
			i++
			continue
		}
		m, ok := t.Lookup(pt.tok.Content)
		if !ok {
			out = append(out, pt)
			i++
			continue
		}
		if m.IsFunctionLike() {
			call, consumed, isCall := t.tryParseCall(in, i)
			if !isCall {
				out = append(out, pt)
				i++
				continue
			}
			if !b.take(pt.tok.Location, m.Name) {
				out = append(out, in[i:i+consumed]...)
				i += consumed
				continue
			}
			expanded, ok := t.expandCall(m, call, pt, b)
			if !ok {
				diags := b.diags
				diags.Warn(diag.KindMacroArityMismatch, pt.tok.Location,
					"macro %q invoked with %d argument(s), expected %d", m.Name, len(call), len(m.Params))
				out = append(out, in[i:i+consumed]...)
				i += consumed
				continue
			}
			out = append(out, t.expandList(expanded, b)...)
			i += consumed
			continue
		}

		if !b.take(pt.tok.Location, m.Name) {
			out = append(out, pt)
			i++
			continue
		}
		newHide := make(collections.Set[string], len(pt.hide)+1)
		newHide.Join(pt.hide)
		newHide.Add(m.Name)
		body := paintAll(m.Body, newHide)
		out = append(out, t.expandList(body, b)...)
		i++
	}
	return out
}

// tryParseCall looks for "(" args... ")" immediately following (modulo
// nothing — whitespace/comments are assumed already filtered out of the
// preprocessed stream by the time Substitute runs) position i, returning the
// raw (unexpanded) argument token groups, how many input tokens the whole
// invocation consumed, and whether a call was found at all.
func (t *Table) tryParseCall(in []painted, i int) (args [][]painted, consumed int, ok bool) {
	j := i + 1
	if j >= len(in) || in[j].tok.Content != "(" {
		return nil, 0, false
	}
	depth := 1
	j++
	argStart := j
	var current []painted
	for j < len(in) && depth > 0 {
		c := in[j].tok.Content
		switch {
		case c == "(":
			depth++
			current = append(current, in[j])
		case c == ")":
			depth--
			if depth == 0 {
				if len(current) > 0 || len(args) > 0 || j > argStart {
					args = append(args, current)
				}
				j++
				return args, j - i, true
			}
			current = append(current, in[j])
		case c == "," && depth == 1:
			args = append(args, current)
			current = nil
		default:
			current = append(current, in[j])
		}
		j++
	}
	return nil, 0, false
}

// expandCall substitutes call's arguments (each first macro-expanded, per
// §4.2) into m's replacement body, tagging the result with the invocation's
// hide set plus m's own name.
func (t *Table) expandCall(m Macro, call [][]painted, invocation painted, b *budget) ([]painted, bool) {
	if len(call) == 1 && len(call[0]) == 0 && len(m.Params) == 0 {
		call = nil
	}
	if len(call) != len(m.Params) {
		return nil, false
	}

	expandedArgs := make([][]painted, len(call))
	for i, arg := range call {
		expandedArgs[i] = t.expandList(arg, b)
	}

	newHide := make(collections.Set[string], len(invocation.hide)+1)
	newHide.Join(invocation.hide)
	newHide.Add(m.Name)

	var out []painted
	for _, bodyTok := range m.Body {
		if bodyTok.Type == token.Identifier {
			if idx := paramIndex(m.Params, bodyTok.Content); idx >= 0 {
				out = append(out, paintAll(unpaint(expandedArgs[idx]), newHide)...)
				continue
			}
		}
		out = append(out, painted{tok: bodyTok, hide: cloneHide(newHide)})
	}
	return out, true
}

func cloneHide(h collections.Set[string]) collections.Set[string] {
	c := make(collections.Set[string], len(h))
	c.Join(h)
	return c
}

func paramIndex(params []string, name string) int {
	for i, p := range params {
		if p == name {
			return i
		}
	}
	return -1
}
