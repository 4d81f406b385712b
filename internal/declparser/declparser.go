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

// Package declparser implements the C declaration grammar of §4.5: the
// translation-unit loop over typedefs, struct/union/enum definitions,
// function prototypes, and variable declarations, populating a store.Store
// as it goes.
package declparser

import (
	"fmt"

	"github.com/chdr-project/chdr/internal/decltype"
	"github.com/chdr-project/chdr/internal/diag"
	"github.com/chdr-project/chdr/internal/expr"
	"github.com/chdr-project/chdr/store"
	"github.com/chdr-project/chdr/token"
)

// Config is the subset of the root package's configuration the grammar
// needs: the configured vocabulary for primitive type spellings, type
// qualifiers, and attribute-like modifiers/calling-conventions, plus the
// attribute-wrapper replacement table (§6).
type Config struct {
	Primitives   []string
	Qualifiers   []string
	Modifiers    []string
	Replacements map[string]string
	MaxExpansion int
}

// Parse consumes tokens (the preprocessor's output) and populates st with
// every typedef, struct, union, enum, function, and variable it recognises.
// packAt resolves the #pragma pack value active at a given source location
// (§3); resolver supplies macro/enum identifier lookups for constant
// expressions encountered in initializers, bit-field widths, and array
// lengths.
func Parse(tokens []token.Token, cfg Config, st *store.Store, packAt func(token.Cursor) int, resolver expr.Resolver, diags *diag.Sink) {
	st.SetPrimitives(cfg.Primitives)
	tokens = applyReplacements(tokens, cfg.Replacements)
	p := &parser{
		toks:     filterInsignificant(tokens),
		cfg:      cfg,
		st:       st,
		packAt:   packAt,
		resolver: resolver,
		diags:    diags,
	}
	p.parseTranslationUnit()
}

func filterInsignificant(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	for _, t := range toks {
		if t.Type == token.Newline || t.Type == token.Whitespace {
			continue
		}
		out = append(out, t)
	}
	return out
}

type parser struct {
	toks     []token.Token
	pos      int
	cfg      Config
	st       *store.Store
	packAt   func(token.Cursor) int
	resolver expr.Resolver
	diags    *diag.Sink

	anonCounter int
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() token.Token {
	if p.atEnd() {
		return token.Token{Type: token.EOF, Location: token.CursorEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) peekN(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return token.Token{Type: token.EOF, Location: token.CursorEOF}
	}
	return p.toks[p.pos+n]
}

func (p *parser) advance() token.Token {
	t := p.peek()
	if !p.atEnd() {
		p.pos++
	}
	return t
}

func (p *parser) is(content string) bool {
	t := p.peek()
	return (t.Type == token.Punctuator || t.Type == token.Identifier) && t.Content == content
}

func (p *parser) accept(content string) bool {
	if p.is(content) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) loc() token.Cursor {
	if p.atEnd() {
		if len(p.toks) == 0 {
			return token.CursorInit
		}
		return p.toks[len(p.toks)-1].Location
	}
	return p.peek().Location
}

// synthID returns a fresh synthetic name for an anonymous struct/union/enum,
// used both as the store's record key and as a Type reference's Base when
// a field or variable references it inline (§4.5's anonymous-aggregate
// promotion, §9's "structs/unions stored by id" design note).
func (p *parser) synthID(prefix string) string {
	p.anonCounter++
	return fmt.Sprintf("%s#%d", prefix, p.anonCounter)
}

// parseTranslationUnit implements §4.5's top-level loop: a sequence of
// external declarations, each recovered independently on error so one
// malformed declaration never derails the rest of the file.
func (p *parser) parseTranslationUnit() {
	for !p.atEnd() {
		start := p.pos
		if !p.parseExternalDeclaration() {
			if p.pos == start {
				// Made no progress at all (an unrecognisable leading
				// token): skip it to guarantee forward movement.
				p.advance()
			}
		}
	}
}

// parseExternalDeclaration parses one `declaration-specifiers
// init-declarator-list? ;` (or a struct/union/enum definition with no
// trailing declarators), recovering to the next top-level `;` on syntax
// error (§7's "syntax error in declaration" policy).
func (p *parser) parseExternalDeclaration() bool {
	specStart := p.loc()
	spec, ok := p.parseDeclarationSpecifiers()
	if !ok {
		return false
	}

	if p.accept(";") {
		// A bare `struct S { ... };` with no declarator: nothing further
		// to record beyond the aggregate/enum already registered by
		// parseDeclarationSpecifiers.
		return true
	}

	if spec.isTypedef {
		return p.parseTypedefDeclarators(spec)
	}

	for {
		d, ok := p.parseDeclarator()
		if !ok {
			p.recoverToSemicolon()
			return false
		}
		ref := applyDeclarator(spec.base, d)
		ref.Qualifiers = spec.qualifiers

		if d.isFunction() {
			p.recordFunction(d.name, ref, d, spec, specStart)
		} else {
			var val *expr.Value
			if p.accept("=") {
				v := p.parseInitializer()
				val = &v
			}
			p.st.AddVar(&store.Variable{Name: d.name, Type: p.st.Resolve(ref, specStart), Value: val, Location: specStart})
		}
		if p.accept(",") {
			continue
		}
		break
	}
	if !p.accept(";") {
		p.diags.Warn(diag.KindSyntaxError, p.loc(), "expected ';' after declaration")
		p.recoverToSemicolon()
		return false
	}
	return true
}

// recordFunction registers d as a function prototype and, if its body is
// present, skips it at brace depth (§4.5).
func (p *parser) recordFunction(name string, ref decltype.Ref, d declarator, spec specifiers, loc token.Cursor) {
	fnMod := d.trailingFunctionModifier()
	p.st.AddFunc(&store.Function{
		Name:       name,
		Return:     p.st.Resolve(decltype.Ref{Base: ref.Base, Modifiers: ref.Modifiers[:len(ref.Modifiers)-1], Qualifiers: ref.Qualifiers}, loc),
		Params:     fnMod.Params,
		CallConv:   spec.callConv,
		Qualifiers: spec.qualifiers,
		Variadic:   fnMod.Variadic,
		Location:   loc,
	})
	if p.is("{") {
		p.skipBraces()
	}
}

// skipBraces consumes a balanced `{ ... }` body without interpreting its
// contents, so an inline function definition never derails the declaration
// grammar (§4.5).
func (p *parser) skipBraces() {
	depth := 0
	for !p.atEnd() {
		switch {
		case p.is("{"):
			depth++
			p.advance()
		case p.is("}"):
			depth--
			p.advance()
			if depth == 0 {
				return
			}
		default:
			p.advance()
		}
	}
}

// recoverToSemicolon implements §7's syntax-error recovery: skip past the
// next top-level `;`, or past the `}` matching a `{` opened along the way.
// An unmatched `}` (e.g. the close of the struct body being recovered
// inside) ends recovery without being consumed.
func (p *parser) recoverToSemicolon() {
	p.diags.Warn(diag.KindSyntaxError, p.loc(), "skipping malformed declaration")
	depth := 0
	for !p.atEnd() {
		switch {
		case p.is("{"):
			depth++
			p.advance()
		case p.is("}"):
			if depth == 0 {
				return
			}
			depth--
			p.advance()
			if depth == 0 {
				return
			}
		case p.is(";") && depth == 0:
			p.advance()
			return
		default:
			p.advance()
		}
	}
}

// parseInitializer parses the expression following `=` in an
// init-declarator or struct-field default, up to (but not consuming) the
// next top-level `,` or `;`.
func (p *parser) parseInitializer() expr.Value {
	toks := p.collectBalancedUntil(",", ";")
	e, err := expr.NewParser(toks).Parse()
	if err != nil || len(toks) == 0 {
		return expr.Sym(toks)
	}
	return expr.Eval(e, p.resolver, p.diags, expr.ConstantContext, p.cfg.MaxExpansion)
}

// collectBalancedUntil gathers tokens up to (not including) a top-level
// occurrence of any of stops, respecting nested (), [], {} so commas inside
// a function-call-shaped initializer or compound literal aren't mistaken
// for an argument separator.
func (p *parser) collectBalancedUntil(stops ...string) []token.Token {
	depth := 0
	var out []token.Token
	for !p.atEnd() {
		t := p.peek()
		if depth == 0 {
			for _, s := range stops {
				if (t.Type == token.Punctuator) && t.Content == s {
					return out
				}
			}
		}
		switch t.Content {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			if depth == 0 {
				return out
			}
			depth--
		}
		out = append(out, p.advance())
	}
	return out
}
