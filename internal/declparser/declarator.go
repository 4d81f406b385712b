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

package declparser

import (
	"strings"

	"github.com/chdr-project/chdr/internal/decltype"
	"github.com/chdr-project/chdr/internal/diag"
	"github.com/chdr-project/chdr/token"
)

// declarator is one parsed declarator: the declared name (empty for an
// abstract declarator, e.g. a parameter with no name) and its modifier
// chain in the Type reference's base-outward order (§3): index 0 is the
// layer closest to the base type, the last entry is outermost.
type declarator struct {
	name string
	mods []decltype.Modifier
}

func (d declarator) isFunction() bool {
	return len(d.mods) > 0 && d.mods[len(d.mods)-1].Kind == decltype.Function
}

// trailingFunctionModifier returns the outermost Function modifier; only
// valid when isFunction() is true.
func (d declarator) trailingFunctionModifier() decltype.Modifier {
	return d.mods[len(d.mods)-1]
}

// applyDeclarator combines a declaration-specifier's base name with a
// parsed declarator's modifier chain into a full Type reference.
func applyDeclarator(base decltype.Ref, d declarator) decltype.Ref {
	return decltype.Ref{Base: base.Base, Modifiers: d.mods}
}

// parseDeclarator implements the precedence-sensitive declarator grammar of
// §4.5/§9: zero or more leading pointers, then a direct-declarator (a name,
// or a parenthesized sub-declarator) with zero or more trailing array/
// function suffixes. Leading pointers are always the outermost layers of
// the *prefix*, but a parenthesized sub-declarator's own chain nests inside
// whatever suffixes follow its closing paren -- see parseDirectDeclarator.
func (p *parser) parseDeclarator() (declarator, bool) {
	var ptrMods []decltype.Modifier
	for p.accept("*") {
		p.skipPointerQualifiers()
		ptrMods = append(ptrMods, decltype.Modifier{Kind: decltype.Pointer})
	}
	name, coreMods, ok := p.parseDirectDeclarator()
	if !ok {
		return declarator{}, false
	}
	return declarator{name: name, mods: append(ptrMods, coreMods...)}, true
}

// skipPointerQualifiers consumes any const/volatile (or configured
// qualifier) keywords immediately following a `*`, e.g. `char * const p`.
func (p *parser) skipPointerQualifiers() {
	qualifierSet := toSet(p.cfg.Qualifiers)
	for {
		t := p.peek()
		if t.Type != token.Identifier {
			return
		}
		if qualifierKeywords[t.Content] == "" && !qualifierSet[t.Content] {
			return
		}
		p.advance()
	}
}

// parseDirectDeclarator parses the `( declarator )` or `identifier?` core of
// a declarator, then its trailing array/function suffixes. A parenthesized
// sub-declarator's own modifier chain is nested *inside* the suffixes that
// follow the closing paren (the suffixes apply to the parenthesized group as
// a whole, which is itself a more deeply nested layer than anything already
// inside the parens) -- this is what makes `(*p)[4]` ("pointer to array")
// differ from `*p[4]` ("array of pointers").
func (p *parser) parseDirectDeclarator() (string, []decltype.Modifier, bool) {
	if p.accept("(") {
		inner, ok := p.parseDeclarator()
		if !ok {
			return "", nil, false
		}
		if !p.accept(")") {
			p.diags.Warn(diag.KindSyntaxError, p.loc(), "expected ')' in declarator")
			return "", nil, false
		}
		suffix := p.parseSuffixes()
		return inner.name, append(suffix, inner.mods...), true
	}

	name := ""
	if p.peek().Type == token.Identifier {
		name = p.advance().Content
	}
	suffix := p.parseSuffixes()
	return name, suffix, true
}

// parseSuffixes collects every consecutive `[...]` or `(...)` suffix group
// in left-to-right source order, then reverses the result: consecutive
// array/function suffixes nest with the leftmost one as outermost (e.g.
// `int a[2][3]` is "array of 2 of array of 3 of int", so in base-outward
// order the [3] comes first and the [2] last).
func (p *parser) parseSuffixes() []decltype.Modifier {
	var mods []decltype.Modifier
	for {
		switch {
		case p.is("["):
			mods = append(mods, p.parseArraySuffix())
		case p.is("("):
			mods = append(mods, p.parseFunctionSuffix())
		default:
			reverseModifiers(mods)
			return mods
		}
	}
}

func reverseModifiers(mods []decltype.Modifier) {
	for i, j := 0, len(mods)-1; i < j; i, j = i+1, j-1 {
		mods[i], mods[j] = mods[j], mods[i]
	}
}

func (p *parser) parseArraySuffix() decltype.Modifier {
	p.advance() // '['
	toks := p.collectBalancedUntil("]")
	p.accept("]")
	return decltype.Modifier{Kind: decltype.Array, Len: joinTokens(toks)}
}

func (p *parser) parseFunctionSuffix() decltype.Modifier {
	p.advance() // '('
	params, variadic := p.parseParamList()
	if !p.accept(")") {
		p.diags.Warn(diag.KindSyntaxError, p.loc(), "expected ')' in parameter list")
	}
	return decltype.Modifier{Kind: decltype.Function, Params: params, Variadic: variadic}
}

// parseParamList parses a function declarator's parameter list: empty `()`,
// the explicit no-argument form `(void)`, or a comma-separated list of
// `declaration-specifiers declarator?` pairs ending in an optional `...`
// marker. A parameter whose declaration-specifiers can't be recognised at
// all falls back to treating the next token as a lone K&R-style identifier,
// tolerating the old pre-prototype parameter-name-only form (§4.5, §7).
func (p *parser) parseParamList() ([]decltype.Param, bool) {
	if p.is(")") {
		return nil, false
	}
	if p.peek().Type == token.Identifier && p.peek().Content == "void" && p.peekN(1).Content == ")" {
		p.advance()
		return nil, false
	}

	var params []decltype.Param
	for {
		if p.accept("...") {
			return params, true
		}
		spec, ok := p.parseDeclarationSpecifiers()
		if !ok {
			if p.peek().Type == token.Identifier {
				params = append(params, decltype.Param{Name: p.advance().Content})
			}
			if !p.accept(",") {
				return params, false
			}
			continue
		}
		d, _ := p.parseDeclarator()
		ref := applyDeclarator(spec.base, d)
		ref.Qualifiers = spec.qualifiers
		params = append(params, decltype.Param{Name: d.name, Type: ref})
		if !p.accept(",") {
			return params, false
		}
	}
}

func joinTokens(toks []token.Token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Content)
	}
	return sb.String()
}

// parseTypedefDeclarators handles `typedef declaration-specifiers
// declarator (, declarator)* ;`, registering each name via st.DefineType
// instead of as a variable.
func (p *parser) parseTypedefDeclarators(spec specifiers) bool {
	specStart := p.loc()
	for {
		d, ok := p.parseDeclarator()
		if !ok {
			p.recoverToSemicolon()
			return false
		}
		ref := applyDeclarator(spec.base, d)
		ref.Qualifiers = spec.qualifiers
		p.st.DefineType(d.name, ref, specStart)
		if p.accept(",") {
			continue
		}
		break
	}
	if !p.accept(";") {
		p.diags.Warn(diag.KindSyntaxError, p.loc(), "expected ';' after typedef")
		p.recoverToSemicolon()
		return false
	}
	return true
}
