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
	"github.com/chdr-project/chdr/token"
)

// coreTypeKeywords combine freely into a single primitive spelling (e.g.
// "unsigned long long int"); every other primitive name (size_t, int8_t,
// a platform typedef-looking word, ...) is matched as a single identifier
// against cfg.Primitives instead.
var coreTypeKeywords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
}

var storageClassKeywords = map[string]bool{
	"static": true, "extern": true, "inline": true, "typedef": true,
	"register": true, "auto": true,
}

var qualifierKeywords = map[string]decltype.Qualifier{
	"const": decltype.Const, "volatile": decltype.Volatile,
}

// specifiers is the result of parsing one declaration's
// declaration-specifiers (§4.5): storage class/typedef flag, qualifiers,
// an optional calling-convention marker, and the base Type reference (no
// declarator modifiers yet).
type specifiers struct {
	isTypedef  bool
	qualifiers []decltype.Qualifier
	callConv   string
	base       decltype.Ref
}

// parseDeclarationSpecifiers consumes storage-class keywords, qualifiers,
// configured modifier/calling-convention keywords, and exactly one
// type-specifier. Returns ok=false if no type-specifier could be
// recognised at all (the caller treats that as "not a declaration here").
func (p *parser) parseDeclarationSpecifiers() (specifiers, bool) {
	var spec specifiers
	var coreWords []string

	modifierSet := toSet(p.cfg.Modifiers)
	qualifierSet := toSet(p.cfg.Qualifiers)

	sawTypeSpecifier := false
	for {
		t := p.peek()
		if t.Type != token.Identifier {
			break
		}
		switch {
		case t.Content == "typedef":
			spec.isTypedef = true
			p.advance()
		case storageClassKeywords[t.Content]:
			if q := decltype.Qualifier(t.Content); q == decltype.Static || q == decltype.Extern || q == decltype.Inline {
				spec.qualifiers = append(spec.qualifiers, q)
			}
			p.advance()
		case qualifierKeywords[t.Content] != "":
			spec.qualifiers = append(spec.qualifiers, qualifierKeywords[t.Content])
			p.advance()
		case qualifierSet[t.Content]:
			spec.qualifiers = append(spec.qualifiers, decltype.Qualifier(t.Content))
			p.advance()
		case modifierSet[t.Content]:
			spec.callConv = t.Content
			spec.qualifiers = append(spec.qualifiers, decltype.Qualifier(t.Content))
			p.advance()
		case t.Content == "struct" || t.Content == "union" || t.Content == "enum":
			if sawTypeSpecifier {
				return spec, true
			}
			base := p.parseAggregateOrEnumSpecifier(t.Content)
			spec.base = decltype.Ref{Base: base}
			sawTypeSpecifier = true
			return p.finishSpecifiers(spec, coreWords), true
		case coreTypeKeywords[t.Content]:
			if sawTypeSpecifier && len(coreWords) == 0 {
				// a user type name was already consumed as the
				// type-specifier; this identifier belongs to the declarator.
				return p.finishSpecifiers(spec, coreWords), true
			}
			coreWords = append(coreWords, t.Content)
			sawTypeSpecifier = true
			p.advance()
		case p.st.IsPrimitive(t.Content) && !sawTypeSpecifier:
			spec.base = decltype.Ref{Base: t.Content}
			sawTypeSpecifier = true
			p.advance()
			return p.finishSpecifiers(spec, coreWords), true
		case !sawTypeSpecifier && p.isKnownOrPlausibleTypeName(t.Content):
			spec.base = decltype.Ref{Base: t.Content}
			sawTypeSpecifier = true
			p.advance()
			return p.finishSpecifiers(spec, coreWords), true
		default:
			return p.finishSpecifiers(spec, coreWords), sawTypeSpecifier
		}
	}
	return p.finishSpecifiers(spec, coreWords), sawTypeSpecifier
}

func (p *parser) finishSpecifiers(spec specifiers, coreWords []string) specifiers {
	if len(coreWords) > 0 {
		base := strings.Join(coreWords, " ")
		spec.base = decltype.Ref{Base: base}
		p.st.AddPrimitive(base)
	}
	return spec
}

// isKnownOrPlausibleTypeName reports whether name should be treated as a
// user type-specifier: either it's a typedef name already seen, or (§4.5's
// "unknown type names are accepted and recorded verbatim" policy) it's an
// identifier in a position where only a type name is grammatically valid
// (the very next token is another identifier, i.e. "name declarator-name",
// or a declarator-introducing punctuator).
func (p *parser) isKnownOrPlausibleTypeName(name string) bool {
	if _, ok := p.st.Typedef(name); ok {
		return true
	}
	next := p.peekN(1)
	if next.Type == token.Identifier {
		return true
	}
	if next.Type == token.Punctuator && (next.Content == "*" || next.Content == "(") {
		return true
	}
	return false
}

func toSet(xs []string) map[string]bool {
	m := make(map[string]bool, len(xs))
	for _, x := range xs {
		m[x] = true
	}
	return m
}

// parseAggregateOrEnumSpecifier consumes `struct|union|enum [tag] [{ body }]`
// and returns the Base name to use in the enclosing Type reference: the tag
// if present, otherwise a fresh synthetic id (§4.5, §9's "structs/unions
// stored by id" design note).
func (p *parser) parseAggregateOrEnumSpecifier(keyword string) string {
	loc := p.loc()
	p.advance() // struct/union/enum

	tag := ""
	if p.peek().Type == token.Identifier {
		tag = p.advance().Content
	}

	hasBody := p.is("{")
	name := tag
	if name == "" {
		name = p.synthID(keyword)
	}

	if hasBody {
		switch keyword {
		case "enum":
			p.parseEnumBody(name, loc)
		default:
			p.parseAggregateBody(name, keyword == "union", loc)
		}
	}
	return name
}
