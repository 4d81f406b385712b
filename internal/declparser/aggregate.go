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
	"github.com/chdr-project/chdr/internal/diag"
	"github.com/chdr-project/chdr/store"
	"github.com/chdr-project/chdr/token"
)

// parseAggregateBody parses a struct/union body: `{ field-declaration* }`,
// where each field-declaration is declaration-specifiers followed by one or
// more declarators, each with an optional bit-field width (`: E`) and an
// optional (tolerated, non-standard) default initializer. A nested
// anonymous struct/union with no declarator at all is promoted into a
// single unnamed Field referencing its synthetic id (§4.5, §9).
func (p *parser) parseAggregateBody(name string, isUnion bool, loc token.Cursor) {
	if !p.accept("{") {
		return
	}

	r := &store.Record{Name: name, IsUnion: isUnion, Pack: p.packAt(loc), Location: loc}
	for !p.is("}") && !p.atEnd() {
		if !p.parseFieldDeclaration(r) {
			p.recoverToSemicolon()
		}
	}
	if !p.accept("}") {
		p.diags.Warn(diag.KindSyntaxError, p.loc(), "expected '}' to close struct/union")
	}

	if isUnion {
		p.st.AddUnion(r)
	} else {
		p.st.AddStruct(r)
	}
}

// parseFieldDeclaration parses one `declaration-specifiers
// declarator-list? ;` inside a struct/union body.
func (p *parser) parseFieldDeclaration(r *store.Record) bool {
	specStart := p.loc()
	spec, ok := p.parseDeclarationSpecifiers()
	if !ok {
		return false
	}

	if p.accept(";") {
		if anonymousAggregateBase(spec.base.Base) {
			r.Fields = append(r.Fields, store.Field{Type: spec.base, Inline: spec.base.Base})
		}
		return true
	}

	for {
		d, ok := p.parseDeclarator()
		if !ok {
			return false
		}
		ref := applyDeclarator(spec.base, d)
		ref.Qualifiers = spec.qualifiers
		field := store.Field{Name: d.name, Type: p.st.Resolve(ref, specStart)}

		if p.accept(":") {
			toks := p.collectBalancedUntil(",", ";")
			v := p.evalConstant(toks)
			w := v.AsInt64()
			field.BitWidth = &w
		}
		if p.accept("=") {
			v := p.parseInitializer()
			field.Default = &v
		}
		r.Fields = append(r.Fields, field)

		if p.accept(",") {
			continue
		}
		break
	}
	if !p.accept(";") {
		p.diags.Warn(diag.KindSyntaxError, p.loc(), "expected ';' after struct/union field")
		return false
	}
	return true
}

// anonymousAggregateBase reports whether base names one of this parser's
// own synthetic anonymous-aggregate ids (struct#N / union#N), as opposed to
// a tag name or a primitive.
func anonymousAggregateBase(base string) bool {
	for _, prefix := range []string{"struct#", "union#"} {
		if len(base) > len(prefix) && base[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
