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
	"github.com/chdr-project/chdr/internal/expr"
	"github.com/chdr-project/chdr/store"
	"github.com/chdr-project/chdr/token"
)

// parseEnumBody parses `{ identifier (= E)? (, identifier (= E)?)* ,? }`
// (§4.5), assigning each omitted member the previous value plus one (the
// first omitted member starts at 0, per §3/§4.3/§8 property 4), and
// registers the finished enum via st.AddEnum. The opening `{` is consumed
// here; if the next token is not `{`, nothing is parsed or registered.
func (p *parser) parseEnumBody(name string, loc token.Cursor) {
	if !p.accept("{") {
		return
	}

	e := &store.Enum{Name: name, Location: loc}
	var next int64
	for !p.is("}") && !p.atEnd() {
		if p.peek().Type != token.Identifier {
			p.diags.Warn(diag.KindSyntaxError, p.loc(), "expected enumerator name")
			p.advance()
			continue
		}
		memberName := p.advance().Content
		value := next
		if p.accept("=") {
			toks := p.collectBalancedUntil(",", "}")
			v := p.evalConstant(toks)
			value = v.AsInt64()
		}
		e.Members = append(e.Members, store.EnumMember{Name: memberName, Value: value})
		next = value + 1

		if !p.accept(",") {
			break
		}
	}
	if !p.accept("}") {
		p.diags.Warn(diag.KindSyntaxError, p.loc(), "expected '}' to close enum")
	}
	p.st.AddEnum(e)
}

// evalConstant reduces an enumerator/bit-field/array-length constant
// expression to a Value, falling back to a symbolic placeholder when it
// can't be parsed or evaluated (§4.4).
func (p *parser) evalConstant(toks []token.Token) expr.Value {
	if len(toks) == 0 {
		return expr.Int(0)
	}
	e, err := expr.NewParser(toks).Parse()
	if err != nil {
		return expr.Sym(toks)
	}
	return expr.Eval(e, p.resolver, p.diags, expr.ConstantContext, p.cfg.MaxExpansion)
}
