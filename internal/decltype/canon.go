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

package decltype

import (
	"github.com/chdr-project/chdr/internal/diag"
	"github.com/chdr-project/chdr/token"
)

// Lookup is the canonicaliser's view of the rest of the definition store: it
// only needs to know whether a name is a configured primitive spelling, and
// (for user type names) what a typedef's own raw declarator looked like.
type Lookup interface {
	IsPrimitive(name string) bool
	Typedef(name string) (Ref, bool)
}

// Canonicalizer implements §4.6: resolving a raw declarator's Type reference
// down to primitives where the typedef chain allows it.
type Canonicalizer struct {
	Lookup Lookup
}

// Resolve walks ref.Base's typedef chain. If the chain bottoms out at a
// primitive, the primitive becomes the new Base and every typedef layer's
// own modifiers are prepended (inner modifiers first, outer last, per §4.6).
// If the chain instead bottoms out at an aggregate id or an unrecognised
// name, or the chain cycles through plain (non-pointer, non-function)
// references, ref's own Base is kept unchanged — only a chain that actually
// reaches a primitive gets substituted.
func (c Canonicalizer) Resolve(ref Ref, loc token.Cursor, diags *diag.Sink) Ref {
	if c.Lookup.IsPrimitive(ref.Base) {
		return ref
	}
	raw, ok := c.Lookup.Typedef(ref.Base)
	if !ok {
		return ref // aggregate id, or an unknown type name recorded verbatim
	}

	visited := map[string]bool{ref.Base: true}
	base := raw.Base
	inner := append([]Modifier{}, raw.Modifiers...)
	for {
		if c.Lookup.IsPrimitive(base) {
			return Ref{
				Base:       base,
				Modifiers:  append(inner, ref.Modifiers...),
				Qualifiers: ref.Qualifiers,
			}
		}
		if visited[base] {
			if onlyPlainReference(inner) {
				diags.Warn(diag.KindTypedefCycle, loc, "typedef cycle involving %q", ref.Base)
				return Ref{Base: ref.Base, Modifiers: ref.Modifiers, Qualifiers: ref.Qualifiers, Unresolved: true}
			}
			// Cycles through a pointer or function boundary are legal
			// (§4.6): stop substituting and represent by name reference.
			return ref
		}
		visited[base] = true

		next, ok := c.Lookup.Typedef(base)
		if !ok {
			// Bottoms out at an aggregate id or unknown name without ever
			// reaching a primitive: only substitute chains that terminate
			// in a primitive, so leave ref's own name as its base.
			return ref
		}
		inner = append(append([]Modifier{}, next.Modifiers...), inner...)
		base = next.Base
	}
}

// onlyPlainReference reports whether mods contains no pointer/function
// modifier: §4.6 only treats a cycle through *plain* typedef references
// (no intervening `*` or `(...)`) as an error; cycles that pass through a
// pointer or function boundary are legal (e.g. a linked-list node typedef
// referencing itself only via a pointer field) and are represented by name
// reference rather than inline expansion.
func onlyPlainReference(mods []Modifier) bool {
	for _, m := range mods {
		if m.Kind == Pointer || m.Kind == Function {
			return false
		}
	}
	return true
}
