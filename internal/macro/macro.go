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

// Package macro holds the macro table (object-like and function-like
// #define entries) and the token-substitution engine that expands them,
// including the rescan-with-hide-set algorithm that stops a macro from
// re-expanding itself.
package macro

import (
	"maps"

	"github.com/chdr-project/chdr/token"
)

// Macro is one #define entry. Object-like macros have Params == nil;
// function-like macros (even a zero-arg `NAME()`) have a non-nil slice.
type Macro struct {
	Name     string
	Params   []string // nil => object-like
	Variadic bool     // reserved, per §3; not required to be honoured
	Body     []token.Token
	Location token.Cursor
}

func (m Macro) IsFunctionLike() bool { return m.Params != nil }

// Table is the live set of currently-defined macros. The preprocessor owns
// the single Table instance for a parse and mutates it only from directive
// processing (§5).
type Table struct {
	macros map[string]Macro
}

func NewTable() *Table {
	return &Table{macros: make(map[string]Macro)}
}

// Define registers m, silently overriding any prior definition of the same
// name (§3's "redefinition is allowed and silently overrides").
func (t *Table) Define(m Macro) {
	t.macros[m.Name] = m
}

// Undef removes name if present; a no-op otherwise.
func (t *Table) Undef(name string) {
	delete(t.macros, name)
}

// Lookup returns the current definition of name.
func (t *Table) Lookup(name string) (Macro, bool) {
	m, ok := t.macros[name]
	return m, ok
}

// Names returns every currently-defined macro name, in no particular order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.macros))
	for name := range t.macros {
		names = append(names, name)
	}
	return names
}

// Snapshot is an opaque copy of the table's state, usable with Restore.
type Snapshot struct {
	macros map[string]Macro
}

func (t *Table) Snapshot() Snapshot {
	return Snapshot{macros: maps.Clone(t.macros)}
}

func (t *Table) Restore(s Snapshot) {
	t.macros = maps.Clone(s.macros)
}

// Defined implements expr.Resolver.
func (t *Table) Defined(name string) bool {
	_, ok := t.macros[name]
	return ok
}

// Expand implements expr.Resolver: it only ever hands back the unexpanded
// body of an object-like macro. A bare reference to a function-like macro's
// name (not followed by an argument list) is left unexpanded, matching C's
// rule that such a reference is not a macro invocation.
func (t *Table) Expand(name string) ([]token.Token, bool) {
	m, ok := t.macros[name]
	if !ok || m.IsFunctionLike() {
		return nil, false
	}
	return m.Body, true
}

// EnumValue is never satisfied by the macro table alone; enum membership is
// only known to the declaration store. Preprocessor conditions run before
// any declaration has been parsed, so this always returns false there.
func (t *Table) EnumValue(string) (int64, bool) { return 0, false }
