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

// Package decltype holds the canonical Type reference model (§3) and the
// canonicaliser that resolves a raw declarator into it (§4.6).
package decltype

import "strings"

// ModifierKind distinguishes the three declarator modifier shapes a Type
// reference can carry, applied outermost-last (§3).
type ModifierKind int

const (
	Pointer ModifierKind = iota
	Array
	Function
)

// Param is one parameter of a Function modifier: an optional name plus its
// own Type reference.
type Param struct {
	Name string
	Type Ref
}

// Modifier is one declarator layer. Len is the array length expression's
// source text (empty for an unsized array `[]`); Params and Variadic are
// only meaningful when Kind == Function.
type Modifier struct {
	Kind     ModifierKind
	Len      string
	Params   []Param
	Variadic bool
}

// Qualifier is a storage-class/type qualifier attached to a Type reference
// as a whole (§3): const/volatile, storage class, calling convention,
// platform-specific markers (near/far and similar, config-driven).
type Qualifier string

const (
	Const    Qualifier = "const"
	Volatile Qualifier = "volatile"
	Static   Qualifier = "static"
	Extern   Qualifier = "extern"
	Inline   Qualifier = "inline"
)

// Ref is the canonical Type reference of §3: a base name (a primitive
// spelling, a user type name, or a synthetic inline-aggregate id), an
// ordered modifier list (outermost last), and a qualifier set.
type Ref struct {
	Base       string
	Modifiers  []Modifier
	Qualifiers []Qualifier
	// Unresolved is set only when Base's typedef chain cycles through plain
	// (non-pointer, non-function) references — see Canonicalizer.Resolve.
	// An unknown type name or an aggregate id is kept as Base with
	// Unresolved left false.
	Unresolved bool
}

func (r Ref) HasQualifier(q Qualifier) bool {
	for _, have := range r.Qualifiers {
		if have == q {
			return true
		}
	}
	return false
}

func (r Ref) String() string {
	var sb strings.Builder
	for _, q := range r.Qualifiers {
		sb.WriteString(string(q))
		sb.WriteByte(' ')
	}
	sb.WriteString(r.Base)
	for i := len(r.Modifiers) - 1; i >= 0; i-- {
		m := r.Modifiers[i]
		switch m.Kind {
		case Pointer:
			sb.WriteString(" *")
		case Array:
			sb.WriteString(" [" + m.Len + "]")
		case Function:
			sb.WriteString(" (...)")
		}
	}
	return sb.String()
}
