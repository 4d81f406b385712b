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

// Package directive holds the preprocessor directive AST: one value per
// recognised '#' line (#define, #undef, the #if/#elif/#else/#endif family,
// #pragma pack), plus the Scan function that splits a flat token stream into
// directive lines and ordinary text lines.
package directive

import (
	"fmt"
	"strings"

	"github.com/chdr-project/chdr/token"
)

// Directive is one recognised '#' line.
type Directive interface {
	fmt.Stringer
	location() token.Cursor
}

// Define is a #define directive. Params is nil for an object-like macro and
// non-nil (possibly empty) for a function-like one.
type Define struct {
	Name     string
	Params   []string
	Variadic bool
	Body     []token.Token
	Location token.Cursor
}

// Undef is a #undef directive.
type Undef struct {
	Name     string
	Location token.Cursor
}

// ConditionalKind distinguishes the opening branch of a conditional block
// from a subsequent #elif branch; #else/#endif get their own directive
// types since neither carries a condition.
type ConditionalKind int

const (
	If ConditionalKind = iota
	Elif
)

// Conditional is a #if/#ifdef/#ifndef/#elif/#elifdef/#elifndef directive.
// Condition holds the raw (unevaluated) expression token span; the ifdef/
// ifndef forms are desugared here into the equivalent `defined`/`!defined`
// token span so the preprocessor only ever evaluates one shape of
// condition (§4.3's "equivalent to" rule).
type Conditional struct {
	Kind      ConditionalKind
	Condition []token.Token
	Location  token.Cursor
}

// Else is a #else directive.
type Else struct {
	Location token.Cursor
}

// Endif is a #endif directive.
type Endif struct {
	Location token.Cursor
}

// PackKind distinguishes the four #pragma pack forms.
type PackKind int

const (
	PackReset PackKind = iota // pack()
	PackSet                   // pack(N)
	PackPush                  // pack(push [, label] [, N])
	PackPop                   // pack(pop [, label])
)

// Pragma is a #pragma pack(...) directive. Non-pack pragmas are not
// represented as a Directive at all: Scan drops them silently, per §4.3's
// "unknown pragmas are ignored silently" rule.
type Pragma struct {
	Kind     PackKind
	Value    *int // set for PackSet, optionally for PackPush
	Label    string
	Location token.Cursor
}

// Unknown is a '#' line whose keyword is not one this preprocessor
// recognises (and is not #pragma); §4.3 treats this as warning-level, not
// fatal.
type Unknown struct {
	Keyword  string
	Location token.Cursor
}

func (d Define) location() token.Cursor      { return d.Location }
func (d Undef) location() token.Cursor       { return d.Location }
func (d Conditional) location() token.Cursor { return d.Location }
func (d Else) location() token.Cursor        { return d.Location }
func (d Endif) location() token.Cursor       { return d.Location }
func (d Pragma) location() token.Cursor      { return d.Location }
func (d Unknown) location() token.Cursor     { return d.Location }

func (d Define) String() string {
	if d.Params == nil {
		return fmt.Sprintf("#define %s %s", d.Name, contentOf(d.Body))
	}
	params := strings.Join(d.Params, ", ")
	if d.Variadic {
		if params != "" {
			params += ", "
		}
		params += "..."
	}
	return fmt.Sprintf("#define %s(%s) %s", d.Name, params, contentOf(d.Body))
}
func (d Undef) String() string { return fmt.Sprintf("#undef %s", d.Name) }
func (d Conditional) String() string {
	kw := "#if"
	if d.Kind == Elif {
		kw = "#elif"
	}
	return fmt.Sprintf("%s %s", kw, contentOf(d.Condition))
}
func (d Else) String() string { return "#else" }
func (d Endif) String() string { return "#endif" }
func (d Pragma) String() string {
	switch d.Kind {
	case PackReset:
		return "#pragma pack()"
	case PackSet:
		return fmt.Sprintf("#pragma pack(%d)", *d.Value)
	case PackPush:
		return fmt.Sprintf("#pragma pack(push, %s, %d)", d.Label, valueOrZero(d.Value))
	case PackPop:
		return fmt.Sprintf("#pragma pack(pop, %s)", d.Label)
	default:
		return "#pragma pack(?)"
	}
}
func (d Unknown) String() string { return "#" + d.Keyword }

func valueOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func contentOf(toks []token.Token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Content)
	}
	return sb.String()
}
