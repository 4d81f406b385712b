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

// Package expr implements the preprocessor-condition / constant-initializer
// expression language: a small Pratt parser producing an Expr tree, and an
// evaluator reducing that tree to a Value against a Resolver.
package expr

import (
	"fmt"
	"strings"
)

// Expr is one node of a parsed expression.
type Expr interface {
	fmt.Stringer
}

type (
	// Ident is a bare identifier: a macro name, enum member, or unresolved
	// symbol.
	Ident string

	// IntLit is an integer literal, already parsed into a Value.
	IntLit struct{ Value Value }

	// FloatLit is a floating point literal.
	FloatLit struct{ Value Value }

	// StringLit is a (possibly concatenated) string literal.
	StringLit struct{ Value Value }

	// Defined represents the defined(X) / defined X primitive, legal only
	// in preprocessor conditions.
	Defined struct{ Name Ident }

	// Unary is a prefix operator: "+", "-", "!", "~".
	Unary struct {
		Op string
		X  Expr
	}

	// Binary is an infix operator over two operands.
	Binary struct {
		Op   string
		L, R Expr
	}

	// Ternary is the C conditional operator `Cond ? Then : Else`.
	Ternary struct {
		Cond, Then, Else Expr
	}

	// Cast is a C-style cast `(TypeName) X`. The type name is retained
	// verbatim for diagnostics but only used to coerce numeric kind
	// (int/float), per §4.4's "mostly ignored except for coercion".
	Cast struct {
		TypeName string
		X        Expr
	}

	// Apply is a function-call-shaped expression, e.g. a macro name
	// followed by a parenthesised argument list appearing where an
	// expression was expected (only meaningful in #if; see Eval).
	Apply struct {
		Name Ident
		Args []Expr
	}
)

func (e Ident) String() string     { return string(e) }
func (e IntLit) String() string    { return e.Value.String() }
func (e FloatLit) String() string  { return e.Value.String() }
func (e StringLit) String() string { return fmt.Sprintf("%q", e.Value.Text) }
func (e Defined) String() string   { return fmt.Sprintf("defined(%s)", e.Name) }
func (e Unary) String() string     { return e.Op + "(" + e.X.String() + ")" }
func (e Binary) String() string    { return fmt.Sprintf("(%s %s %s)", e.L, e.Op, e.R) }
func (e Ternary) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", e.Cond, e.Then, e.Else)
}
func (e Cast) String() string { return fmt.Sprintf("(%s)%s", e.TypeName, e.X) }
func (e Apply) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Name, strings.Join(args, ", "))
}
