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

package expr

import (
	"github.com/chdr-project/chdr/internal/diag"
	"github.com/chdr-project/chdr/token"
)

// Resolver supplies the environment an Eval call reduces identifiers
// against: the macro table (for `defined` and for macro-name identifiers)
// and, outside of preprocessor conditions, the enum-member namespace.
type Resolver interface {
	// Defined reports whether name is currently #define'd.
	Defined(name string) bool
	// Expand returns the unexpanded replacement tokens of an object-like
	// macro named name, or ok=false if name is not an object-like macro.
	Expand(name string) (tokens []token.Token, ok bool)
	// EnumValue returns the integer value of an enum member named name.
	EnumValue(name string) (int64, bool)
}

// Context controls how Eval treats an identifier that resolves to neither a
// macro nor an enum member. Conditional directives (#if/#elif) follow the C
// rule that an undefined identifier is 0; general constant-expression
// evaluation instead preserves the fragment as a Symbolic value per §4.4.
type Context int

const (
	ConditionalContext Context = iota
	ConstantContext
)

// Eval reduces expr to a Value, recursively expanding macro identifiers
// (bounded by maxDepth, matching §4.2's rescan cap) and reporting
// diagnostics for the warning-level conditions in §7 (division by zero,
// expansion depth exceeded) rather than failing.
func Eval(e Expr, r Resolver, diags *diag.Sink, ctx Context, maxDepth int) Value {
	return (&evaluator{r: r, diags: diags, ctx: ctx, maxDepth: maxDepth}).eval(e, maxDepth)
}

// EvalCondition evaluates expr as a preprocessor condition and returns its
// truthiness.
func EvalCondition(e Expr, r Resolver, diags *diag.Sink, maxDepth int) bool {
	return Eval(e, r, diags, ConditionalContext, maxDepth).AsBool()
}

type evaluator struct {
	r        Resolver
	diags    *diag.Sink
	ctx      Context
	maxDepth int
}

func (ev *evaluator) eval(e Expr, depth int) Value {
	switch n := e.(type) {
	case Ident:
		return ev.evalIdent(n, depth)
	case IntLit:
		return n.Value
	case FloatLit:
		return n.Value
	case StringLit:
		return n.Value
	case Defined:
		return Int(boolToInt(ev.r.Defined(string(n.Name))))
	case Unary:
		return ev.evalUnary(n, depth)
	case Binary:
		return ev.evalBinary(n, depth)
	case Ternary:
		if ev.eval(n.Cond, depth).AsBool() {
			return ev.eval(n.Then, depth)
		}
		return ev.eval(n.Else, depth)
	case Cast:
		return ev.evalCast(n, depth)
	case Apply:
		// Macro invocations inside an expression are resolved by the
		// preprocessor before the expression reaches here (function-like
		// macros are substituted at the token level, per §4.2). By the
		// time Eval sees an Apply node the name wasn't a known macro;
		// treat it as "defined" for backward compatibility with bare
		// conditions like `#if SOME_FUNC(1)` that a heuristic parser
		// cannot fully resolve.
		return Int(1)
	default:
		return Value{}
	}
}

func (ev *evaluator) evalIdent(n Ident, depth int) Value {
	name := string(n)
	if toks, ok := ev.r.Expand(name); ok {
		if depth <= 0 {
			ev.diags.Warn(diag.KindExpansionDepthExceeded, token.CursorInit, "expansion depth exceeded evaluating %q", name)
			return Int(0)
		}
		sub, err := NewParser(toks).Parse()
		if err != nil {
			return Sym(toks)
		}
		return ev.eval(sub, depth-1)
	}
	if v, ok := ev.r.EnumValue(name); ok {
		return Int(v)
	}
	if ev.ctx == ConditionalContext {
		return Int(0)
	}
	return Sym([]token.Token{{Type: token.Identifier, Content: name}})
}

func (ev *evaluator) evalUnary(n Unary, depth int) Value {
	x := ev.eval(n.X, depth)
	switch n.Op {
	case "!":
		return Int(boolToInt(!x.AsBool()))
	case "~":
		return Int(^x.AsInt64())
	case "-":
		if x.IsFloat() {
			return Float(-x.F64)
		}
		return Int(-x.AsInt64())
	case "+":
		return x
	default:
		return Int(0)
	}
}

func (ev *evaluator) evalCast(n Cast, depth int) Value {
	x := ev.eval(n.X, depth)
	switch n.TypeName {
	case "float", "double":
		if x.IsFloat() {
			return x
		}
		return Float(float64(x.AsInt64()))
	default:
		if x.IsFloat() {
			return Int(int64(x.F64))
		}
		return x
	}
}

func (ev *evaluator) evalBinary(n Binary, depth int) Value {
	switch n.Op {
	case "&&":
		l := ev.eval(n.L, depth)
		if !l.AsBool() {
			return Int(0)
		}
		return Int(boolToInt(ev.eval(n.R, depth).AsBool()))
	case "||":
		l := ev.eval(n.L, depth)
		if l.AsBool() {
			return Int(1)
		}
		return Int(boolToInt(ev.eval(n.R, depth).AsBool()))
	}

	l, r := ev.eval(n.L, depth), ev.eval(n.R, depth)
	if l.IsFloat() || r.IsFloat() {
		return ev.evalFloatBinary(n.Op, l, r)
	}
	return ev.evalIntBinary(n.Op, l, r)
}

func (ev *evaluator) evalIntBinary(op string, l, r Value) Value {
	a, b := l.AsInt64(), r.AsInt64()
	switch op {
	case "+":
		return Int(a + b)
	case "-":
		return Int(a - b)
	case "*":
		return Int(a * b)
	case "/":
		if b == 0 {
			ev.diags.Warn(diag.KindDivisionByZero, token.CursorInit, "division by zero")
			return Int(0)
		}
		return Int(a / b)
	case "%":
		if b == 0 {
			ev.diags.Warn(diag.KindDivisionByZero, token.CursorInit, "modulo by zero")
			return Int(0)
		}
		return Int(a % b)
	case "&":
		return Int(a & b)
	case "|":
		return Int(a | b)
	case "^":
		return Int(a ^ b)
	case "<<":
		return Int(a << uint(b))
	case ">>":
		return Int(a >> uint(b))
	case "==":
		return Int(boolToInt(a == b))
	case "!=":
		return Int(boolToInt(a != b))
	case "<":
		return Int(boolToInt(a < b))
	case "<=":
		return Int(boolToInt(a <= b))
	case ">":
		return Int(boolToInt(a > b))
	case ">=":
		return Int(boolToInt(a >= b))
	default:
		return Int(0)
	}
}

func (ev *evaluator) evalFloatBinary(op string, l, r Value) Value {
	toF := func(v Value) float64 {
		if v.IsFloat() {
			return v.F64
		}
		return float64(v.AsInt64())
	}
	a, b := toF(l), toF(r)
	switch op {
	case "+":
		return Float(a + b)
	case "-":
		return Float(a - b)
	case "*":
		return Float(a * b)
	case "/":
		if b == 0 {
			ev.diags.Warn(diag.KindDivisionByZero, token.CursorInit, "division by zero")
			return Float(0)
		}
		return Float(a / b)
	case "==":
		return Int(boolToInt(a == b))
	case "!=":
		return Int(boolToInt(a != b))
	case "<":
		return Int(boolToInt(a < b))
	case "<=":
		return Int(boolToInt(a <= b))
	case ">":
		return Int(boolToInt(a > b))
	case ">=":
		return Int(boolToInt(a >= b))
	default:
		return Int(0)
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
