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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chdr-project/chdr/internal/diag"
	"github.com/chdr-project/chdr/token"
)

// testResolver is a minimal Resolver backed by plain maps, used to drive the
// evaluator in isolation from the macro table / declaration store.
type testResolver struct {
	macros map[string][]token.Token
	enums  map[string]int64
}

func (r testResolver) Defined(name string) bool {
	_, ok := r.macros[name]
	return ok
}
func (r testResolver) Expand(name string) ([]token.Token, bool) {
	toks, ok := r.macros[name]
	return toks, ok
}
func (r testResolver) EnumValue(name string) (int64, bool) {
	v, ok := r.enums[name]
	return v, ok
}

func tokensOf(t *testing.T, src string) []token.Token {
	t.Helper()
	lx := token.NewLexer([]byte(src))
	return lx.AllTokens()
}

func parseExpr(t *testing.T, src string) Expr {
	t.Helper()
	e, err := NewParser(tokensOf(t, src)).Parse()
	require.NoError(t, err)
	return e
}

func TestEvalConditionalArithmetic(t *testing.T) {
	r := testResolver{macros: map[string][]token.Token{
		"V": tokensOf(t, "128"),
	}}
	sink := &diag.Sink{}

	got := Eval(parseExpr(t, "(V|1)"), r, sink, ConditionalContext, 8)
	assert.Equal(t, Int(129), got)
}

func TestEvalDefined(t *testing.T) {
	r := testResolver{macros: map[string][]token.Token{"M": nil}}
	sink := &diag.Sink{}

	assert.True(t, EvalCondition(parseExpr(t, "defined M"), r, sink, 8))
	assert.True(t, EvalCondition(parseExpr(t, "defined(M)"), r, sink, 8))
	assert.True(t, EvalCondition(parseExpr(t, "!defined N"), r, sink, 8))
}

func TestEvalTernaryAndShift(t *testing.T) {
	r := testResolver{}
	sink := &diag.Sink{}
	got := Eval(parseExpr(t, "1 ? (1<<4) : 0"), r, sink, ConstantContext, 8)
	assert.Equal(t, Int(16), got)
}

func TestEvalDivisionByZeroWarns(t *testing.T) {
	r := testResolver{}
	sink := &diag.Sink{}
	got := Eval(parseExpr(t, "1/0"), r, sink, ConstantContext, 8)
	assert.Equal(t, Int(0), got)
	require.Len(t, sink.All(), 1)
	assert.Equal(t, diag.KindDivisionByZero, sink.All()[0].Kind)
}

func TestEvalUnresolvedIdentifierIsSymbolicOutsideConditions(t *testing.T) {
	r := testResolver{}
	sink := &diag.Sink{}
	got := Eval(parseExpr(t, "UNKNOWN_THING"), r, sink, ConstantContext, 8)
	assert.Equal(t, SymbolicKind, got.Kind)
	assert.Equal(t, "UNKNOWN_THING", got.String())
}

func TestEvalEnumMember(t *testing.T) {
	r := testResolver{enums: map[string]int64{"RED": 2}}
	sink := &diag.Sink{}
	got := Eval(parseExpr(t, "RED"), r, sink, ConstantContext, 8)
	assert.Equal(t, Int(2), got)
}

func TestEvalStringConcatenation(t *testing.T) {
	r := testResolver{}
	sink := &diag.Sink{}
	got := Eval(parseExpr(t, `"foo" "bar"`), r, sink, ConstantContext, 8)
	assert.Equal(t, Str("foobar"), got)
}

func TestEvalCast(t *testing.T) {
	r := testResolver{}
	sink := &diag.Sink{}
	got := Eval(parseExpr(t, "(float)3"), r, sink, ConstantContext, 8)
	assert.Equal(t, Float(3), got)
}
