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

package directive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chdr-project/chdr/internal/diag"
	"github.com/chdr-project/chdr/token"
)

func scanSrc(t *testing.T, src string) ([]Line, *diag.Sink) {
	t.Helper()
	lx := token.NewLexer([]byte(src))
	sink := &diag.Sink{}
	return Scan(lx.AllTokens(), sink), sink
}

func contentOfTokens(toks []token.Token) string {
	var sb strings.Builder
	for _, t := range toks {
		sb.WriteString(t.Content)
	}
	return sb.String()
}

func TestScanDefineObjectLike(t *testing.T) {
	lines, sink := scanSrc(t, "#define BIT 0x01\n")
	require.Empty(t, sink.All())
	require.Len(t, lines, 1)
	d, ok := lines[0].Directive.(Define)
	require.True(t, ok)
	assert.Equal(t, "BIT", d.Name)
	assert.Nil(t, d.Params)
	assert.Equal(t, "0x01", contentOfTokens(d.Body))
}

func TestScanDefineFunctionLike(t *testing.T) {
	lines, sink := scanSrc(t, "#define SETBIT(x,b) ((x) |= (b))\n")
	require.Empty(t, sink.All())
	d, ok := lines[0].Directive.(Define)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "b"}, d.Params)
	assert.False(t, d.Variadic)
	assert.Equal(t, "((x)|=(b))", contentOfTokens(d.Body))
}

func TestScanDefineWithSpaceBeforeParenIsObjectLike(t *testing.T) {
	// A space between the name and '(' makes this an object-like macro
	// whose body happens to start with a parenthesised expression.
	lines, _ := scanSrc(t, "#define V (1+2)\n")
	d, ok := lines[0].Directive.(Define)
	require.True(t, ok)
	assert.Nil(t, d.Params)
	assert.Equal(t, "(1+2)", contentOfTokens(d.Body))
}

func TestScanUndef(t *testing.T) {
	lines, _ := scanSrc(t, "#undef BIT\n")
	d, ok := lines[0].Directive.(Undef)
	require.True(t, ok)
	assert.Equal(t, "BIT", d.Name)
}

func TestScanIfAndElif(t *testing.T) {
	lines, sink := scanSrc(t, "#if defined M\n#elif X > 1\n#else\n#endif\n")
	require.Empty(t, sink.All())
	require.Len(t, lines, 4)

	ifD := lines[0].Directive.(Conditional)
	assert.Equal(t, If, ifD.Kind)
	assert.Equal(t, "definedM", contentOfTokens(ifD.Condition))

	elifD := lines[1].Directive.(Conditional)
	assert.Equal(t, Elif, elifD.Kind)
	assert.Equal(t, "X>1", contentOfTokens(elifD.Condition))

	_, isElse := lines[2].Directive.(Else)
	assert.True(t, isElse)
	_, isEndif := lines[3].Directive.(Endif)
	assert.True(t, isEndif)
}

func TestScanIfdefIfndefDesugar(t *testing.T) {
	lines, _ := scanSrc(t, "#ifdef M\n#ifndef N\n")
	ifdef := lines[0].Directive.(Conditional)
	assert.Equal(t, "definedM", contentOfTokens(ifdef.Condition))

	ifndef := lines[1].Directive.(Conditional)
	assert.Equal(t, "!definedN", contentOfTokens(ifndef.Condition))
}

func TestScanPragmaPackForms(t *testing.T) {
	lines, sink := scanSrc(t, "#pragma pack()\n#pragma pack(4)\n#pragma pack(push, r1, 16)\n#pragma pack(pop)\n")
	require.Empty(t, sink.All())
	require.Len(t, lines, 4)

	reset := lines[0].Directive.(Pragma)
	assert.Equal(t, PackReset, reset.Kind)

	set := lines[1].Directive.(Pragma)
	require.NotNil(t, set.Value)
	assert.Equal(t, 4, *set.Value)

	push := lines[2].Directive.(Pragma)
	assert.Equal(t, PackPush, push.Kind)
	assert.Equal(t, "r1", push.Label)
	require.NotNil(t, push.Value)
	assert.Equal(t, 16, *push.Value)

	pop := lines[3].Directive.(Pragma)
	assert.Equal(t, PackPop, pop.Kind)
	assert.Equal(t, "", pop.Label)
}

func TestScanPragmaOmpIgnoredSilently(t *testing.T) {
	lines, sink := scanSrc(t, "#pragma omp parallel\n")
	require.Empty(t, sink.All())
	require.Len(t, lines, 1)
	assert.Nil(t, lines[0].Directive)
}

func TestScanUnknownDirectiveWarns(t *testing.T) {
	lines, sink := scanSrc(t, "#frobnicate 1 2\n")
	require.Len(t, sink.All(), 1)
	assert.Equal(t, diag.KindUnknownDirective, sink.All()[0].Kind)
	u, ok := lines[0].Directive.(Unknown)
	require.True(t, ok)
	assert.Equal(t, "frobnicate", u.Keyword)
}

func TestScanTextLine(t *testing.T) {
	lines, sink := scanSrc(t, "int x;\n")
	require.Empty(t, sink.All())
	require.Len(t, lines, 1)
	assert.Nil(t, lines[0].Directive)
	assert.Equal(t, "intx;", contentOfTokens(lines[0].Text))
}

func TestScanBlankLinesProduceNoLine(t *testing.T) {
	lines, _ := scanSrc(t, "\n\n#define A 1\n\n")
	require.Len(t, lines, 1)
}
