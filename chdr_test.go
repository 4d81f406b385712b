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

package chdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chdr-project/chdr/internal/decltype"
)

// S1: conditional inclusion.
func TestScenarioConditionalInclusion(t *testing.T) {
	st, diags := ParseString(DefaultConfig(), "s1.h", `
#define M
#if defined M
#define A 1
#endif
#if !defined N
#define B 2
#endif
`)
	assert.Empty(t, diags)

	for _, name := range []string{"M", "A", "B"} {
		_, ok := st.Macros[name]
		assert.Truef(t, ok, "expected macro %s to be defined", name)
	}
	_, hasN := st.Macros["N"]
	assert.False(t, hasN)

	a, ok := st.Eval("A", st, 64)
	require.True(t, ok)
	assert.Equal(t, int64(1), a.AsInt64())

	b, ok := st.Eval("B", st, 64)
	require.True(t, ok)
	assert.Equal(t, int64(2), b.AsInt64())
}

// S2: function-like macro with nested invocation.
func TestScenarioFunctionLikeMacroNestedInvocation(t *testing.T) {
	st, diags := ParseString(DefaultConfig(), "s2.h", `
#define BIT 0x01
#define SETBIT(x,b) ((x) |= (b))
#define SETBITS(x,y) (SETBIT(x, BIT), SETBIT(y, BIT))
int z = SETBITS(1,2);
`)
	assert.Empty(t, diags)

	_, ok := st.FnMacros["SETBIT"]
	assert.True(t, ok)
	_, ok = st.FnMacros["SETBITS"]
	assert.True(t, ok)

	z, ok := st.Vars["z"]
	require.True(t, ok)
	require.NotNil(t, z.Value)
	assert.Equal(t, "int", z.Type.Base)
}

// S3: enum with expression values.
func TestScenarioEnumExpressionValues(t *testing.T) {
	st, diags := ParseString(DefaultConfig(), "s3.h", `
#define V 128
enum E { a=(V|1), b=6, c, d };
`)
	assert.Empty(t, diags)

	e, ok := st.Enums["E"]
	require.True(t, ok)
	want := map[string]int64{"a": 129, "b": 6, "c": 7, "d": 8}
	require.Len(t, e.Members, len(want))
	for _, m := range e.Members {
		assert.Equal(t, want[m.Name], m.Value, "member %s", m.Name)
	}

	for name, value := range want {
		v, ok := st.Values[name]
		require.True(t, ok, "values missing %s", name)
		assert.Equal(t, value, v.AsInt64())
	}
}

// S4: pack stack.
func TestScenarioPackStack(t *testing.T) {
	st, diags := ParseString(DefaultConfig(), "s4.h", `
#pragma pack()
#pragma pack(4)
#pragma pack(push, r1, 16)
#pragma pack(pop)
struct S { int x; };
`)
	assert.Empty(t, diags)

	s, ok := st.Structs["S"]
	require.True(t, ok)
	assert.Equal(t, 4, s.Pack)
}

// S5: complex declarators -- pointer-to-array vs. array-of-pointers.
func TestScenarioComplexDeclarators(t *testing.T) {
	st, diags := ParseString(DefaultConfig(), "s5.h", `
int (*prec_ptr_of_arr)[1], *(prec_arr_of_ptr[1]);
`)
	assert.Empty(t, diags)

	ptrOfArr, ok := st.Vars["prec_ptr_of_arr"]
	require.True(t, ok)
	assert.Equal(t, "int", ptrOfArr.Type.Base)
	require.Len(t, ptrOfArr.Type.Modifiers, 2)
	assert.Equal(t, decltype.Array, ptrOfArr.Type.Modifiers[0].Kind)
	assert.Equal(t, decltype.Pointer, ptrOfArr.Type.Modifiers[1].Kind)

	arrOfPtr, ok := st.Vars["prec_arr_of_ptr"]
	require.True(t, ok)
	assert.Equal(t, "int", arrOfPtr.Type.Base)
	require.Len(t, arrOfPtr.Type.Modifiers, 2)
	assert.Equal(t, decltype.Pointer, arrOfPtr.Type.Modifiers[0].Kind)
	assert.Equal(t, decltype.Array, arrOfPtr.Type.Modifiers[1].Kind)
}

// S6: typedef chain resolution.
func TestScenarioTypedefChainResolution(t *testing.T) {
	st, diags := ParseString(DefaultConfig(), "s6.h", `
typedef int type_int;
typedef type_int type_type_int;
type_type_int y;
`)
	assert.Empty(t, diags)

	y, ok := st.Vars["y"]
	require.True(t, ok)
	assert.Equal(t, "int", y.Type.Base)
	assert.Empty(t, y.Type.Modifiers)
}

func TestParseFilesReportsMissingHeader(t *testing.T) {
	_, _, err := ParseFiles(DefaultConfig(), []string{"does-not-exist.h"})
	require.Error(t, err)
}

func TestParseMultipleSourcesShareOneMacroTable(t *testing.T) {
	st, diags := Parse(DefaultConfig(), []Source{
		{Name: "a.h", Content: []byte("#define GREETING 1\n")},
		{Name: "b.h", Content: []byte("#if GREETING\nint ok = 1;\n#endif\n")},
	})
	assert.Empty(t, diags)

	_, hasMacro := st.Macros["GREETING"]
	assert.True(t, hasMacro)
	_, hasVar := st.Vars["ok"]
	assert.True(t, hasVar)
}

func TestConfigWithDefaultsMergesPrimitives(t *testing.T) {
	cfg := Config{PrimitiveTypes: []string{"my_word_t"}}.WithDefaults()
	assert.Contains(t, cfg.PrimitiveTypes, "my_word_t")
	assert.Contains(t, cfg.PrimitiveTypes, "int")
	assert.Equal(t, defaultMaxExpansion, cfg.MaxExpansion)
}
