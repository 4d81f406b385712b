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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chdr-project/chdr/internal/decltype"
	"github.com/chdr-project/chdr/internal/diag"
	"github.com/chdr-project/chdr/store"
	"github.com/chdr-project/chdr/token"
)

type emptyResolver struct{}

func (emptyResolver) Defined(string) bool                { return false }
func (emptyResolver) Expand(string) ([]token.Token, bool) { return nil, false }
func (emptyResolver) EnumValue(string) (int64, bool)      { return 0, false }

var defaultConfig = Config{
	Primitives: []string{"size_t", "int8_t"},
}

func parse(t *testing.T, src string, cfg Config) (*store.Store, *diag.Sink) {
	t.Helper()
	diags := &diag.Sink{}
	st := store.New(diags)
	toks := token.NewLexer([]byte(src)).AllTokens()
	Parse(toks, cfg, st, func(token.Cursor) int { return 0 }, emptyResolver{}, diags)
	st.Finalize()
	return st, diags
}

func TestParseTypedefSimple(t *testing.T) {
	st, diags := parse(t, "typedef unsigned long long u64;\n", defaultConfig)
	require.Empty(t, diags.All())
	ref, ok := st.Typedef("u64")
	require.True(t, ok)
	assert.Equal(t, "unsigned long long", ref.Base)
}

func TestParseStructWithBitfields(t *testing.T) {
	st, diags := parse(t, `
struct Flags {
	int a : 1;
	int b : 2;
};
`, defaultConfig)
	require.Empty(t, diags.All())
	r, ok := st.Structs["Flags"]
	require.True(t, ok)
	require.Len(t, r.Fields, 2)
	require.NotNil(t, r.Fields[0].BitWidth)
	assert.Equal(t, int64(1), *r.Fields[0].BitWidth)
	assert.Equal(t, int64(2), *r.Fields[1].BitWidth)
}

func TestParseAnonymousUnionPromoted(t *testing.T) {
	st, diags := parse(t, `
struct Outer {
	int tag;
	union {
		int i;
		float f;
	};
};
`, defaultConfig)
	require.Empty(t, diags.All())
	r, ok := st.Structs["Outer"]
	require.True(t, ok)
	require.Len(t, r.Fields, 2)
	assert.Equal(t, "tag", r.Fields[0].Name)
	assert.Empty(t, r.Fields[1].Name)
	assert.NotEmpty(t, r.Fields[1].Inline)

	_, unionOK := st.Unions[r.Fields[1].Inline]
	assert.True(t, unionOK)
}

// S3: enum with a mix of explicit and omitted member values.
func TestParseEnumExplicitAndInferredValues(t *testing.T) {
	st, diags := parse(t, `
enum Color {
	Red = 5,
	Green,
	Blue = 10,
	Violet,
};
`, defaultConfig)
	require.Empty(t, diags.All())
	e, ok := st.Enums["Color"]
	require.True(t, ok)
	want := map[string]int64{"Red": 5, "Green": 6, "Blue": 10, "Violet": 11}
	for _, m := range e.Members {
		assert.Equal(t, want[m.Name], m.Value, m.Name)
	}
}

func TestParseFunctionPrototypeWithVariadic(t *testing.T) {
	st, diags := parse(t, "int printf(const char *fmt, ...);\n", defaultConfig)
	require.Empty(t, diags.All())
	f, ok := st.Funcs["printf"]
	require.True(t, ok)
	assert.True(t, f.Variadic)
	require.Len(t, f.Params, 1)
	assert.Equal(t, "fmt", f.Params[0].Name)
	assert.Equal(t, "int", f.Return.Base)
}

func TestParseVariableWithInitializer(t *testing.T) {
	st, diags := parse(t, "int count = 42;\n", defaultConfig)
	require.Empty(t, diags.All())
	v, ok := st.Vars["count"]
	require.True(t, ok)
	require.NotNil(t, v.Value)
	assert.Equal(t, int64(42), v.Value.AsInt64())
}

// S5: a pointer-to-array declarator and an array-of-pointers declarator
// must produce opposite modifier orderings.
func TestParseDeclaratorPrecedencePointerVsArray(t *testing.T) {
	st, diags := parse(t, `
typedef int (*prec_ptr_of_arr)[1];
typedef int *prec_arr_of_ptr[1];
`, defaultConfig)
	require.Empty(t, diags.All())

	ptrOfArr, ok := st.Typedef("prec_ptr_of_arr")
	require.True(t, ok)
	require.Len(t, ptrOfArr.Modifiers, 2)
	assert.Equal(t, decltype.Array, ptrOfArr.Modifiers[0].Kind)
	assert.Equal(t, decltype.Pointer, ptrOfArr.Modifiers[1].Kind)

	arrOfPtr, ok := st.Typedef("prec_arr_of_ptr")
	require.True(t, ok)
	require.Len(t, arrOfPtr.Modifiers, 2)
	assert.Equal(t, decltype.Pointer, arrOfPtr.Modifiers[0].Kind)
	assert.Equal(t, decltype.Array, arrOfPtr.Modifiers[1].Kind)
}

func TestParseFunctionPointerVariable(t *testing.T) {
	st, diags := parse(t, "int (*callback)(int, int);\n", defaultConfig)
	require.Empty(t, diags.All())
	v, ok := st.Vars["callback"]
	require.True(t, ok)
	require.Len(t, v.Type.Modifiers, 2)
	assert.Equal(t, decltype.Function, v.Type.Modifiers[0].Kind)
	assert.Equal(t, decltype.Pointer, v.Type.Modifiers[1].Kind)
}

func TestUnknownTypeNameAcceptedVerbatim(t *testing.T) {
	st, diags := parse(t, "FARPROC address_of_fn;\n", defaultConfig)
	require.Empty(t, diags.All())
	v, ok := st.Vars["address_of_fn"]
	require.True(t, ok)
	assert.Equal(t, "FARPROC", v.Type.Base)
}

func TestReplacementTableDropsAttributeWrapper(t *testing.T) {
	cfg := defaultConfig
	cfg.Replacements = map[string]string{"__declspec_export": ""}
	st, diags := parse(t, "__declspec_export int exported_value;\n", cfg)
	require.Empty(t, diags.All())
	_, ok := st.Vars["exported_value"]
	assert.True(t, ok)
}

func TestReplacementTableDropsDeclspecArgumentWrapper(t *testing.T) {
	cfg := defaultConfig
	cfg.Replacements = map[string]string{"__declspec": ""}
	st, diags := parse(t, "__declspec(dllexport) int x;\n", cfg)
	require.Empty(t, diags.All())
	v, ok := st.Vars["x"]
	require.True(t, ok)
	assert.Equal(t, "int", v.Type.Base)
}

func TestReplacementTableUnwrapsArgumentWrapper(t *testing.T) {
	cfg := defaultConfig
	cfg.Replacements = map[string]string{"DL_EXPORT": "x"}
	st, diags := parse(t, "DL_EXPORT(int) y;\n", cfg)
	require.Empty(t, diags.All())
	v, ok := st.Vars["y"]
	require.True(t, ok)
	assert.Equal(t, "int", v.Type.Base)
}

func TestSyntaxErrorRecoversToNextDeclaration(t *testing.T) {
	st, diags := parse(t, "int a = ;;\nint b;\n", defaultConfig)
	_, ok := st.Vars["b"]
	assert.True(t, ok)
	_ = diags
}
