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

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chdr-project/chdr/internal/decltype"
	"github.com/chdr-project/chdr/internal/diag"
	"github.com/chdr-project/chdr/internal/macro"
	"github.com/chdr-project/chdr/token"
)

func TestDefineTypeThenResolveToPrimitive(t *testing.T) {
	sink := &diag.Sink{}
	s := New(sink)
	s.SetPrimitives([]string{"int"})

	s.DefineType("my_int", decltype.Ref{Base: "int"}, token.CursorInit)
	got := s.Resolve(decltype.Ref{Base: "my_int"}, token.CursorInit)

	assert.Equal(t, "int", got.Base)
	assert.Empty(t, sink.All())
}

func TestIterationOrderPreserved(t *testing.T) {
	s := New(&diag.Sink{})
	s.SetPrimitives([]string{"int"})
	s.DefineType("a", decltype.Ref{Base: "int"}, token.CursorInit)
	s.DefineType("c", decltype.Ref{Base: "int"}, token.CursorInit)
	s.DefineType("b", decltype.Ref{Base: "int"}, token.CursorInit)

	assert.Equal(t, []string{"a", "c", "b"}, s.TypeOrder)
}

func TestAddEnumPopulatesValues(t *testing.T) {
	s := New(&diag.Sink{})
	s.AddEnum(&Enum{
		Name: "Color",
		Members: []EnumMember{
			{Name: "Red", Value: 0},
			{Name: "Green", Value: 1},
		},
	})

	v, ok := s.EnumValue("Green")
	assert.True(t, ok)
	assert.Equal(t, int64(1), v)
}

func TestFinalizeFlagsDuplicateStructDefinition(t *testing.T) {
	sink := &diag.Sink{}
	s := New(sink)
	locA := token.CursorInit
	locB := locA.AdvancedBy("\n")

	s.AddStruct(&Record{Name: "Point", Location: locA})
	s.AddStruct(&Record{Name: "Point", Location: locB})
	s.Finalize()

	diags := sink.All()
	require.Len(t, diags, 1)
	assert.Equal(t, diag.KindDuplicateDefinition, diags[0].Kind)
	assert.Equal(t, locB, diags[0].Location)
}

func TestFinalizeIgnoresAnonymousAggregates(t *testing.T) {
	sink := &diag.Sink{}
	s := New(sink)
	s.AddStruct(&Record{Name: ""})
	s.AddStruct(&Record{Name: ""})
	s.Finalize()

	assert.Empty(t, sink.All())
}

func TestImportMacrosSplitsByFunctionLike(t *testing.T) {
	tbl := macro.NewTable()
	tbl.Define(macro.Macro{Name: "OBJ"})
	tbl.Define(macro.Macro{Name: "FN", Params: []string{"x"}})

	s := New(&diag.Sink{})
	s.ImportMacros(tbl)

	_, objOK := s.Macros["OBJ"]
	_, fnOK := s.FnMacros["FN"]
	assert.True(t, objOK)
	assert.True(t, fnOK)
}
