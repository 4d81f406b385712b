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

package decltype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chdr-project/chdr/internal/diag"
	"github.com/chdr-project/chdr/token"
)

type fakeLookup struct {
	primitives map[string]bool
	typedefs   map[string]Ref
}

func (f fakeLookup) IsPrimitive(name string) bool { return f.primitives[name] }
func (f fakeLookup) Typedef(name string) (Ref, bool) {
	r, ok := f.typedefs[name]
	return r, ok
}

// S6: typedef int type_int; typedef type_int type_type_int; type_type_int y;
func TestResolveTransitiveTypedefChainToPrimitive(t *testing.T) {
	lk := fakeLookup{
		primitives: map[string]bool{"int": true},
		typedefs: map[string]Ref{
			"type_int":      {Base: "int"},
			"type_type_int": {Base: "type_int"},
		},
	}
	c := Canonicalizer{Lookup: lk}
	sink := &diag.Sink{}

	got := c.Resolve(Ref{Base: "type_type_int"}, token.CursorInit, sink)
	assert.Empty(t, sink.All())
	assert.Equal(t, "int", got.Base)
	assert.Empty(t, got.Modifiers)
}

func TestResolveAccumulatesModifiersInnerFirst(t *testing.T) {
	// typedef int *IntPtr; IntPtr *p; -> base int, modifiers [pointer, pointer]
	lk := fakeLookup{
		primitives: map[string]bool{"int": true},
		typedefs: map[string]Ref{
			"IntPtr": {Base: "int", Modifiers: []Modifier{{Kind: Pointer}}},
		},
	}
	c := Canonicalizer{Lookup: lk}
	sink := &diag.Sink{}

	got := c.Resolve(Ref{Base: "IntPtr", Modifiers: []Modifier{{Kind: Pointer}}}, token.CursorInit, sink)
	assert.Empty(t, sink.All())
	assert.Equal(t, "int", got.Base)
	require.Len(t, got.Modifiers, 2)
	assert.Equal(t, Pointer, got.Modifiers[0].Kind)
	assert.Equal(t, Pointer, got.Modifiers[1].Kind)
}

func TestResolveStopsAtAggregateName(t *testing.T) {
	lk := fakeLookup{
		primitives: map[string]bool{"int": true},
		typedefs:   map[string]Ref{},
	}
	c := Canonicalizer{Lookup: lk}
	sink := &diag.Sink{}

	got := c.Resolve(Ref{Base: "struct#1"}, token.CursorInit, sink)
	assert.Empty(t, sink.All())
	assert.Equal(t, "struct#1", got.Base)
}

func TestResolveDetectsPlainCycle(t *testing.T) {
	lk := fakeLookup{
		primitives: map[string]bool{},
		typedefs: map[string]Ref{
			"A": {Base: "B"},
			"B": {Base: "A"},
		},
	}
	c := Canonicalizer{Lookup: lk}
	sink := &diag.Sink{}

	got := c.Resolve(Ref{Base: "A"}, token.CursorInit, sink)
	require.Len(t, sink.All(), 1)
	assert.Equal(t, diag.KindTypedefCycle, sink.All()[0].Kind)
	assert.True(t, got.Unresolved)
}

func TestResolvePointerMediatedCycleIsLegal(t *testing.T) {
	// typedef NodeT2 *NodeT; typedef NodeT *NodeT2; -- cycles only
	// through pointer indirection, never flagged.
	lk := fakeLookup{
		primitives: map[string]bool{},
		typedefs: map[string]Ref{
			"NodeT":  {Base: "NodeT2", Modifiers: []Modifier{{Kind: Pointer}}},
			"NodeT2": {Base: "NodeT", Modifiers: []Modifier{{Kind: Pointer}}},
		},
	}
	c := Canonicalizer{Lookup: lk}
	sink := &diag.Sink{}

	got := c.Resolve(Ref{Base: "NodeT"}, token.CursorInit, sink)
	assert.Empty(t, sink.All())
	assert.Equal(t, "NodeT", got.Base)
}
