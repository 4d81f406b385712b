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

// Package store holds the definition store (§3, §4.7): the finalized,
// read-only catalog of every declaration recognized from a set of headers,
// keyed by kind then name, with insertion order preserved per kind.
package store

import (
	"strings"

	"github.com/chdr-project/chdr/internal/collections"
	"github.com/chdr-project/chdr/internal/decltype"
	"github.com/chdr-project/chdr/internal/diag"
	"github.com/chdr-project/chdr/internal/expr"
	"github.com/chdr-project/chdr/internal/macro"
	"github.com/chdr-project/chdr/token"
)

// Field is one struct/union member (§3's Struct/Union record field tuple).
type Field struct {
	Name     string // empty for an anonymous-aggregate-promoted member
	Type     decltype.Ref
	BitWidth *int64
	Default  *expr.Value
	// Inline is set when Name is empty and Type.Base references an
	// anonymous nested struct/union's synthetic id, so callers can look the
	// inline record back up without guessing from the Type reference alone.
	Inline string
}

// Record is one struct or union definition.
type Record struct {
	Name     string
	IsUnion  bool
	Fields   []Field
	Pack     int
	Location token.Cursor
}

// EnumMember is one (name, value) pair of an Enum, in declared order.
type EnumMember struct {
	Name  string
	Value int64
}

// Enum is one enum definition.
type Enum struct {
	Name     string
	Members  []EnumMember
	Location token.Cursor
}

// Function is one function prototype.
type Function struct {
	Name       string
	Return     decltype.Ref
	Params     []decltype.Param
	CallConv   string
	Qualifiers []decltype.Qualifier
	Variadic   bool
	Location   token.Cursor
}

// Variable is one variable declaration.
type Variable struct {
	Name     string
	Type     decltype.Ref
	Value    *expr.Value // nil if there was no initializer
	Location token.Cursor
}

// Store is the finalized, read-only (after Finalize) definition catalog.
// Insertion order within each kind is preserved via the *Order slices.
type Store struct {
	Macros   map[string]macro.Macro
	FnMacros map[string]macro.Macro
	Types    map[string]decltype.Ref // typedef name -> its raw (unresolved) Type reference
	Structs  map[string]*Record
	Unions   map[string]*Record
	Enums    map[string]*Enum
	Funcs    map[string]*Function
	Vars     map[string]*Variable
	Values   map[string]expr.Value

	TypeOrder   []string
	StructOrder []string
	UnionOrder  []string
	EnumOrder   []string
	FuncOrder   []string
	VarOrder    []string
	ValueOrder  []string

	canon         decltype.Canonicalizer
	diags         *diag.Sink
	finalized     bool
	primitiveHint map[string]bool

	// insertions records every (kind, name) pair as it is defined, including
	// repeats, so Finalize can run collections.FindDuplicates over it and
	// report §3's "all other records are immutable once inserted" rule.
	insertions []insertion
}

type insertion struct {
	kind kindTag
	name string
	loc  token.Cursor
}

type kindTag string

const (
	kindType   kindTag = "type"
	kindStruct kindTag = "struct"
	kindUnion  kindTag = "union"
	kindEnum   kindTag = "enum"
	kindFunc   kindTag = "func"
	kindVar    kindTag = "var"
)

func New(diags *diag.Sink) *Store {
	s := &Store{
		Macros:        map[string]macro.Macro{},
		FnMacros:      map[string]macro.Macro{},
		Types:         map[string]decltype.Ref{},
		Structs:       map[string]*Record{},
		Unions:        map[string]*Record{},
		Enums:         map[string]*Enum{},
		Funcs:         map[string]*Function{},
		Vars:          map[string]*Variable{},
		Values:        map[string]expr.Value{},
		diags:         diags,
		primitiveHint: map[string]bool{},
	}
	s.canon = decltype.Canonicalizer{Lookup: s}
	return s
}

// IsPrimitive and Typedef implement decltype.Lookup so the Store can resolve
// its own Type references.
func (s *Store) IsPrimitive(name string) bool {
	_, ok := s.primitiveHint[name]
	return ok
}

func (s *Store) Typedef(name string) (decltype.Ref, bool) {
	r, ok := s.Types[name]
	return r, ok
}

// SetPrimitives adds the configured primitive-type spellings (§6's
// Config.PrimitiveTypes) to the store's primitive set. Spellings already
// registered (including those from AddPrimitive) are kept, so calling it
// again before parsing each further source loses nothing.
func (s *Store) SetPrimitives(names []string) {
	for _, n := range names {
		s.primitiveHint[n] = true
	}
}

// AddPrimitive registers one more primitive spelling discovered while
// parsing (e.g. a multi-word combination like "unsigned long long" built
// from core type keywords, which is inherently primitive regardless of
// whether the caller's configured primitive-type list happens to spell it
// out verbatim).
func (s *Store) AddPrimitive(name string) {
	s.primitiveHint[name] = true
}

// DefineType registers a typedef name's raw Type reference. Per §3 a typedef
// is immutable once inserted; a second definition of the same name is
// recorded as a duplicate at Finalize rather than silently overriding (that
// silent-override behaviour is reserved for object/function-like macros).
func (s *Store) DefineType(name string, ref decltype.Ref, loc token.Cursor) {
	if _, exists := s.Types[name]; !exists {
		s.TypeOrder = append(s.TypeOrder, name)
		s.Types[name] = ref
	}
	s.insertions = append(s.insertions, insertion{kindType, name, loc})
}

func (s *Store) AddStruct(r *Record) {
	s.addAggregate(r, false)
}

func (s *Store) AddUnion(r *Record) {
	s.addAggregate(r, true)
}

func (s *Store) addAggregate(r *Record, isUnion bool) {
	dest, order, kind := s.Structs, &s.StructOrder, kindStruct
	if isUnion {
		dest, order, kind = s.Unions, &s.UnionOrder, kindUnion
	}
	if _, exists := dest[r.Name]; !exists {
		*order = append(*order, r.Name)
		dest[r.Name] = r
	}
	if r.Name != "" {
		s.insertions = append(s.insertions, insertion{kind, r.Name, r.Location})
	}
}

func (s *Store) AddEnum(e *Enum) {
	if _, exists := s.Enums[e.Name]; !exists {
		s.EnumOrder = append(s.EnumOrder, e.Name)
		s.Enums[e.Name] = e
	}
	if e.Name != "" {
		s.insertions = append(s.insertions, insertion{kindEnum, e.Name, e.Location})
	}
	for _, m := range e.Members {
		s.SetValue(m.Name, expr.Int(m.Value))
	}
}

func (s *Store) AddFunc(f *Function) {
	if _, exists := s.Funcs[f.Name]; !exists {
		s.FuncOrder = append(s.FuncOrder, f.Name)
		s.Funcs[f.Name] = f
	}
	s.insertions = append(s.insertions, insertion{kindFunc, f.Name, f.Location})
}

func (s *Store) AddVar(v *Variable) {
	if _, exists := s.Vars[v.Name]; !exists {
		s.VarOrder = append(s.VarOrder, v.Name)
		s.Vars[v.Name] = v
	}
	s.insertions = append(s.insertions, insertion{kindVar, v.Name, v.Location})
}

func (s *Store) SetValue(name string, v expr.Value) {
	if _, exists := s.Values[name]; !exists {
		s.ValueOrder = append(s.ValueOrder, name)
	}
	s.Values[name] = v
}

// Resolve applies §4.6's canonicaliser to ref.
func (s *Store) Resolve(ref decltype.Ref, loc token.Cursor) decltype.Ref {
	return s.canon.Resolve(ref, loc, s.diags)
}

// Eval reduces name's macro body or variable initializer via §4.4, as
// resolved through the given expression Resolver (typically the macro
// table composed with the store's own enum lookup).
func (s *Store) Eval(name string, r expr.Resolver, maxExpansion int) (expr.Value, bool) {
	if v, ok := s.Values[name]; ok {
		return v, true
	}
	if v, ok := s.Vars[name]; ok && v.Value != nil {
		return *v.Value, true
	}
	if m, ok := s.Macros[name]; ok {
		e, err := expr.NewParser(m.Body).Parse()
		if err != nil {
			return expr.Value{}, false
		}
		return expr.Eval(e, r, s.diags, expr.ConstantContext, maxExpansion), true
	}
	return expr.Value{}, false
}

// EnumValue implements expr.Resolver's enum-lookup seam: any name recorded
// as an enum member's value is surfaced here for constant-expression
// evaluation outside of preprocessor conditions.
func (s *Store) EnumValue(name string) (int64, bool) {
	v, ok := s.Values[name]
	if !ok || v.Kind != expr.Int64Kind {
		return 0, false
	}
	return v.AsInt64(), true
}

// Defined and Expand complete the Store's implementation of expr.Resolver
// against its own finalized Macros/FnMacros kinds (populated by
// ImportMacros at end-of-input), so a caller of Eval against an already-
// parsed Store can pass the Store itself as the resolver without needing
// the live macro.Table that produced it (that live Table is only needed
// while a parse is still in progress, as declparser's own resolver does).
func (s *Store) Defined(name string) bool {
	if _, ok := s.Macros[name]; ok {
		return true
	}
	_, ok := s.FnMacros[name]
	return ok
}

// Expand mirrors macro.Table.Expand: only an object-like macro's
// unexpanded body is handed back; a function-like macro's bare name is not
// an invocation.
func (s *Store) Expand(name string) ([]token.Token, bool) {
	m, ok := s.Macros[name]
	if !ok {
		return nil, false
	}
	return m.Body, true
}

// Finalize marks the store read-only and reports a duplicate-definition
// diagnostic for every type/struct/union/enum/function/variable name that
// was inserted more than once (§3: "all other records are immutable once
// inserted", unlike a macro's silently-overriding redefinition).
func (s *Store) Finalize() {
	keys := make([]string, len(s.insertions))
	lastLoc := make(map[string]token.Cursor, len(s.insertions))
	for i, ins := range s.insertions {
		key := string(ins.kind) + ":" + ins.name
		keys[i] = key
		lastLoc[key] = ins.loc
	}
	for _, dup := range collections.FindDuplicates(keys) {
		kind, name, _ := strings.Cut(dup, ":")
		s.diags.Warn(diag.KindDuplicateDefinition, lastLoc[dup], "duplicate %s definition %q", kind, name)
	}
	s.finalized = true
}

func (s *Store) Diagnostics() []diag.Diagnostic {
	return s.diags.All()
}

// ImportMacros copies the macro table's final state (after every directive
// in the translation unit has run) into the store's own Macros/FnMacros
// maps, so those maps hold exactly what was defined at end-of-input
// (§4.7) without the store needing to watch every
// #define/#undef as it happens.
func (s *Store) ImportMacros(t *macro.Table) {
	for _, name := range t.Names() {
		m, ok := t.Lookup(name)
		if !ok {
			continue
		}
		if m.IsFunctionLike() {
			s.FnMacros[name] = m
		} else {
			s.Macros[name] = m
		}
	}
}
