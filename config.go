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

// Package chdr wires the header-processing pipeline (token -> preprocessor
// -> declparser -> store) into the public interface described by spec.md
// §6: Config, Parse/ParseFiles/ParseString, and the Diagnostic list.
package chdr

import (
	"maps"
	"slices"

	"github.com/chdr-project/chdr/presets"
)

// defaultMaxExpansion bounds macro rescan/argument-expansion depth (§4.2,
// §6) when a Config leaves MaxExpansion at its zero value.
const defaultMaxExpansion = 4096

// defaultPrimitives is the built-in primitive-type vocabulary (§3's base
// name list); a caller's Config.PrimitiveTypes is appended to, not
// substituted for, this set by WithDefaults.
var defaultPrimitives = []string{
	"void", "char", "short", "int", "long", "float", "double",
	"signed", "unsigned", "_Bool",
	"size_t", "ssize_t", "time_t",
	"int8_t", "int16_t", "int32_t", "int64_t",
	"uint8_t", "uint16_t", "uint32_t", "uint64_t",
	"intptr_t", "uintptr_t", "ptrdiff_t", "wchar_t",
}

// defaultQualifiers is the built-in type-qualifier vocabulary; other
// qualifier markers (__allowed("N"), ...) are supplied by a caller's
// Config.TypeQualifiers. near/far are in defaultModifiers below.
var defaultQualifiers = []string{"const", "volatile"}

// defaultModifiers is the built-in calling-convention / attribute-keyword
// vocabulary recognised as a declaration-specifier without contributing a
// type (§4.5).
var defaultModifiers = []string{
	"__cdecl", "__stdcall", "__fastcall", "__thiscall", "__vectorcall",
	"near", "far",
}

// defaultReplacements strips the most common vendor attribute wrappers
// before the declaration grammar sees them (§4.5, §6).
var defaultReplacements = map[string]string{
	"__declspec":  "",
	"__attribute": "",
	"__extension__": "",
}

// Config is the full configuration surface of §6: search paths, input
// encoding, the recognised primitive/qualifier/modifier vocabularies, the
// attribute-replacement table, the macro-expansion depth cap, and (§9's
// supplement) an optional platform preset seeding the macro table before
// any #define in the input is processed.
type Config struct {
	HeaderSearchPaths []string
	Encoding          string
	PrimitiveTypes    []string
	TypeQualifiers    []string
	Modifiers         []string
	Replacements      map[string]string
	MaxExpansion      int
	Platform          *presets.Platform
}

// DefaultConfig returns the baseline configuration new parses start from;
// it carries no search paths and no platform preset. Per §9's "Global
// state" design note this is a plain value, not a package-level mutable
// registry: callers that want process-wide defaults keep their own copy and
// pass it to WithDefaults explicitly.
func DefaultConfig() Config {
	return Config{
		Encoding:       "utf-8",
		PrimitiveTypes: slices.Clone(defaultPrimitives),
		TypeQualifiers: slices.Clone(defaultQualifiers),
		Modifiers:      slices.Clone(defaultModifiers),
		Replacements:   maps.Clone(defaultReplacements),
		MaxExpansion:   defaultMaxExpansion,
	}
}

// WithDefaults returns a copy of c with every zero-valued field filled in
// from DefaultConfig(), and the built-in primitive/qualifier/modifier lists
// merged (not replaced) with c's own entries. Call this once before passing
// a caller-built Config into Parse/ParseFiles/ParseString; Parse itself
// does not implicitly apply defaults, so a caller who truly wants a bare
// vocabulary may skip WithDefaults entirely.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Encoding == "" {
		c.Encoding = d.Encoding
	}
	if c.MaxExpansion == 0 {
		c.MaxExpansion = d.MaxExpansion
	}
	c.PrimitiveTypes = mergeUnique(d.PrimitiveTypes, c.PrimitiveTypes)
	c.TypeQualifiers = mergeUnique(d.TypeQualifiers, c.TypeQualifiers)
	c.Modifiers = mergeUnique(d.Modifiers, c.Modifiers)
	if c.Replacements == nil {
		c.Replacements = maps.Clone(d.Replacements)
	} else {
		merged := maps.Clone(d.Replacements)
		maps.Copy(merged, c.Replacements)
		c.Replacements = merged
	}
	return c
}

func mergeUnique(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, x := range slices.Concat(base, extra) {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}
