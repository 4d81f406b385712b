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
	"fmt"
	"os"

	"github.com/chdr-project/chdr/internal/declparser"
	"github.com/chdr-project/chdr/internal/diag"
	"github.com/chdr-project/chdr/internal/macro"
	"github.com/chdr-project/chdr/presets"
	"github.com/chdr-project/chdr/preprocessor"
	"github.com/chdr-project/chdr/store"
	"github.com/chdr-project/chdr/token"
)

// Diagnostic is the non-fatal warning list of §6: every recoverable
// condition from §7's disposition table, carrying its source location and
// a stable Kind a caller can switch on.
type Diagnostic = diag.Diagnostic

// Source is one named chunk of raw header text, the "OR raw header text
// strings" input form of §6.
type Source struct {
	Name    string
	Content []byte
}

// Parse preprocesses and parses every source in order against one shared
// macro table and definition store; each source starts with the default
// #pragma pack state, not the one the previous source ended with. §4.7 keys a cache entry
// on the whole input *set*, not on each file independently, so a multi-file
// parse always produces one Store, not one per file. The returned Store is
// finalized (read-only, §3/§5) and safe for concurrent queries.
func Parse(cfg Config, sources []Source) (*store.Store, []Diagnostic) {
	diags := &diag.Sink{}
	macros := macro.NewTable()
	if cfg.Platform != nil {
		if env, ok := presets.KnownPlatformEnv[*cfg.Platform]; ok {
			env.Seed(macros)
		}
	}

	st := store.New(diags)
	resolver := declResolver{macros: macros, store: st}

	declCfg := declparser.Config{
		Primitives:   cfg.PrimitiveTypes,
		Qualifiers:   cfg.TypeQualifiers,
		Modifiers:    cfg.Modifiers,
		Replacements: cfg.Replacements,
		MaxExpansion: cfg.MaxExpansion,
	}

	for _, src := range sources {
		lx := token.NewLexer(src.Content)
		toks := lx.AllTokens()
		if err := lx.Err(); err != nil {
			// §7: only tokeniser/I/O failures are fatal; this source's
			// tokens are still whatever could be salvaged, so parsing
			// continues rather than aborting the whole multi-file input.
			diags.Add(diag.Fatal, diag.KindTokeniser, token.CursorInit, "%s: %s", src.Name, err)
		}

		result := preprocessor.Run(toks, macros, diags, cfg.MaxExpansion)
		declparser.Parse(result.Tokens, declCfg, st, result.PackAt, resolver, diags)
	}

	st.ImportMacros(macros)
	st.Finalize()
	return st, diags.All()
}

// ParseString parses a single in-memory header, name being used purely to
// label any diagnostics it produces.
func ParseString(cfg Config, name, content string) (*store.Store, []Diagnostic) {
	return Parse(cfg, []Source{{Name: name, Content: []byte(content)}})
}

// ParseFiles resolves each name against cfg.HeaderSearchPaths, reads it,
// and parses the whole set as one shared input (§4.7). Unlike Parse/
// ParseString, this can fail outright: a header that can't be found or
// read is an I/O failure, not a recoverable parse diagnostic.
func ParseFiles(cfg Config, names []string) (*store.Store, []Diagnostic, error) {
	sources := make([]Source, 0, len(names))
	for _, name := range names {
		path, err := resolveHeader(name, cfg.HeaderSearchPaths)
		if err != nil {
			return nil, nil, err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("chdr: reading %s: %w", path, err)
		}
		sources = append(sources, Source{Name: path, Content: content})
	}
	st, diags := Parse(cfg, sources)
	return st, diags, nil
}
