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

// Package cache implements the persistent cache file of §4.7: a small
// hand-framed header (format version, parser version, an input-set hash,
// and a configuration hash) followed by a gob-encoded snapshot of a
// store.Store. The cache is used iff both hashes match the caller's
// current inputs and configuration; otherwise the caller re-parses and
// overwrites the file.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/chdr-project/chdr/internal/diag"
	"github.com/chdr-project/chdr/store"
)

// FormatVersion is the cache file's own binary layout version, bumped only
// when the header framing itself changes.
const FormatVersion = 1

// ParserVersion is bumped whenever a change to the parser could change the
// store produced from the same inputs and configuration, invalidating
// every existing cache file regardless of hash match.
const ParserVersion = 1

// Key is the pair of content hashes a cache entry is keyed on (§4.7): one
// over the sorted set of input header paths and their contents, one over
// the parser configuration fields that affect parsing output.
type Key struct {
	InputHash  [32]byte
	ConfigHash [32]byte
}

// HashInputs hashes the sorted (path, content) pairs of every header that
// fed a parse, so a cache entry is invalidated by any edit to any input or
// by adding/removing an input, regardless of argument order.
func HashInputs(contents map[string][]byte) [32]byte {
	paths := make([]string, 0, len(contents))
	for p := range contents {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	h := sha256.New()
	for _, p := range paths {
		io.WriteString(h, p)
		h.Write([]byte{0})
		h.Write(contents[p])
		h.Write([]byte{0})
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HashConfig hashes the configuration fields §4.7 names as affecting
// parsing output: the primitive-type list, the custom type-qualifier
// list, the modifier (calling-convention) list, and the token-replacement
// table. Each list is sorted before hashing so the key is independent of
// the order the caller built its configuration in.
func HashConfig(primitives, qualifiers, modifiers []string, replacements map[string]string) [32]byte {
	h := sha256.New()
	writeSortedStrings(h, primitives)
	h.Write([]byte{0xff})
	writeSortedStrings(h, qualifiers)
	h.Write([]byte{0xff})
	writeSortedStrings(h, modifiers)
	h.Write([]byte{0xff})

	keys := make([]string, 0, len(replacements))
	for k := range replacements {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		io.WriteString(h, k)
		h.Write([]byte{0})
		io.WriteString(h, replacements[k])
		h.Write([]byte{0})
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func writeSortedStrings(h io.Writer, xs []string) {
	sorted := append([]string(nil), xs...)
	sort.Strings(sorted)
	for _, x := range sorted {
		io.WriteString(h, x)
		h.Write([]byte{0})
	}
}

// Save writes key and st's body to path, overwriting any existing file.
// st must already be finalized (§3's immutable-after-parse contract).
func Save(path string, key Key, st *store.Store) error {
	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(st); err != nil {
		return fmt.Errorf("cache: encoding store: %w", err)
	}

	header := encodeHeader(key, body.Len())
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cache: creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(header); err != nil {
		return fmt.Errorf("cache: writing header to %s: %w", path, err)
	}
	if _, err := body.WriteTo(f); err != nil {
		return fmt.Errorf("cache: writing body to %s: %w", path, err)
	}
	return nil
}

// Load reads the cache file at path. The returned bool reports whether a
// usable cache was found: false (with a nil error) covers every ordinary
// miss -- the file is absent, was written by a different ParserVersion, its
// key doesn't match want, or it's corrupt -- since all of those mean the
// same thing to a caller: perform a full parse and call Save to rewrite
// the file. primitives re-seeds the loaded store's primitive-type set,
// which (being unexported) gob does not round-trip.
func Load(path string, want Key, primitives []string, diags *diag.Sink) (*store.Store, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: reading %s: %w", path, err)
	}

	_, parserVersion, gotKey, bodyLen, body, ok := decodeHeader(data)
	if !ok || parserVersion != ParserVersion || gotKey != want || len(body) < bodyLen {
		return nil, false, nil
	}

	st := store.New(diags)
	st.SetPrimitives(primitives)
	if err := gob.NewDecoder(bytes.NewReader(body[:bodyLen])).Decode(st); err != nil {
		return nil, false, nil
	}
	return st, true, nil
}

// encodeHeader frames the cache key as a sequence of protowire varints and
// length-delimited byte fields -- no .proto message or generated code, just
// the wire-format primitives applied directly (§1's note on why protowire
// rather than gob is used for this one small, fixed-shape record).
func encodeHeader(key Key, bodyLen int) []byte {
	var b []byte
	b = protowire.AppendVarint(b, FormatVersion)
	b = protowire.AppendVarint(b, ParserVersion)
	b = protowire.AppendBytes(b, key.InputHash[:])
	b = protowire.AppendBytes(b, key.ConfigHash[:])
	b = protowire.AppendVarint(b, uint64(bodyLen))
	return b
}

func decodeHeader(b []byte) (formatVersion, parserVersion uint64, key Key, bodyLen int, rest []byte, ok bool) {
	var n int
	if formatVersion, n = protowire.ConsumeVarint(b); n < 0 {
		return
	}
	b = b[n:]
	if parserVersion, n = protowire.ConsumeVarint(b); n < 0 {
		return
	}
	b = b[n:]
	inputHash, n := protowire.ConsumeBytes(b)
	if n < 0 || len(inputHash) != len(key.InputHash) {
		return
	}
	b = b[n:]
	configHash, n := protowire.ConsumeBytes(b)
	if n < 0 || len(configHash) != len(key.ConfigHash) {
		return
	}
	b = b[n:]
	bl, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return
	}
	copy(key.InputHash[:], inputHash)
	copy(key.ConfigHash[:], configHash)
	return formatVersion, parserVersion, key, int(bl), b[n:], true
}
