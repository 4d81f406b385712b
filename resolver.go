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
	"github.com/chdr-project/chdr/internal/macro"
	"github.com/chdr-project/chdr/store"
	"github.com/chdr-project/chdr/token"
)

// declResolver composes the live macro table with the (still-being-filled)
// definition store so that a constant expression encountered while parsing
// declarations (an enum value, a bit-field width, an array length, a
// variable initializer) can resolve either a macro name or an already-parsed
// enum member (§4.4's identifier-lookup rule). The macro table alone (as
// used for #if/#elif conditions in the preprocessor, via *macro.Table
// directly) never needs the enum half, since no declaration has been parsed
// yet at that point in the pipeline.
type declResolver struct {
	macros *macro.Table
	store  *store.Store
}

func (r declResolver) Defined(name string) bool { return r.macros.Defined(name) }

func (r declResolver) Expand(name string) ([]token.Token, bool) { return r.macros.Expand(name) }

func (r declResolver) EnumValue(name string) (int64, bool) { return r.store.EnumValue(name) }
