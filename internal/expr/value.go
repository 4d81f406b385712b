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

package expr

import (
	"fmt"
	"strings"

	"github.com/chdr-project/chdr/token"
)

// ValueKind discriminates the Value tagged sum.
type ValueKind int

const (
	Int64Kind ValueKind = iota
	UInt64Kind
	F64Kind
	StringKind
	SymbolicKind
)

// Value is a reduced constant: exactly one of an Int64, UInt64, F64, Text,
// or (when reduction failed) the original Symbolic token sequence. Named
// values and variable initializers in the definition store all carry one of
// these rather than a dynamically-typed container.
type Value struct {
	Kind     ValueKind
	Int64    int64
	UInt64   uint64
	F64      float64
	Text     string
	Symbolic []token.Token
}

func Int(v int64) Value            { return Value{Kind: Int64Kind, Int64: v} }
func UInt(v uint64) Value          { return Value{Kind: UInt64Kind, UInt64: v} }
func Float(v float64) Value        { return Value{Kind: F64Kind, F64: v} }
func Str(v string) Value           { return Value{Kind: StringKind, Text: v} }
func Sym(toks []token.Token) Value { return Value{Kind: SymbolicKind, Symbolic: toks} }

// AsInt64 coerces a Value to an int64 for use in integer arithmetic/
// comparisons, following the evaluator's "integers are 64-bit two's
// complement" rule (§4.4). Non-numeric values coerce to 0.
func (v Value) AsInt64() int64 {
	switch v.Kind {
	case Int64Kind:
		return v.Int64
	case UInt64Kind:
		return int64(v.UInt64)
	case F64Kind:
		return int64(v.F64)
	default:
		return 0
	}
}

// AsBool reports whether v is "truthy" the way a C condition would: any
// nonzero number is true, an empty Symbolic/String is false.
func (v Value) AsBool() bool {
	switch v.Kind {
	case Int64Kind:
		return v.Int64 != 0
	case UInt64Kind:
		return v.UInt64 != 0
	case F64Kind:
		return v.F64 != 0
	case StringKind:
		return v.Text != ""
	default:
		return len(v.Symbolic) > 0
	}
}

func (v Value) String() string {
	switch v.Kind {
	case Int64Kind:
		return fmt.Sprintf("%d", v.Int64)
	case UInt64Kind:
		return fmt.Sprintf("%d", v.UInt64)
	case F64Kind:
		return fmt.Sprintf("%v", v.F64)
	case StringKind:
		return v.Text
	default:
		var sb strings.Builder
		for i, tok := range v.Symbolic {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(tok.Content)
		}
		return sb.String()
	}
}

func (v Value) IsFloat() bool { return v.Kind == F64Kind }
