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

// Package diag defines the Diagnostic value every stage of the pipeline
// (macro table, preprocessor, expression evaluator, declaration parser)
// appends to instead of returning an error, following the disposition table:
// only tokeniser/I/O failures are real errors, everything else becomes a
// Diagnostic and processing continues.
package diag

import (
	"fmt"

	"github.com/chdr-project/chdr/token"
)

// Severity distinguishes a diagnostic that merely notes a heuristic recovery
// from one that reports an outright failure to continue.
type Severity int

const (
	Warning Severity = iota
	Fatal
)

func (s Severity) String() string {
	if s == Fatal {
		return "fatal"
	}
	return "warning"
}

// Kind names the condition that produced a Diagnostic. Values match the
// left column of the error-kind/disposition table: stable strings a caller
// can switch on without parsing Message.
type Kind string

const (
	KindTokeniser              Kind = "tokeniser-error"
	KindUnknownDirective       Kind = "unknown-directive"
	KindMalformedDirective     Kind = "malformed-directive"
	KindUnbalancedConditional  Kind = "unbalanced-conditional"
	KindUnmatchedPackPop       Kind = "unmatched-pack-pop"
	KindMacroArityMismatch     Kind = "macro-arity-mismatch"
	KindExpansionDepthExceeded Kind = "expansion-depth-exceeded"
	KindUnknownTypeName        Kind = "unknown-type-name"
	KindSyntaxError            Kind = "syntax-error"
	KindTypedefCycle           Kind = "typedef-cycle"
	KindDivisionByZero         Kind = "division-by-zero"
	KindDuplicateDefinition    Kind = "duplicate-definition"
)

// Diagnostic is one recoverable (or, for KindTokeniser, fatal) condition
// encountered while processing a header.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Location token.Cursor
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s at %s: %s", d.Severity, d.Kind, d.Location, d.Message)
}

// Sink collects Diagnostics as a pipeline runs. It is not safe for
// concurrent use; each parse owns exactly one Sink (see §5's single-threaded
// pipeline model).
type Sink struct {
	diagnostics []Diagnostic
}

// Add appends a Diagnostic built from the given fields.
func (s *Sink) Add(severity Severity, kind Kind, loc token.Cursor, format string, args ...any) {
	s.diagnostics = append(s.diagnostics, Diagnostic{
		Severity: severity,
		Kind:     kind,
		Location: loc,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warn is shorthand for Add(Warning, ...).
func (s *Sink) Warn(kind Kind, loc token.Cursor, format string, args ...any) {
	s.Add(Warning, kind, loc, format, args...)
}

// All returns every diagnostic recorded so far, in emission order.
func (s *Sink) All() []Diagnostic {
	return s.diagnostics
}
