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

// Package preprocessor walks the directive stream produced by
// internal/directive, drives the conditional-inclusion and #pragma pack
// stacks, expands macros over every included line, and produces the final
// token stream the declaration parser consumes.
package preprocessor

import (
	"github.com/chdr-project/chdr/internal/diag"
	"github.com/chdr-project/chdr/internal/directive"
	"github.com/chdr-project/chdr/internal/expr"
	"github.com/chdr-project/chdr/internal/macro"
	"github.com/chdr-project/chdr/token"
)

const defaultPack = 8

// PackMark records the pack value that became active at Location; a struct
// or union's recorded pack_value is the Value of the last mark at or before
// its declaration point (§3, §4.7).
type PackMark struct {
	Location token.Cursor
	Value    int
}

// Result is everything the rest of the pipeline needs out of preprocessing.
type Result struct {
	Tokens    []token.Token
	PackMarks []PackMark
	Macros    *macro.Table
}

// PackAt returns the pack value in effect at loc.
func (r Result) PackAt(loc token.Cursor) int {
	v := defaultPack
	for _, m := range r.PackMarks {
		if !before(loc, m.Location) {
			v = m.Value
		}
	}
	return v
}

func before(a, b token.Cursor) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Column < b.Column)
}

// condFrame is one level of the conditional-inclusion stack (§4.3).
type condFrame struct {
	parentActive bool
	anyTaken     bool
	thisActive   bool
	seenElse     bool
}

// packFrame is one level of the #pragma pack(push, ...) stack.
type packFrame struct {
	Label string
	Value int
}

// Run preprocesses tokens (a full file's worth, as returned by
// token.Lexer.AllTokens) against macros, which is mutated in place by
// #define/#undef and left holding every macro defined by the end of the
// file. maxExpansion bounds both condition evaluation and macro
// substitution depth (§4.2, §6's Config.MaxExpansion).
func Run(tokens []token.Token, macros *macro.Table, diags *diag.Sink, maxExpansion int) Result {
	p := &preprocessor{
		macros:       macros,
		diags:        diags,
		maxExpansion: maxExpansion,
		pack:         defaultPack,
	}
	p.marks = append(p.marks, PackMark{Location: token.CursorInit, Value: defaultPack})

	lines := directive.Scan(tokens, diags)
	for _, ln := range lines {
		p.process(ln)
	}
	if len(p.condStack) > 0 {
		diags.Warn(diag.KindUnbalancedConditional, lines[len(lines)-1].Location, "unterminated conditional block at end of file")
	}
	return Result{Tokens: p.out, PackMarks: p.marks, Macros: macros}
}

type preprocessor struct {
	macros       *macro.Table
	diags        *diag.Sink
	maxExpansion int

	condStack []condFrame
	packStack []packFrame
	pack      int
	marks     []PackMark

	out []token.Token
}

func (p *preprocessor) including() bool {
	if len(p.condStack) == 0 {
		return true
	}
	return p.condStack[len(p.condStack)-1].thisActive
}

func (p *preprocessor) process(ln directive.Line) {
	if ln.Directive == nil {
		if ln.Text != nil && p.including() {
			p.out = append(p.out, macroExpandLine(p.macros, ln.Text, p.diags, p.maxExpansion)...)
			p.out = append(p.out, token.Token{Type: token.Newline, Content: "\n", Location: ln.Location})
		}
		return
	}
	switch d := ln.Directive.(type) {
	case directive.Conditional:
		p.onConditional(d)
	case directive.Else:
		p.onElse(d)
	case directive.Endif:
		p.onEndif(d)
	case directive.Define:
		if p.including() {
			p.macros.Define(macro.Macro{Name: d.Name, Params: d.Params, Variadic: d.Variadic, Body: d.Body, Location: d.Location})
		}
	case directive.Undef:
		if p.including() {
			p.macros.Undef(d.Name)
		}
	case directive.Pragma:
		if p.including() {
			p.onPragma(d)
		}
	case directive.Unknown:
		// already recorded as a diagnostic by directive.Scan.
	}
}

func macroExpandLine(macros *macro.Table, toks []token.Token, diags *diag.Sink, maxExpansion int) []token.Token {
	return macros.Substitute(toks, diags, maxExpansion)
}

func (p *preprocessor) onConditional(d directive.Conditional) {
	switch d.Kind {
	case directive.If:
		parentActive := p.including()
		sel := false
		if parentActive {
			sel = p.evalCondition(d.Condition)
		}
		p.condStack = append(p.condStack, condFrame{parentActive: parentActive, anyTaken: sel, thisActive: sel})
	case directive.Elif:
		if len(p.condStack) == 0 {
			p.diags.Warn(diag.KindUnbalancedConditional, d.Location, "#elif without matching #if")
			return
		}
		f := &p.condStack[len(p.condStack)-1]
		if f.seenElse {
			p.diags.Warn(diag.KindUnbalancedConditional, d.Location, "#elif after #else")
		}
		switch {
		case !f.parentActive || f.anyTaken:
			f.thisActive = false
		default:
			sel := p.evalCondition(d.Condition)
			f.thisActive = sel
			if sel {
				f.anyTaken = true
			}
		}
	}
}

func (p *preprocessor) onElse(d directive.Else) {
	if len(p.condStack) == 0 {
		p.diags.Warn(diag.KindUnbalancedConditional, d.Location, "#else without matching #if")
		return
	}
	f := &p.condStack[len(p.condStack)-1]
	if f.seenElse {
		p.diags.Warn(diag.KindUnbalancedConditional, d.Location, "duplicate #else")
	}
	f.seenElse = true
	if !f.parentActive || f.anyTaken {
		f.thisActive = false
	} else {
		f.thisActive = true
		f.anyTaken = true
	}
}

func (p *preprocessor) onEndif(d directive.Endif) {
	if len(p.condStack) == 0 {
		p.diags.Warn(diag.KindUnbalancedConditional, d.Location, "#endif without matching #if")
		return
	}
	p.condStack = p.condStack[:len(p.condStack)-1]
}

func (p *preprocessor) evalCondition(cond []token.Token) bool {
	e, err := expr.NewParser(cond).Parse()
	if err != nil {
		p.diags.Warn(diag.KindSyntaxError, cond[0].Location, "malformed condition: %s", err)
		return false
	}
	return expr.EvalCondition(e, p.macros, p.diags, p.maxExpansion)
}

func (p *preprocessor) onPragma(d directive.Pragma) {
	switch d.Kind {
	case directive.PackReset:
		p.pack = defaultPack
	case directive.PackSet:
		p.pack = *d.Value
	case directive.PackPush:
		p.packStack = append(p.packStack, packFrame{Label: d.Label, Value: p.pack})
		if d.Value != nil {
			p.pack = *d.Value
		}
	case directive.PackPop:
		if !p.popPack(d.Label) {
			p.diags.Warn(diag.KindUnmatchedPackPop, d.Location, "#pragma pack(pop) with no matching push")
			return
		}
	}
	p.marks = append(p.marks, PackMark{Location: d.Location, Value: p.pack})
}

// popPack pops frames until (and including) one matching label, or pops
// exactly one frame when label is empty (§4.3).
func (p *preprocessor) popPack(label string) bool {
	if len(p.packStack) == 0 {
		return false
	}
	if label == "" {
		top := p.packStack[len(p.packStack)-1]
		p.packStack = p.packStack[:len(p.packStack)-1]
		p.pack = top.Value
		return true
	}
	for i := len(p.packStack) - 1; i >= 0; i-- {
		if p.packStack[i].Label == label {
			p.pack = p.packStack[i].Value
			p.packStack = p.packStack[:i]
			return true
		}
	}
	return false
}
