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
	"strconv"
	"strings"

	"github.com/chdr-project/chdr/token"
)

// precedence climbing levels, lowest first. Ternary binds looser than ||.
const (
	precLowest = iota
	precLogicalOr
	precLogicalAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
)

var binaryPrecedence = map[string]int{
	"||": precLogicalOr,
	"&&": precLogicalAnd,
	"|":  precBitOr,
	"^":  precBitXor,
	"&":  precBitAnd,
	"==": precEquality,
	"!=": precEquality,
	"<":  precRelational,
	"<=": precRelational,
	">":  precRelational,
	">=": precRelational,
	"<<": precShift,
	">>": precShift,
	"+":  precAdditive,
	"-":  precAdditive,
	"*":  precMultiplicative,
	"/":  precMultiplicative,
	"%":  precMultiplicative,
}

// castTypeKeywords is the fixed set of primitive spellings the heuristic
// cast detector recognises as the start of a parenthesised type name. A
// richer, configurable primitive-type list lives in declparser; this one
// only needs to disambiguate "(x)" as a cast vs a parenthesised expression.
var castTypeKeywords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"struct": true, "union": true, "enum": true, "const": true,
}

// Parser is a Pratt/precedence-climbing parser over a token slice already
// known to hold one expression (a #if condition line, or an initializer up
// to its terminating ';'/','); insignificant tokens (whitespace, comments,
// line continuations, newlines) are filtered out on construction.
type Parser struct {
	toks []token.Token
	pos  int
}

func NewParser(tokens []token.Token) *Parser {
	return &Parser{toks: significant(tokens)}
}

func significant(tokens []token.Token) []token.Token {
	out := make([]token.Token, 0, len(tokens))
	for _, t := range tokens {
		switch t.Type {
		case token.Whitespace, token.CommentLine, token.CommentBlock, token.ContinueLine, token.Newline:
			continue
		}
		out = append(out, t)
	}
	return out
}

func (p *Parser) atEnd() bool { return p.pos >= len(p.toks) || p.toks[p.pos].Type == token.EOF }

func (p *Parser) cur() token.Token {
	if p.atEnd() {
		return token.EOFToken
	}
	return p.toks[p.pos]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if !p.atEnd() {
		p.pos++
	}
	return t
}

func (p *Parser) expect(content string) error {
	if p.cur().Content != content {
		return fmt.Errorf("expected %q but found %q at %s", content, p.cur().Content, p.cur().Location)
	}
	p.advance()
	return nil
}

// Parse consumes the whole token slice as a single expression and returns
// its AST. Remaining unconsumed tokens are not an error: callers that slice
// out exactly one expression's worth of tokens won't have any, but a
// permissive caller may pass extra trailing tokens (e.g. a ';').
func (p *Parser) Parse() (Expr, error) {
	return p.parseTernary()
}

func (p *Parser) parseTernary() (Expr, error) {
	cond, err := p.parseBinary(precLowest)
	if err != nil {
		return nil, err
	}
	if p.cur().Content != "?" {
		return cond, nil
	}
	p.advance()
	then, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	elseExpr, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return Ternary{Cond: cond, Then: then, Else: elseExpr}, nil
}

func (p *Parser) parseBinary(minPrec int) (Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.cur().Content
		prec, ok := binaryPrecedence[op]
		if !ok || prec < minPrec || p.cur().Type != token.Punctuator {
			return lhs, nil
		}
		p.advance()
		rhs, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		lhs = Binary{Op: op, L: lhs, R: rhs}
	}
}

func (p *Parser) parseUnary() (Expr, error) {
	tok := p.cur()
	switch {
	case tok.Content == "defined":
		return p.parseDefined()
	case tok.Content == "!" || tok.Content == "~" || tok.Content == "-" || tok.Content == "+":
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary{Op: tok.Content, X: x}, nil
	case tok.Content == "(":
		return p.parseParenOrCast()
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parseDefined() (Expr, error) {
	p.advance() // "defined"
	paren := p.cur().Content == "("
	if paren {
		p.advance()
	}
	name := p.advance()
	if name.Type != token.Identifier {
		return nil, fmt.Errorf("defined: expected identifier, found %q at %s", name.Content, name.Location)
	}
	if paren {
		if err := p.expect(")"); err != nil {
			return nil, err
		}
	}
	return Defined{Name: Ident(name.Content)}, nil
}

// parseParenOrCast handles both a parenthesised sub-expression and a
// C-style cast, using the fixed-keyword heuristic documented on
// castTypeKeywords to tell them apart.
func (p *Parser) parseParenOrCast() (Expr, error) {
	start := p.pos
	p.advance() // "("
	if p.isCastAhead() {
		var typeName strings.Builder
		for p.cur().Content != ")" && !p.atEnd() {
			if typeName.Len() > 0 {
				typeName.WriteByte(' ')
			}
			typeName.WriteString(p.advance().Content)
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Cast{TypeName: typeName.String(), X: x}, nil
	}
	p.pos = start
	p.advance() // "("
	inner, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return inner, nil
}

// isCastAhead peeks (without consuming) whether the parenthesised group
// starting at p.pos looks like a type name followed by another operand,
// rather than a standalone expression.
func (p *Parser) isCastAhead() bool {
	if !castTypeKeywords[p.cur().Content] {
		return false
	}
	save := p.pos
	defer func() { p.pos = save }()
	for p.cur().Content != ")" && !p.atEnd() {
		p.advance()
	}
	if p.cur().Content != ")" {
		return false
	}
	p.advance()
	next := p.cur()
	switch next.Type {
	case token.Identifier, token.IntegerLiteral, token.FloatLiteral, token.CharLiteral, token.StringLiteral:
		return true
	case token.Punctuator:
		return next.Content == "(" || next.Content == "-" || next.Content == "+" || next.Content == "~" || next.Content == "!"
	default:
		return false
	}
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.advance()
	switch tok.Type {
	case token.Identifier:
		if p.cur().Content == "(" {
			return p.parseApply(tok.Content)
		}
		return Ident(tok.Content), nil
	case token.IntegerLiteral:
		return IntLit{Value: parseIntLiteral(tok.Content)}, nil
	case token.FloatLiteral:
		return FloatLit{Value: parseFloatLiteral(tok.Content)}, nil
	case token.CharLiteral:
		return IntLit{Value: Int(int64(charLiteralValue(tok.Content)))}, nil
	case token.StringLiteral:
		return p.parseStringLit(tok.Content)
	default:
		return nil, fmt.Errorf("unexpected token %q at %s", tok.Content, tok.Location)
	}
}

// parseStringLit folds adjacent string literals into one, per §4.4's
// "string literal concatenation when adjacent".
func (p *Parser) parseStringLit(first string) (Expr, error) {
	var sb strings.Builder
	sb.WriteString(unquoteString(first))
	for p.cur().Type == token.StringLiteral {
		sb.WriteString(unquoteString(p.advance().Content))
	}
	return StringLit{Value: Str(sb.String())}, nil
}

func (p *Parser) parseApply(name string) (Expr, error) {
	p.advance() // "("
	var args []Expr
	for p.cur().Content != ")" && !p.atEnd() {
		arg, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur().Content == "," {
			p.advance()
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return Apply{Name: Ident(name), Args: args}, nil
}

func unquoteString(lit string) string {
	if s, err := strconv.Unquote(lit); err == nil {
		return s
	}
	return strings.Trim(lit, `"`)
}

func charLiteralValue(lit string) rune {
	inner := strings.Trim(lit, "'")
	if inner == "" {
		return 0
	}
	if s, err := strconv.Unquote(`"` + strings.ReplaceAll(inner, `"`, `\"`) + `"`); err == nil && len(s) > 0 {
		return []rune(s)[0]
	}
	return []rune(inner)[0]
}

// parseIntLiteral parses an integer token (already flagged by the lexer
// with base/suffix info) into a Value, choosing UInt64 only when the "u"
// suffix is present, matching §4.4's base/suffix rules.
func parseIntLiteral(content string) Value {
	trimmed := strings.TrimRightFunc(content, func(r rune) bool {
		return r == 'u' || r == 'U' || r == 'l' || r == 'L'
	})
	unsigned := strings.ContainsAny(content, "uU")
	v, err := strconv.ParseUint(trimmed, 0, 64)
	if err != nil {
		return Int(0)
	}
	if unsigned {
		return UInt(v)
	}
	return Int(int64(v))
}

func parseFloatLiteral(content string) Value {
	trimmed := strings.TrimRightFunc(content, func(r rune) bool { return r == 'f' || r == 'F' || r == 'l' || r == 'L' })
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return Float(0)
	}
	return Float(v)
}
