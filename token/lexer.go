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

// Package token also houses the Lexer: a lazy tokenizer for C header text.
// It breaks the input into a sequence of Tokens, splicing backslash-newline
// continuations and recognising comments without disturbing the contents of
// string/char literals, which can themselves contain '//' or '/*'.
//
// Lexer classifies tokens by kind (for e.g. easier filtering of comments or
// whitespace) and tracks their location in the source code so diagnostics
// and line-sensitive features (like #pragma pack bookkeeping) stay accurate
// across backslash-newline splices.
package token

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnterminated is the sentinel wrapped by Lexer.Err when a string, char,
// or block-comment literal runs off the end of the input without its
// closing delimiter. Tokenisation does not stop: the offending token is
// still produced (its Content running to the end of the line for a string
// or char literal, or to EOF for a block comment) so callers that want a best-
// effort token stream can keep going, but Err becomes non-nil and stays
// set, mirroring the "tokeniser error is fatal" disposition: a caller that
// checks Err after reading abandons the parse instead of trusting the
// salvage.
var ErrUnterminated = errors.New("unterminated literal")

var (
	reContinueLine   = regexp.MustCompile(`^\\[\t\v\f\r ]*\n`)
	reFloatLiteral   = regexp.MustCompile(`^(?i)(?:[0-9]+\.[0-9]*|\.[0-9]+|[0-9]+)(?:e[+-]?[0-9]+)?[fl]?`)
	reIntegerLiteral = regexp.MustCompile(`^(?i)(0x[0-9a-f]+|0b[01]+|0[0-7]*|[1-9][0-9]*|0)(u?l{0,2}|l{0,2}u?)`)
	reCharLiteral    = regexp.MustCompile(`^'(?:[^'\\\n]|\\.)*'`)
	reStringLiteral  = regexp.MustCompile(`^"(?:[^"\\\n]|\\.)*"`)
	reIdentifier     = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*`)

	// Longer punctuators must be listed before their prefixes.
	punctuators = []string{
		"...", "->", "<<=", ">>=", "<<", ">>",
		"<=", ">=", "==", "!=", "&&", "||", "++", "--",
		"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "::",
		"(", ")", "{", "}", "[", "]", ",", ";", ":", "?",
		"+", "-", "*", "/", "%", "=", "<", ">", "!", "~",
		"&", "|", "^", ".",
	}
)

type lexeme struct {
	tokenType TokenType
	length    int
	intFlags  IntFlags
}

// Lexer produces a lazy sequence of Tokens from raw header text.
type Lexer struct {
	dataLeft []byte
	cursor   Cursor
	// atLineStart is true when only whitespace has been seen since the last
	// newline (or start of input), used to recognise the preprocessor '#'
	// directive introducer which is only meaningful at a logical line start.
	atLineStart bool
	// err latches the first unterminated-literal condition encountered;
	// once set it is never cleared.
	err error
}

// Err reports the first unterminated string/char/block-comment literal
// encountered so far, or nil if none has been seen.
func (lx *Lexer) Err() error {
	return lx.err
}

// NewLexer creates a Lexer over sourceCode. Callers are responsible for
// decoding the input to UTF-8 text beforehand (see Config.Encoding in the
// root package); the lexer itself only ever sees bytes it treats as text.
func NewLexer(sourceCode []byte) *Lexer {
	return &Lexer{dataLeft: sourceCode, cursor: CursorInit, atLineStart: true}
}

func findNonWhitespace(data []byte) int {
	for i, b := range data {
		if !strings.ContainsAny(string(b), " \t\v\f\r") {
			return i
		}
	}
	return len(data)
}

func (lx *Lexer) consume(lxm lexeme) Token {
	token := Token{
		Type:     lxm.tokenType,
		Location: lx.cursor,
		Content:  string(lx.dataLeft[:lxm.length]),
		IntFlags: lxm.intFlags,
	}
	lx.dataLeft = lx.dataLeft[lxm.length:]
	lx.cursor = lx.cursor.AdvancedBy(token.Content)

	switch token.Type {
	case Newline:
		lx.atLineStart = true
	case Whitespace, ContinueLine:
		// line-start status unaffected
	default:
		lx.atLineStart = false
	}
	return token
}

// unterminatedLength returns how much of dataLeft to fold into a salvage
// token for an unterminated char/string literal: up to (but excluding) the
// next unescaped newline, or the rest of the input if none remains.
func (lx *Lexer) unterminatedLength() int {
	i := 1
	for i < len(lx.dataLeft) {
		if lx.dataLeft[i] == '\\' && i+1 < len(lx.dataLeft) {
			i += 2
			continue
		}
		if lx.dataLeft[i] == '\n' {
			break
		}
		i++
	}
	return i
}

func (lx *Lexer) latchErr(quote byte) {
	if lx.err == nil {
		lx.err = fmt.Errorf("%w: %c-quoted literal starting at %s", ErrUnterminated, quote, lx.cursor)
	}
}

func integerFlags(content string) IntFlags {
	var flags IntFlags
	lower := strings.ToLower(content)
	switch {
	case strings.HasPrefix(lower, "0x"):
		flags |= Hex
	case strings.HasPrefix(lower, "0b"):
		flags |= Binary
	case len(lower) > 1 && lower[0] == '0':
		flags |= Octal
	}
	if strings.ContainsAny(lower, "u") {
		flags |= Unsigned
	}
	if strings.Count(lower, "l") >= 2 {
		flags |= LongLong
	} else if strings.Contains(lower, "l") {
		flags |= Long
	}
	return flags
}

// NextToken returns the next token extracted from the beginning of the
// remaining input. Returns EOFToken once nothing is left to process.
func (lx *Lexer) NextToken() Token {
	if len(lx.dataLeft) == 0 {
		return EOFToken
	}

	lxm := lexeme{tokenType: Unassigned, length: len(lx.dataLeft)}

	switch lx.dataLeft[0] {
	case '\n':
		lxm = lexeme{tokenType: Newline, length: 1}
	case '\t', '\v', '\f', '\r', ' ':
		lxm = lexeme{tokenType: Whitespace, length: findNonWhitespace(lx.dataLeft)}
	case '\\':
		if match := reContinueLine.Find(lx.dataLeft); match != nil {
			lxm = lexeme{tokenType: ContinueLine, length: len(match)}
		}
	case '\'':
		if match := reCharLiteral.Find(lx.dataLeft); match != nil {
			lxm = lexeme{tokenType: CharLiteral, length: len(match)}
		} else {
			lxm = lexeme{tokenType: CharLiteral, length: lx.unterminatedLength()}
			lx.latchErr('\'')
		}
	case '"':
		if match := reStringLiteral.Find(lx.dataLeft); match != nil {
			lxm = lexeme{tokenType: StringLiteral, length: len(match)}
		} else {
			lxm = lexeme{tokenType: StringLiteral, length: lx.unterminatedLength()}
			lx.latchErr('"')
		}
	case '/':
		if bytes.HasPrefix(lx.dataLeft, []byte("//")) {
			end := bytes.IndexByte(lx.dataLeft, '\n')
			if end == -1 {
				end = len(lx.dataLeft)
			}
			lxm = lexeme{tokenType: CommentLine, length: end}
		} else if bytes.HasPrefix(lx.dataLeft, []byte("/*")) {
			if end := bytes.Index(lx.dataLeft, []byte("*/")); end >= 0 {
				lxm = lexeme{tokenType: CommentBlock, length: end + 2}
			} else {
				lxm = lexeme{tokenType: CommentBlock, length: len(lx.dataLeft)}
				if lx.err == nil {
					lx.err = fmt.Errorf("%w: block comment starting at %s", ErrUnterminated, lx.cursor)
				}
			}
		}
	case '#':
		if lx.atLineStart {
			begin := 1 + findNonWhitespace(lx.dataLeft[1:])
			lxm = lexeme{tokenType: DirectiveIntroducer, length: begin}
		}
	default:
		if match := reIdentifier.Find(lx.dataLeft); match != nil {
			lxm = lexeme{tokenType: Identifier, length: len(match)}
		} else if match := reFloatLiteral.Find(lx.dataLeft); match != nil && strings.ContainsAny(string(match), ".eE") {
			lxm = lexeme{tokenType: FloatLiteral, length: len(match)}
		} else if match := reIntegerLiteral.Find(lx.dataLeft); match != nil {
			lxm = lexeme{tokenType: IntegerLiteral, length: len(match), intFlags: integerFlags(string(match))}
		}
	}

	if lxm.tokenType == Unassigned {
		for _, p := range punctuators {
			if bytes.HasPrefix(lx.dataLeft, []byte(p)) {
				lxm = lexeme{tokenType: Punctuator, length: len(p)}
				break
			}
		}
	}

	if lxm.tokenType == Unassigned {
		// Unknown byte (e.g. a stray non-ASCII character): consume it
		// verbatim as a single-byte punctuator rather than aborting the
		// scan. Downstream consumers decide whether an unrecognised token
		// is significant; the lexer itself never refuses to make progress.
		lxm = lexeme{tokenType: Punctuator, length: 1}
	}

	return lx.consume(lxm)
}

// AllTokens returns every token extracted from the input, including
// whitespace/comment/continue-line tokens; callers that want a "clean"
// code-only stream should filter by TokenType. The final element is always
// EOFToken.
func (lx *Lexer) AllTokens() []Token {
	var tokens []Token
	for {
		tok := lx.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}
