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

// Package token defines the lexical vocabulary shared by every stage of the
// header-processing pipeline: the Token/TokenType produced by the Lexer and
// consumed, unmodified, all the way down to the declaration parser.
package token

import "fmt"

// TokenType classifies a Token. The lexer never merges kinds: callers that
// only care about code (e.g. the preprocessor skipping comments) filter by
// kind rather than relying on content sniffing.
type TokenType int

const (
	Unassigned TokenType = iota

	Identifier
	IntegerLiteral
	FloatLiteral
	CharLiteral
	StringLiteral
	Punctuator

	// DirectiveIntroducer is a '#' found at the start of a logical line.
	DirectiveIntroducer

	Newline
	Whitespace
	ContinueLine // backslash immediately followed by a newline
	CommentLine
	CommentBlock

	EOF
)

func (t TokenType) String() string {
	switch t {
	case Identifier:
		return "identifier"
	case IntegerLiteral:
		return "integer-literal"
	case FloatLiteral:
		return "float-literal"
	case CharLiteral:
		return "char-literal"
	case StringLiteral:
		return "string-literal"
	case Punctuator:
		return "punctuator"
	case DirectiveIntroducer:
		return "directive-introducer"
	case Newline:
		return "newline"
	case Whitespace:
		return "whitespace"
	case ContinueLine:
		return "continue-line"
	case CommentLine:
		return "comment-line"
	case CommentBlock:
		return "comment-block"
	case EOF:
		return "eof"
	default:
		return "unassigned"
	}
}

// IntFlags records the base and C suffix letters recognised on an
// IntegerLiteral token, e.g. "0x10ULL" -> Hex|Unsigned|LongLong.
type IntFlags int

const (
	Decimal IntFlags = 0
	Octal   IntFlags = 1 << iota
	Hex
	Binary
	Unsigned
	Long
	LongLong
)

// Token is one lexeme together with its source location and literal text.
type Token struct {
	Type     TokenType
	Location Cursor
	Content  string
	// IntFlags is only meaningful when Type == IntegerLiteral.
	IntFlags IntFlags
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Type, t.Content, t.Location)
}

// EOFToken is returned once the lexer has consumed all input.
var EOFToken = Token{Type: EOF, Location: CursorEOF}
