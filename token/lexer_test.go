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

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextToken(t *testing.T) {
	testCases := []struct {
		input           []byte
		expectedType    TokenType
		expectedContent string
	}{
		{input: []byte(""), expectedType: EOF, expectedContent: ""},
		{input: []byte("&&"), expectedType: Punctuator, expectedContent: "&&"},
		{input: []byte("->"), expectedType: Punctuator, expectedContent: "->"},
		{input: []byte("\n\n"), expectedType: Newline, expectedContent: "\n"},
		{input: []byte("\t\t abc"), expectedType: Whitespace, expectedContent: "\t\t "},
		{input: []byte("\\\n MACRO_CONTINUED"), expectedType: ContinueLine, expectedContent: "\\\n"},
		{input: []byte("\\    \n MACRO_CONTINUED"), expectedType: ContinueLine, expectedContent: "\\    \n"},
		{input: []byte("// a comment"), expectedType: CommentLine, expectedContent: "// a comment"},
		{input: []byte("// a comment\nint main()"), expectedType: CommentLine, expectedContent: "// a comment"},
		{input: []byte("/*\n multi line \n*/\nint"), expectedType: CommentBlock, expectedContent: "/*\n multi line \n*/"},
		{input: []byte(`"a string literal"`), expectedType: StringLiteral, expectedContent: `"a string literal"`},
		{input: []byte(`"escaped \" quote"`), expectedType: StringLiteral, expectedContent: `"escaped \" quote"`},
		{input: []byte(`'c'`), expectedType: CharLiteral, expectedContent: `'c'`},
		{input: []byte("identifier123;"), expectedType: Identifier, expectedContent: "identifier123"},
		{input: []byte("0x1AU"), expectedType: IntegerLiteral, expectedContent: "0x1AU"},
		{input: []byte("0777"), expectedType: IntegerLiteral, expectedContent: "0777"},
		{input: []byte("123ULL"), expectedType: IntegerLiteral, expectedContent: "123ULL"},
		{input: []byte("3.14f"), expectedType: FloatLiteral, expectedContent: "3.14f"},
		{input: []byte("1e10"), expectedType: FloatLiteral, expectedContent: "1e10"},
	}

	for _, tc := range testCases {
		lx := NewLexer(tc.input)
		token := lx.NextToken()
		assert.Equal(t, tc.expectedType, token.Type, "unexpected type for input: %q", tc.input)
		assert.Equal(t, tc.expectedContent, token.Content, "unexpected content for input: %q", tc.input)
	}
}

func TestNextTokenIntegerFlags(t *testing.T) {
	lx := NewLexer([]byte("0x10ULL"))
	token := lx.NextToken()
	assert.Equal(t, IntegerLiteral, token.Type)
	assert.Equal(t, Hex|Unsigned|LongLong, token.IntFlags)
}

func TestDirectiveIntroducerOnlyAtLineStart(t *testing.T) {
	lx := NewLexer([]byte("#define"))
	tok := lx.NextToken()
	assert.Equal(t, DirectiveIntroducer, tok.Type)
	assert.Equal(t, "#", tok.Content)

	lx = NewLexer([]byte("   #  define"))
	tok = lx.NextToken()
	assert.Equal(t, Whitespace, tok.Type)
	tok = lx.NextToken()
	assert.Equal(t, DirectiveIntroducer, tok.Type)
	assert.Equal(t, "#  ", tok.Content)
}

func TestDirectiveIntroducerNotMidLine(t *testing.T) {
	lx := NewLexer([]byte("a # b"))
	tok := lx.NextToken() // "a"
	assert.Equal(t, Identifier, tok.Type)
	lx.NextToken() // whitespace
	tok = lx.NextToken()
	assert.Equal(t, Punctuator, tok.Type)
	assert.Equal(t, "#", tok.Content)
}

func TestAllTokensEndsWithEOF(t *testing.T) {
	lx := NewLexer([]byte("int x;"))
	tokens := lx.AllTokens()
	assert.Equal(t, EOF, tokens[len(tokens)-1].Type)
}

func TestLineNumbersAcrossContinuation(t *testing.T) {
	lx := NewLexer([]byte("#define SQUARE(x)\\\n((x)*(x))"))
	var tokens []Token
	for {
		tok := lx.NextToken()
		if tok.Type == EOF {
			break
		}
		tokens = append(tokens, tok)
	}
	last := tokens[len(tokens)-1]
	assert.Equal(t, 2, last.Location.Line)
}

func TestUnterminatedStringLiteralLatchesErr(t *testing.T) {
	lx := NewLexer([]byte(`"never closed`))
	tok := lx.NextToken()
	assert.Equal(t, StringLiteral, tok.Type)
	assert.ErrorIs(t, lx.Err(), ErrUnterminated)
}

func TestUnterminatedBlockCommentLatchesErr(t *testing.T) {
	lx := NewLexer([]byte("/* never closed"))
	tok := lx.NextToken()
	assert.Equal(t, CommentBlock, tok.Type)
	assert.ErrorIs(t, lx.Err(), ErrUnterminated)
}

func TestTerminatedLiteralsLeaveErrNil(t *testing.T) {
	lx := NewLexer([]byte(`"fine" 'c' /* fine */`))
	for lx.Err() == nil {
		if tok := lx.NextToken(); tok.Type == EOF {
			break
		}
	}
	assert.NoError(t, lx.Err())
}

func TestStringLiteralSurvivesCommentLookingContent(t *testing.T) {
	lx := NewLexer([]byte(`"contains /* not a comment */ inside"`))
	tok := lx.NextToken()
	assert.Equal(t, StringLiteral, tok.Type)
	assert.Equal(t, `"contains /* not a comment */ inside"`, tok.Content)
}
