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

package directive

import (
	"strconv"

	"github.com/chdr-project/chdr/internal/diag"
	"github.com/chdr-project/chdr/token"
)

// Line is one logical source line: either a recognised directive, or a span
// of ordinary (non-directive) tokens to be fed to macro substitution and,
// once a conditional block selects it, to the declaration parser.
type Line struct {
	Directive Directive     // nil for a Text line (or a bare '#'/ignored pragma)
	Text      []token.Token // set only for a Text line
	Location  token.Cursor
}

// Scan splits a token stream (as produced by token.Lexer.AllTokens) into
// logical lines and classifies each one. Comments are dropped; a line
// beginning with token.DirectiveIntroducer is parsed as a Directive.
func Scan(tokens []token.Token, diags *diag.Sink) []Line {
	var lines []Line
	var cur []token.Token
	flush := func() {
		if len(cur) == 0 {
			return
		}
		lines = append(lines, buildLine(cur, diags))
		cur = nil
	}
	for _, tok := range tokens {
		switch tok.Type {
		case token.Newline:
			flush()
		case token.EOF:
			flush()
			return lines
		case token.CommentLine, token.CommentBlock, token.ContinueLine:
			// dropped: carry no content past this point
		default:
			cur = append(cur, tok)
		}
	}
	flush()
	return lines
}

func buildLine(raw []token.Token, diags *diag.Sink) Line {
	loc := raw[0].Location
	i := 0
	for i < len(raw) && raw[i].Type == token.Whitespace {
		i++
	}
	if i >= len(raw) {
		return Line{Location: loc}
	}
	if raw[i].Type != token.DirectiveIntroducer {
		return Line{Text: significant(raw), Location: loc}
	}
	d := parseDirective(raw[i+1:], loc, diags)
	return Line{Directive: d, Location: loc}
}

func significant(toks []token.Token) []token.Token {
	var out []token.Token
	for _, t := range toks {
		if t.Type == token.Whitespace {
			continue
		}
		out = append(out, t)
	}
	return out
}

func skipWS(toks []token.Token, i int) int {
	for i < len(toks) && toks[i].Type == token.Whitespace {
		i++
	}
	return i
}

func parseDirective(rest []token.Token, loc token.Cursor, diags *diag.Sink) Directive {
	i := skipWS(rest, 0)
	if i >= len(rest) {
		// bare '#' on its own line is a legal null directive: ignore.
		return nil
	}
	kw := rest[i]
	if kw.Type != token.Identifier {
		diags.Warn(diag.KindMalformedDirective, loc, "malformed directive")
		return nil
	}
	i++
	switch kw.Content {
	case "define":
		return parseDefine(rest, i, loc, diags)
	case "undef":
		return parseUndef(rest, i, loc, diags)
	case "if":
		return parseConditionExpr(If, rest, i, loc, diags)
	case "elif":
		return parseConditionExpr(Elif, rest, i, loc, diags)
	case "ifdef":
		return parseDefTest(If, false, rest, i, loc, diags)
	case "ifndef":
		return parseDefTest(If, true, rest, i, loc, diags)
	case "elifdef":
		return parseDefTest(Elif, false, rest, i, loc, diags)
	case "elifndef":
		return parseDefTest(Elif, true, rest, i, loc, diags)
	case "else":
		return Else{Location: loc}
	case "endif":
		return Endif{Location: loc}
	case "pragma":
		return parsePragma(rest, i, loc, diags)
	default:
		diags.Warn(diag.KindUnknownDirective, loc, "unknown directive #%s", kw.Content)
		return Unknown{Keyword: kw.Content, Location: loc}
	}
}

func parseDefine(rest []token.Token, i int, loc token.Cursor, diags *diag.Sink) Directive {
	i = skipWS(rest, i)
	if i >= len(rest) || rest[i].Type != token.Identifier {
		diags.Warn(diag.KindMalformedDirective, loc, "#define missing macro name")
		return nil
	}
	name := rest[i].Content
	i++

	var params []string
	variadic := false
	if i < len(rest) && rest[i].Type == token.Punctuator && rest[i].Content == "(" {
		// No whitespace token between the name and '(': function-like.
		i++
		params = []string{}
		for {
			i = skipWS(rest, i)
			if i < len(rest) && rest[i].Content == ")" {
				i++
				break
			}
			if i < len(rest) && rest[i].Content == "..." {
				variadic = true
				i++
				i = skipWS(rest, i)
				if i < len(rest) && rest[i].Content == ")" {
					i++
				}
				break
			}
			if i >= len(rest) || rest[i].Type != token.Identifier {
				diags.Warn(diag.KindMalformedDirective, loc, "#define %s: malformed parameter list", name)
				break
			}
			params = append(params, rest[i].Content)
			i++
			i = skipWS(rest, i)
			if i < len(rest) && rest[i].Content == "," {
				i++
				continue
			}
			if i < len(rest) && rest[i].Content == ")" {
				i++
				break
			}
			break
		}
	}
	i = skipWS(rest, i)
	body := significant(rest[i:])
	return Define{Name: name, Params: params, Variadic: variadic, Body: body, Location: loc}
}

func parseUndef(rest []token.Token, i int, loc token.Cursor, diags *diag.Sink) Directive {
	i = skipWS(rest, i)
	if i >= len(rest) || rest[i].Type != token.Identifier {
		diags.Warn(diag.KindMalformedDirective, loc, "#undef missing macro name")
		return nil
	}
	return Undef{Name: rest[i].Content, Location: loc}
}

func parseConditionExpr(kind ConditionalKind, rest []token.Token, i int, loc token.Cursor, diags *diag.Sink) Directive {
	cond := significant(rest[i:])
	if len(cond) == 0 {
		diags.Warn(diag.KindMalformedDirective, loc, "missing condition expression")
		return nil
	}
	return Conditional{Kind: kind, Condition: cond, Location: loc}
}

func parseDefTest(kind ConditionalKind, negate bool, rest []token.Token, i int, loc token.Cursor, diags *diag.Sink) Directive {
	i = skipWS(rest, i)
	if i >= len(rest) || rest[i].Type != token.Identifier {
		diags.Warn(diag.KindMalformedDirective, loc, "missing macro name")
		return nil
	}
	name := rest[i]
	definedTok := token.Token{Type: token.Identifier, Content: "defined", Location: loc}
	nameTok := token.Token{Type: token.Identifier, Content: name.Content, Location: name.Location}
	var cond []token.Token
	if negate {
		cond = []token.Token{{Type: token.Punctuator, Content: "!", Location: loc}, definedTok, nameTok}
	} else {
		cond = []token.Token{definedTok, nameTok}
	}
	return Conditional{Kind: kind, Condition: cond, Location: loc}
}

func parsePragma(rest []token.Token, i int, loc token.Cursor, diags *diag.Sink) Directive {
	i = skipWS(rest, i)
	if i >= len(rest) || rest[i].Type != token.Identifier || rest[i].Content != "pack" {
		// Any other pragma (or a malformed one) is ignored silently.
		return nil
	}
	i++
	i = skipWS(rest, i)
	if i >= len(rest) || rest[i].Content != "(" {
		diags.Warn(diag.KindMalformedDirective, loc, "#pragma pack missing '('")
		return nil
	}
	i++
	var args [][]token.Token
	var cur []token.Token
	for i < len(rest) && rest[i].Content != ")" {
		if rest[i].Type == token.Whitespace {
			i++
			continue
		}
		if rest[i].Content == "," {
			args = append(args, cur)
			cur = nil
			i++
			continue
		}
		cur = append(cur, rest[i])
		i++
	}
	if len(cur) > 0 || len(args) > 0 {
		args = append(args, cur)
	}

	if len(args) == 0 {
		return Pragma{Kind: PackReset, Location: loc}
	}
	first := args[0]
	if len(first) == 1 && first[0].Type == token.IntegerLiteral {
		v, err := strconv.Atoi(first[0].Content)
		if err != nil {
			diags.Warn(diag.KindMalformedDirective, loc, "#pragma pack: invalid value %q", first[0].Content)
			return nil
		}
		return Pragma{Kind: PackSet, Value: &v, Location: loc}
	}
	if len(first) == 1 && first[0].Type == token.Identifier && first[0].Content == "push" {
		p := Pragma{Kind: PackPush, Location: loc}
		for _, a := range args[1:] {
			if len(a) != 1 {
				continue
			}
			switch a[0].Type {
			case token.Identifier:
				p.Label = a[0].Content
			case token.IntegerLiteral:
				v, err := strconv.Atoi(a[0].Content)
				if err == nil {
					p.Value = &v
				}
			}
		}
		return p
	}
	if len(first) == 1 && first[0].Type == token.Identifier && first[0].Content == "pop" {
		p := Pragma{Kind: PackPop, Location: loc}
		if len(args) > 1 && len(args[1]) == 1 && args[1][0].Type == token.Identifier {
			p.Label = args[1][0].Content
		}
		return p
	}
	diags.Warn(diag.KindMalformedDirective, loc, "#pragma pack: unrecognised form")
	return nil
}
