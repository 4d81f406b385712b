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

package declparser

import "github.com/chdr-project/chdr/token"

// applyReplacements implements §6's configurable token-replacement table:
// any identifier token matching a key in table is rewritten before the
// declaration grammar ever sees it. Two shapes are recognised, per §4.5/§6:
//
//   - bare identifier, e.g. a modifier-only spelling with no following
//     `(...)`: the token is dropped if its configured replacement is empty,
//     or replaced by a single identifier token spelling the replacement.
//   - argument-wrapper, e.g. `__declspec(dllexport)` or `DL_EXPORT(x)`: the
//     wrapper name and its balanced `(...)` argument are consumed together.
//     An empty replacement (`__declspec(x) -> empty`) drops the whole
//     group; a non-empty one (`DL_EXPORT(x) -> x`) drops only the wrapper
//     name and re-emits the captured argument tokens in its place, since
//     the replacement value here names the argument itself, not literal
//     replacement text.
//
// `__declspec` is a compiler keyword, not a `#define`d macro, so it never
// reaches the preprocessor's substitution and must be handled here.
func applyReplacements(tokens []token.Token, table map[string]string) []token.Token {
	if len(table) == 0 {
		return tokens
	}
	out := make([]token.Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		repl, ok := table[t.Content]
		if !ok || t.Type != token.Identifier {
			out = append(out, t)
			continue
		}

		if j := nextSignificant(tokens, i+1); j < len(tokens) && tokens[j].Type == token.Punctuator && tokens[j].Content == "(" {
			arg, end := collectBalancedParen(tokens, j)
			i = end
			if repl != "" {
				out = append(out, arg...)
			}
			continue
		}

		if repl == "" {
			continue
		}
		out = append(out, token.Token{Type: token.Identifier, Location: t.Location, Content: repl})
	}
	return out
}

// nextSignificant returns the index of the first token at or after from
// that isn't whitespace/comment/line-continuation/newline noise, or
// len(tokens) if none remain.
func nextSignificant(tokens []token.Token, from int) int {
	for i := from; i < len(tokens); i++ {
		switch tokens[i].Type {
		case token.Whitespace, token.CommentLine, token.CommentBlock, token.ContinueLine, token.Newline:
			continue
		}
		return i
	}
	return len(tokens)
}

// collectBalancedParen captures the argument tokens inside the parenthesis
// group starting at tokens[open] (which must be "("), tracking nested
// parens, and returns them along with the index of the matching closing
// ")". If the group is never closed, every remaining token is treated as
// the argument and end is len(tokens)-1.
func collectBalancedParen(tokens []token.Token, open int) (arg []token.Token, end int) {
	depth := 0
	for i := open; i < len(tokens); i++ {
		switch {
		case tokens[i].Type == token.Punctuator && tokens[i].Content == "(":
			depth++
			if i > open {
				arg = append(arg, tokens[i])
			}
		case tokens[i].Type == token.Punctuator && tokens[i].Content == ")":
			depth--
			if depth == 0 {
				return arg, i
			}
			arg = append(arg, tokens[i])
		default:
			if i > open {
				arg = append(arg, tokens[i])
			}
		}
	}
	return arg, len(tokens) - 1
}
