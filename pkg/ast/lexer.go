// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package ast

import (
	"fmt"
	"unicode"

	"github.com/mcfc-lang/mcfc/pkg/util"
	"github.com/mcfc-lang/mcfc/pkg/util/source"
)

// TokenKind enumerates the lexical classes of the restricted source
// language. Indentation is folded into TokIndent/TokDedent tokens (rather
// than left implicit in whitespace) so the parser never has to reason about
// columns directly — the classic approach also used by Python's own
// tokenizer.
type TokenKind uint

// Token kinds.
const (
	TokEOF TokenKind = iota
	TokNewline
	TokIndent
	TokDedent
	TokIdent
	TokInt
	TokDef
	TokIf
	TokElse
	TokReturn
	TokImport
	TokFrom
	TokAs
	TokGlobal
	TokTrue
	TokFalse
	TokNot
	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokAssign
	TokEqEq
	TokNotEq
	TokGt
	TokLt
	TokGtE
	TokLtE
	TokLParen
	TokRParen
	TokComma
	TokDot
	TokColon
	TokString
)

var keywords = map[string]TokenKind{
	"def":    TokDef,
	"if":     TokIf,
	"else":   TokElse,
	"return": TokReturn,
	"import": TokImport,
	"from":   TokFrom,
	"as":     TokAs,
	"global": TokGlobal,
	"True":   TokTrue,
	"False":  TokFalse,
	"not":    TokNot,
}

var operators = []struct {
	text string
	kind TokenKind
}{
	// Longest first, so the scanner prefers "==" over "=".
	{"==", TokEqEq}, {"!=", TokNotEq}, {">=", TokGtE}, {"<=", TokLtE},
	{"+", TokPlus}, {"-", TokMinus}, {"*", TokStar}, {"/", TokSlash},
	{"=", TokAssign}, {">", TokGt}, {"<", TokLt},
	{"(", TokLParen}, {")", TokRParen}, {",", TokComma}, {".", TokDot}, {":", TokColon},
}

// Tok is one lexed token: a classified kind, its text (unquoted for string
// literals; empty for the structural NEWLINE, INDENT, DEDENT and EOF tokens)
// and its location.
type Tok struct {
	Kind TokenKind
	Text string
	Span source.Span
}

// internal combinator tags, used only within one line's scan; distinct from
// TokenKind, which is resolved from the matched text afterwards.
const (
	tagWS uint = iota
	tagIdent
	tagInt
	tagOp
	tagStr
)

type wsScanner struct{}

func (wsScanner) Scan(rs []rune) util.Option[source.Token] {
	i := 0
	for i < len(rs) && (rs[i] == ' ' || rs[i] == '\t') {
		i++
	}

	if i == 0 {
		return util.None[source.Token]()
	}

	return util.Some(source.Token{Kind: tagWS, Span: source.NewSpan(0, i)})
}

type identScanner struct{}

func (identScanner) Scan(rs []rune) util.Option[source.Token] {
	if len(rs) == 0 || !isIdentStart(rs[0]) {
		return util.None[source.Token]()
	}

	i := 1
	for i < len(rs) && isIdentCont(rs[i]) {
		i++
	}

	return util.Some(source.Token{Kind: tagIdent, Span: source.NewSpan(0, i)})
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isIdentCont(r rune) bool  { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }

type intScanner struct{}

func (intScanner) Scan(rs []rune) util.Option[source.Token] {
	i := 0
	for i < len(rs) && unicode.IsDigit(rs[i]) {
		i++
	}

	if i == 0 {
		return util.None[source.Token]()
	}

	return util.Some(source.Token{Kind: tagInt, Span: source.NewSpan(0, i)})
}

// strScanner recognises a double-quoted string literal, used only for
// template-call arguments: the source subset has no string-typed
// expressions, but a template generator may interpret a Constant whose
// Value is a string (e.g. a bossbar id or color name) however it likes,
// since template lowering bypasses the normal Constant rule entirely.
type strScanner struct{}

func (strScanner) Scan(rs []rune) util.Option[source.Token] {
	if len(rs) == 0 || rs[0] != '"' {
		return util.None[source.Token]()
	}

	i := 1
	for i < len(rs) && rs[i] != '"' {
		if rs[i] == '\\' && i+1 < len(rs) {
			i++
		}

		i++
	}

	if i >= len(rs) {
		return util.None[source.Token]()
	}

	return util.Some(source.Token{Kind: tagStr, Span: source.NewSpan(0, i+1)})
}

type opScanner struct{}

func (opScanner) Scan(rs []rune) util.Option[source.Token] {
	for _, op := range operators {
		n := len(op.text)
		if n <= len(rs) && string(rs[:n]) == op.text {
			return util.Some(source.Token{Kind: tagOp, Span: source.NewSpan(0, n)})
		}
	}

	return util.None[source.Token]()
}

var lineScanner = source.Or[rune](wsScanner{}, identScanner{}, intScanner{}, strScanner{}, opScanner{})

// Lex tokenises an entire source file, folding leading whitespace into
// TokIndent/TokDedent tokens and terminating every logical line with a
// TokNewline. Blank lines and '#'-comment lines are dropped entirely and do
// not affect the indentation stack.
func Lex(file *source.File) ([]Tok, error) {
	var (
		toks    []Tok
		indents = []int{0}
		content = file.Contents()
		offset  = 0
	)

	for offset <= len(content) {
		lineStart := offset
		for offset < len(content) && content[offset] != '\n' {
			offset++
		}

		line := content[lineStart:offset]
		lineEnd := offset

		if offset < len(content) {
			offset++ // consume '\n'
		} else {
			offset++ // terminate loop after processing final (possibly empty) line
		}

		indent := 0
		for indent < len(line) && (line[indent] == ' ' || line[indent] == '\t') {
			indent++
		}

		body := line[indent:]
		if len(body) == 0 || body[0] == '#' {
			continue // blank or comment-only line: no structural effect
		}

		top := indents[len(indents)-1]

		switch {
		case indent > top:
			indents = append(indents, indent)
			toks = append(toks, Tok{Kind: TokIndent, Span: source.NewSpan(lineStart, lineStart+indent)})
		case indent < top:
			for len(indents) > 1 && indents[len(indents)-1] > indent {
				indents = indents[:len(indents)-1]
				toks = append(toks, Tok{Kind: TokDedent, Span: source.NewSpan(lineStart, lineStart)})
			}

			if indents[len(indents)-1] != indent {
				return nil, fmt.Errorf("inconsistent indentation at offset %d", lineStart)
			}
		}

		lineToks, err := lexLine(body, lineStart+indent)
		if err != nil {
			return nil, err
		}

		toks = append(toks, lineToks...)
		toks = append(toks, Tok{Kind: TokNewline, Span: source.NewSpan(lineEnd, lineEnd)})
	}

	for len(indents) > 1 {
		indents = indents[:len(indents)-1]
		toks = append(toks, Tok{Kind: TokDedent, Span: source.NewSpan(len(content), len(content))})
	}

	toks = append(toks, Tok{Kind: TokEOF, Span: source.NewSpan(len(content), len(content))})

	return toks, nil
}

// lexLine tokenises the (indent-stripped) body of one logical line, with
// base giving the absolute offset of body[0] in the original file.
func lexLine(body []rune, base int) ([]Tok, error) {
	lexer := source.NewLexer(body, lineScanner)

	var out []Tok

	for lexer.HasNext() {
		tok := lexer.Next()
		text := string(body[tok.Span.Start():tok.Span.End()])

		switch tok.Kind {
		case tagWS:
			continue
		case tagIdent:
			kind := TokIdent
			if kw, ok := keywords[text]; ok {
				kind = kw
			}

			out = append(out, Tok{Kind: kind, Text: text, Span: shift(tok.Span, base)})
		case tagInt:
			out = append(out, Tok{Kind: TokInt, Text: text, Span: shift(tok.Span, base)})
		case tagStr:
			out = append(out, Tok{Kind: TokString, Text: unquote(text), Span: shift(tok.Span, base)})
		case tagOp:
			kind := opKind(text)
			out = append(out, Tok{Kind: kind, Text: text, Span: shift(tok.Span, base)})
		}
	}

	if lexer.Remaining() > 0 {
		return nil, fmt.Errorf("unrecognised character %q at offset %d", string(body[len(body)-int(lexer.Remaining())]), base)
	}

	return out, nil
}

// unquote strips the surrounding double quotes from a lexed string literal
// and resolves the two backslash escapes the scanner tolerates ('\"', '\\').
func unquote(text string) string {
	inner := text[1 : len(text)-1]

	var b []rune

	rs := []rune(inner)
	for i := 0; i < len(rs); i++ {
		if rs[i] == '\\' && i+1 < len(rs) {
			i++
		}

		b = append(b, rs[i])
	}

	return string(b)
}

func opKind(text string) TokenKind {
	for _, op := range operators {
		if op.text == text {
			return op.kind
		}
	}

	panic("unreachable: unknown operator text " + text)
}

func shift(span source.Span, base int) source.Span {
	return source.NewSpan(span.Start()+base, span.End()+base)
}

// String renders a token kind for diagnostics.
func (k TokenKind) String() string {
	names := map[TokenKind]string{
		TokEOF: "EOF", TokNewline: "NEWLINE", TokIndent: "INDENT", TokDedent: "DEDENT",
		TokIdent: "IDENT", TokInt: "INT", TokDef: "def", TokIf: "if", TokElse: "else",
		TokReturn: "return", TokImport: "import", TokFrom: "from", TokAs: "as",
		TokGlobal: "global", TokTrue: "True", TokFalse: "False", TokNot: "not",
		TokPlus: "+", TokMinus: "-", TokStar: "*", TokSlash: "/", TokAssign: "=",
		TokEqEq: "==", TokNotEq: "!=", TokGt: ">", TokLt: "<", TokGtE: ">=", TokLtE: "<=",
		TokLParen: "(", TokRParen: ")", TokComma: ",", TokDot: ".", TokColon: ":",
		TokString: "STRING",
	}
	if s, ok := names[k]; ok {
		return s
	}

	return fmt.Sprintf("Tok(%d)", uint(k))
}
