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
	"strconv"

	"github.com/mcfc-lang/mcfc/pkg/util/source"
)

// Parser turns a token stream into a Module by recursive descent. It accepts
// exactly the restricted grammar: integer/boolean literals, the four
// arithmetic operators, a single comparator, "if/else", function
// definitions with positional/keyword/default parameters, "global",
// "return", "import"/"from ... import" and dotted-name/call expressions.
type Parser struct {
	toks []Tok
	pos  int
	file *source.File
}

// Parse lexes and parses an entire source file into a Module.
func Parse(file *source.File) (*Module, error) {
	toks, err := Lex(file)
	if err != nil {
		return nil, err
	}

	p := &Parser{toks: toks, file: file}

	return p.parseModule()
}

func (p *Parser) peek() Tok      { return p.toks[p.pos] }
func (p *Parser) at(k TokenKind) bool { return p.peek().Kind == k }

func (p *Parser) advance() Tok {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}

	return tok
}

func (p *Parser) expect(k TokenKind) (Tok, error) {
	if !p.at(k) {
		return Tok{}, p.errorf(p.peek(), "expected %s, found %s", k, p.peek().Kind)
	}

	return p.advance(), nil
}

func (p *Parser) errorf(tok Tok, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.file == nil {
		return fmt.Errorf("%s", msg)
	}

	return p.file.SyntaxError(tok.Span, msg)
}

// skipNewlines consumes zero or more blank statement separators, which arise
// at module scope between top-level statements.
func (p *Parser) skipNewlines() {
	for p.at(TokNewline) {
		p.advance()
	}
}

func (p *Parser) parseModule() (*Module, error) {
	start := p.peek().Span

	p.skipNewlines()

	var body []Node

	for !p.at(TokEOF) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}

		body = append(body, stmt)
		p.skipNewlines()
	}

	return &Module{base: base{start}, Body: body}, nil
}

func (p *Parser) parseStmt() (Node, error) {
	switch p.peek().Kind {
	case TokImport:
		return p.parseImport()
	case TokFrom:
		return p.parseImportFrom()
	case TokDef:
		return p.parseFunctionDef()
	case TokGlobal:
		return p.parseGlobal()
	case TokIf:
		return p.parseIf()
	case TokReturn:
		return p.parseReturn()
	default:
		return p.parseSimpleStmt()
	}
}

// parseSuite parses ":" NEWLINE INDENT stmt+ DEDENT.
func (p *Parser) parseSuite() ([]Node, error) {
	if _, err := p.expect(TokColon); err != nil {
		return nil, err
	}

	if _, err := p.expect(TokNewline); err != nil {
		return nil, err
	}

	if _, err := p.expect(TokIndent); err != nil {
		return nil, err
	}

	var body []Node

	for !p.at(TokDedent) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}

		body = append(body, stmt)
	}

	if _, err := p.expect(TokDedent); err != nil {
		return nil, err
	}

	return body, nil
}

func (p *Parser) parseDottedName() (string, error) {
	tok, err := p.expect(TokIdent)
	if err != nil {
		return "", err
	}

	name := tok.Text
	for p.at(TokDot) {
		p.advance()

		part, err := p.expect(TokIdent)
		if err != nil {
			return "", err
		}

		name += "." + part.Text
	}

	return name, nil
}

func (p *Parser) parseAlias() (Alias, error) {
	name, err := p.parseDottedName()
	if err != nil {
		return Alias{}, err
	}

	alias := Alias{Name: name}

	if p.at(TokAs) {
		p.advance()

		asTok, err := p.expect(TokIdent)
		if err != nil {
			return Alias{}, err
		}

		alias.AsName = asTok.Text
	}

	return alias, nil
}

func (p *Parser) parseImport() (Node, error) {
	start := p.advance().Span // consume 'import'

	names := []Alias{}

	for {
		alias, err := p.parseAlias()
		if err != nil {
			return nil, err
		}

		names = append(names, alias)

		if !p.at(TokComma) {
			break
		}

		p.advance()
	}

	if _, err := p.expect(TokNewline); err != nil {
		return nil, err
	}

	return &Import{base: base{start}, Names: names}, nil
}

func (p *Parser) parseImportFrom() (Node, error) {
	start := p.advance().Span // consume 'from'

	module, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokImport); err != nil {
		return nil, err
	}

	names := []Alias{}

	for {
		nameTok, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}

		alias := Alias{Name: nameTok.Text}

		if p.at(TokAs) {
			p.advance()

			asTok, err := p.expect(TokIdent)
			if err != nil {
				return nil, err
			}

			alias.AsName = asTok.Text
		}

		names = append(names, alias)

		if !p.at(TokComma) {
			break
		}

		p.advance()
	}

	if _, err := p.expect(TokNewline); err != nil {
		return nil, err
	}

	return &ImportFrom{base: base{start}, Module: module, Names: names}, nil
}

func (p *Parser) parseFunctionDef() (Node, error) {
	start := p.advance().Span // consume 'def'

	nameTok, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}

	argsStart, err := p.expect(TokLParen)
	if err != nil {
		return nil, err
	}

	var params []Param

	for !p.at(TokRParen) {
		paramTok, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}

		param := Param{Name: paramTok.Text}

		if p.at(TokAssign) {
			p.advance()

			def, err := p.parseConstant()
			if err != nil {
				return nil, err
			}

			param.Default = def
		}

		params = append(params, param)

		if !p.at(TokComma) {
			break
		}

		p.advance()
	}

	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}

	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}

	return &FunctionDef{
		base: base{start},
		Name: nameTok.Text,
		Args: &Arguments{base: base{argsStart.Span}, Params: params},
		Body: body,
	}, nil
}

// parseConstant parses an integer or boolean literal, optionally preceded by
// a unary minus (for negative defaults).
func (p *Parser) parseConstant() (Node, error) {
	if p.at(TokMinus) {
		start := p.advance().Span

		inner, err := p.parseConstant()
		if err != nil {
			return nil, err
		}

		c, ok := inner.(*Constant)
		if !ok {
			return nil, p.errorf(p.peek(), "expected integer literal after unary '-'")
		}

		v, ok := c.Value.(int64)
		if !ok {
			return nil, p.errorf(p.peek(), "unary '-' applies only to integer literals")
		}

		return &Constant{base: base{start}, Value: -v}, nil
	}

	tok := p.peek()

	switch tok.Kind {
	case TokInt:
		p.advance()

		v, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, p.errorf(tok, "malformed integer literal %q", tok.Text)
		}

		return &Constant{base: base{tok.Span}, Value: v}, nil
	case TokTrue:
		p.advance()
		return &Constant{base: base{tok.Span}, Value: true}, nil
	case TokFalse:
		p.advance()
		return &Constant{base: base{tok.Span}, Value: false}, nil
	default:
		return nil, p.errorf(tok, "expected a constant, found %s", tok.Kind)
	}
}

func (p *Parser) parseGlobal() (Node, error) {
	start := p.advance().Span // consume 'global'

	var names []string

	for {
		tok, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}

		names = append(names, tok.Text)

		if !p.at(TokComma) {
			break
		}

		p.advance()
	}

	if _, err := p.expect(TokNewline); err != nil {
		return nil, err
	}

	return &Global{base: base{start}, Names: names}, nil
}

func (p *Parser) parseIf() (Node, error) {
	start := p.advance().Span // consume 'if'

	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}

	var elseBody []Node

	if p.at(TokElse) {
		p.advance()

		elseBody, err = p.parseSuite()
		if err != nil {
			return nil, err
		}
	}

	return &If{base: base{start}, Test: test, Body: body, Else: elseBody}, nil
}

func (p *Parser) parseReturn() (Node, error) {
	start := p.advance().Span // consume 'return'

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokNewline); err != nil {
		return nil, err
	}

	return &Return{base: base{start}, Value: value}, nil
}

// parseSimpleStmt parses "target (= target)* = value" or a bare expression
// statement.
func (p *Parser) parseSimpleStmt() (Node, error) {
	start := p.peek().Span

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if !p.at(TokAssign) {
		if _, err := p.expect(TokNewline); err != nil {
			return nil, err
		}

		return &Expr{base: base{start}, Value: first}, nil
	}

	exprs := []Node{first}

	for p.at(TokAssign) {
		p.advance()

		next, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		exprs = append(exprs, next)
	}

	if _, err := p.expect(TokNewline); err != nil {
		return nil, err
	}

	value := exprs[len(exprs)-1]
	targets := exprs[:len(exprs)-1]

	return &Assign{base: base{start}, Targets: targets, Value: value}, nil
}

func (p *Parser) parseExpr() (Node, error) { return p.parseComparison() }

func (p *Parser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	op, ok := compareOp(p.peek().Kind)
	if !ok {
		return left, nil
	}

	start := p.advance().Span

	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	return &Compare{base: base{start}, Left: left, Op: op, Right: right}, nil
}

func compareOp(k TokenKind) (CompareOp, bool) {
	switch k {
	case TokEqEq:
		return Eq, true
	case TokNotEq:
		return NotEq, true
	case TokGt:
		return Gt, true
	case TokLt:
		return Lt, true
	case TokGtE:
		return GtE, true
	case TokLtE:
		return LtE, true
	default:
		return 0, false
	}
}

func (p *Parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for p.at(TokPlus) || p.at(TokMinus) {
		op := Add
		if p.at(TokMinus) {
			op = Sub
		}

		start := p.advance().Span

		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}

		left = &BinOp{base: base{start}, Left: left, Op: op, Right: right}
	}

	return left, nil
}

func (p *Parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.at(TokStar) || p.at(TokSlash) {
		op := Mul
		if p.at(TokSlash) {
			op = Div
		}

		start := p.advance().Span

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &BinOp{base: base{start}, Left: left, Op: op, Right: right}
	}

	return left, nil
}

func (p *Parser) parseUnary() (Node, error) {
	if p.at(TokNot) {
		start := p.advance().Span

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &UnaryOp{base: base{start}, Op: Not, Operand: operand}, nil
	}

	if p.at(TokMinus) {
		start := p.advance().Span

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &UnaryOp{base: base{start}, Op: USub, Operand: operand}, nil
	}

	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Node, error) {
	node, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.at(TokDot):
			p.advance()

			nameTok, err := p.expect(TokIdent)
			if err != nil {
				return nil, err
			}

			node = &Attribute{base: base{node.Span()}, Value: node, Attr: nameTok.Text}
		case p.at(TokLParen):
			p.advance()

			args, keywords, err := p.parseArgList()
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(TokRParen); err != nil {
				return nil, err
			}

			node = &Call{base: base{node.Span()}, Func: node, Args: args, Keywords: keywords}
		default:
			return node, nil
		}
	}
}

func (p *Parser) parseArgList() ([]Node, []Keyword, error) {
	var (
		args     []Node
		keywords []Keyword
	)

	for !p.at(TokRParen) {
		if p.at(TokIdent) && p.pos+1 < len(p.toks) && p.toks[p.pos+1].Kind == TokAssign {
			nameTok := p.advance()
			p.advance() // '='

			value, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}

			keywords = append(keywords, Keyword{Arg: nameTok.Text, Value: value})
		} else {
			value, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}

			args = append(args, value)
		}

		if !p.at(TokComma) {
			break
		}

		p.advance()
	}

	return args, keywords, nil
}

func (p *Parser) parseAtom() (Node, error) {
	tok := p.peek()

	switch tok.Kind {
	case TokIdent:
		p.advance()
		return &Name{base: base{tok.Span}, ID: tok.Text}, nil
	case TokInt:
		p.advance()

		v, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, p.errorf(tok, "malformed integer literal %q", tok.Text)
		}

		return &Constant{base: base{tok.Span}, Value: v}, nil
	case TokTrue:
		p.advance()
		return &Constant{base: base{tok.Span}, Value: true}, nil
	case TokFalse:
		p.advance()
		return &Constant{base: base{tok.Span}, Value: false}, nil
	case TokString:
		p.advance()
		return &Constant{base: base{tok.Span}, Value: tok.Text}, nil
	case TokLParen:
		p.advance()

		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}

		return inner, nil
	default:
		return nil, p.errorf(tok, "unexpected token %s", tok.Kind)
	}
}
