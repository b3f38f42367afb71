// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"strconv"
	"strings"
)

// Parser is a recursive-descent parser with Pratt precedence over `|>`,
// comparison, and arithmetic operators (§4.1). Construct with
// [NewParser]; call [Parser.ParseProgram].
type Parser struct {
	lex    *Lexer
	tok    Token
	peeked *Token
}

// NewParser wraps lex, priming the first token.
func NewParser(lex *Lexer) (*Parser, error) {
	p := &Parser{lex: lex}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	if p.peeked != nil {
		p.tok = *p.peeked
		p.peeked = nil
		return nil
	}
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *Parser) peekNext() (Token, error) {
	if p.peeked == nil {
		tok, err := p.lex.Next()
		if err != nil {
			return Token{}, err
		}
		p.peeked = &tok
	}
	return *p.peeked, nil
}

// skipNewlines consumes zero or more TokNewline, since blank lines act as
// insignificant separators between statements that are already delimited
// by their own syntax.
func (p *Parser) skipNewlines() error {
	for p.tok.Kind == TokNewline {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) expect(kind TokenKind) (Token, error) {
	if p.tok.Kind != kind {
		return Token{}, &ParseError{At: p.tok.At, Expected: kind.String(), Found: p.tok.Kind.String()}
	}
	tok := p.tok
	err := p.advance()
	return tok, err
}

// ParseProgram parses a full source file: a top-level sequence of
// `name: expr` bindings (§4.2), separated by newlines.
func (p *Parser) ParseProgram(source string) (*Program, error) {
	prog := &Program{Source: source}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	for p.tok.Kind != TokEOF {
		b, err := p.parseBinding()
		if err != nil {
			return nil, err
		}
		prog.Bindings = append(prog.Bindings, b)
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

func (p *Parser) parseBinding() (*BindingExpr, error) {
	at := p.tok.At
	name, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokColon); err != nil {
		return nil, err
	}
	val, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	return &BindingExpr{Span: at, Name: name.Text, Value: val}, nil
}

// parseBlock parses `{ binding* result }`: zero or more `name: expr`
// bindings followed by a final result expression, newline-separated.
func (p *Parser) parseBlock() (*BlockExpr, error) {
	at := p.tok.At
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	block := &BlockExpr{Span: at}
	for {
		// A binding is `ident :` followed by an expression; anything else
		// starts the block's final result expression.
		if p.tok.Kind == TokIdent {
			if next, err := p.peekNext(); err == nil && next.Kind == TokColon {
				b, err := p.parseBinding()
				if err != nil {
					return nil, err
				}
				block.Bindings = append(block.Bindings, b)
				if err := p.skipNewlines(); err != nil {
					return nil, err
				}
				continue
			}
		}
		break
	}
	result, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	block.Result = result
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return block, nil
}

// Precedence levels for the Pratt parser, lowest to highest (§4.1: "Pratt
// precedence over the pipe operator |>, comparison …, arithmetic, and
// postfix ? and .field").
const (
	precLowest = iota
	precPipe
	precComparison
	precAdditive
	precMultiplicative
)

func precedenceOf(kind TokenKind) int {
	switch kind {
	case TokPipe:
		return precPipe
	case TokEq, TokNotEq, TokLt, TokGt, TokLtEq, TokGtEq:
		return precComparison
	case TokPlus, TokMinus:
		return precAdditive
	case TokStar, TokSlash:
		return precMultiplicative
	default:
		return precLowest
	}
}

func (p *Parser) parseExpr(minPrec int) (Expr, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for {
		prec := precedenceOf(p.tok.Kind)
		if prec <= minPrec {
			break
		}
		if p.tok.Kind == TokPipe {
			left, err = p.parsePipeRHS(left)
			if err != nil {
				return nil, err
			}
			continue
		}
		op := p.tok.Kind
		at := p.tok.At
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseExpr(prec)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Span: at, Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parsePipeRHS parses `|> f(args…)` / `|> HOLD name { body }` /
// `|> WHEN { … }` / `|> THEN { … }`, with left as the implicit first
// argument (§4.1, §4.3).
func (p *Parser) parsePipeRHS(left Expr) (Expr, error) {
	at := p.tok.At
	if err := p.advance(); err != nil { // consume |>
		return nil, err
	}
	switch p.tok.Kind {
	case TokHold:
		return p.parseHold(left)
	case TokWhen:
		return p.parseWhen(left, false)
	case TokWhile:
		return p.parseWhen(left, true)
	case TokThen:
		return p.parseThen(left)
	default:
		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		call, ok := rhs.(*CallExpr)
		if !ok {
			return nil, &ParseError{At: at, Expected: "function call after |>", Found: "expression"}
		}
		call.Args = append([]Arg{{Name: "", Value: left}}, call.Args...)
		return &PipeExpr{Span: at, Left: left, Call: call}, nil
	}
}

func (p *Parser) parseHold(initial Expr) (Expr, error) {
	at := p.tok.At
	if err := p.advance(); err != nil { // consume HOLD
		return nil, err
	}
	name, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &HoldExpr{Span: at, Initial: initial, Name: name.Text, Body: block}, nil
}

func (p *Parser) parseThen(input Expr) (Expr, error) {
	at := p.tok.At
	if err := p.advance(); err != nil { // consume THEN
		return nil, err
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ThenExpr{Span: at, Input: input, Body: block}, nil
}

func (p *Parser) parseWhen(subject Expr, isWhile bool) (*WhenExpr, error) {
	at := p.tok.At
	if err := p.advance(); err != nil { // consume WHEN/WHILE
		return nil, err
	}
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	we := &WhenExpr{Span: at, Subject: subject, IsWhile: isWhile}
	for p.tok.Kind != TokRBrace {
		arm, err := p.parseWhenArm()
		if err != nil {
			return nil, err
		}
		we.Arms = append(we.Arms, arm)
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.tok.Kind == TokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.skipNewlines(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return we, nil
}

func (p *Parser) parseWhenArm() (WhenArmExpr, error) {
	at := p.tok.At
	pat, err := p.parsePattern()
	if err != nil {
		return WhenArmExpr{}, err
	}
	if _, err := p.expect(TokFatArrow); err != nil {
		return WhenArmExpr{}, err
	}
	result, err := p.parseExpr(precLowest)
	if err != nil {
		return WhenArmExpr{}, err
	}
	return WhenArmExpr{Span: at, Pattern: pat, Result: result}, nil
}

// parsePattern parses one WHEN/WHILE arm pattern (§4.3.2).
func (p *Parser) parsePattern() (Pattern, error) {
	at := p.tok.At
	switch p.tok.Kind {
	case TokUnderscore:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &WildcardPattern{Span: at}, nil
	case TokUnplugged:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &UnpluggedPattern{Span: at}, nil
	case TokNumber, TokTextKw:
		lit, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		if te, ok := lit.(*TextExpr); ok && len(te.Values) == 0 {
			return &LiteralPattern{Span: at, Value: Text(te.Parts[0])}, nil
		}
		le, ok := lit.(*LiteralExpr)
		if !ok {
			return nil, &ParseError{At: at, Expected: "literal pattern", Found: p.tok.Kind.String()}
		}
		return &LiteralPattern{Span: at, Value: le.Value}, nil
	case TokTag:
		name := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		var fields []string
		if p.tok.Kind == TokLBracket {
			if err := p.advance(); err != nil {
				return nil, err
			}
			for p.tok.Kind != TokRBracket {
				id, err := p.expect(TokIdent)
				if err != nil {
					return nil, err
				}
				fields = append(fields, id.Text)
				if p.tok.Kind == TokComma {
					if err := p.advance(); err != nil {
						return nil, err
					}
				}
			}
			if _, err := p.expect(TokRBracket); err != nil {
				return nil, err
			}
		}
		return &TagPattern{Span: at, Name: name, FieldVars: fields}, nil
	case TokList:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokLBracket); err != nil {
			return nil, err
		}
		var elems []string
		for p.tok.Kind != TokRBracket {
			if p.tok.Kind == TokUnderscore {
				elems = append(elems, "")
				if err := p.advance(); err != nil {
					return nil, err
				}
			} else {
				id, err := p.expect(TokIdent)
				if err != nil {
					return nil, err
				}
				elems = append(elems, id.Text)
			}
			if p.tok.Kind == TokComma {
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
		if _, err := p.expect(TokRBracket); err != nil {
			return nil, err
		}
		return &ListPattern{Span: at, Elements: elems}, nil
	case TokBits:
		return p.parseBitsPattern()
	case TokIdent:
		name := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &IdentPattern{Span: at, Name: name}, nil
	default:
		return nil, &ParseError{At: at, Expected: "pattern", Found: p.tok.Kind.String()}
	}
}

func (p *Parser) parseBitsPattern() (Pattern, error) {
	at := p.tok.At
	if err := p.advance(); err != nil { // consume BITS
		return nil, err
	}
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	widthTok, err := p.expect(TokNumber)
	if err != nil {
		return nil, err
	}
	width, _ := strconv.Atoi(widthTok.Text)
	if _, err := p.expect(TokComma); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	var vars []string
	var widths []int
	for p.tok.Kind != TokRBrace {
		if p.tok.Kind == TokUnderscore {
			vars = append(vars, "")
			widths = append(widths, -1)
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else {
			id, err := p.expect(TokIdent)
			if err != nil {
				return nil, err
			}
			vars = append(vars, id.Text)
			widths = append(widths, -1) // field widths are resolved later from total width
		}
		if p.tok.Kind == TokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return &BitsPattern{Span: at, Width: width, FieldVars: vars, Widths: widths}, nil
}

// parsePostfix parses a primary expression followed by any number of
// postfix `.field` and `?` operators (§4.1).
func (p *Parser) parsePostfix() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.tok.Kind {
		case TokDot:
			at := p.tok.At
			if err := p.advance(); err != nil {
				return nil, err
			}
			field, err := p.expect(TokIdent)
			if err != nil {
				return nil, err
			}
			base = &FieldAccessExpr{Span: at, Base: base, Field: field.Text}
		case TokQuestion:
			at := p.tok.At
			if err := p.advance(); err != nil {
				return nil, err
			}
			base = &UnplugExpr{Span: at, Base: base}
		default:
			return base, nil
		}
	}
}

func (p *Parser) parsePrimary() (Expr, error) {
	at := p.tok.At
	switch p.tok.Kind {
	case TokNumber:
		text := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, &ParseError{At: at, Expected: "number", Found: text}
		}
		return &LiteralExpr{Span: at, Value: Number(n)}, nil
	case TokUnplugged:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &LiteralExpr{Span: at, Value: Unplugged{}}, nil
	case TokIdent:
		name := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Kind == TokLParen {
			return p.parseCallWithCallee(name, at)
		}
		return &IdentExpr{Span: at, Name: name}, nil
	case TokPassed:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokDot); err != nil {
			return nil, err
		}
		field, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}
		return &PassedExpr{Span: at, Field: field.Text}, nil
	case TokTag:
		next, err := p.peekNext()
		if err != nil {
			return nil, err
		}
		if next.Kind == TokSlash { // Module/function(args…); module names lex as tags
			name := p.tok.Text
			if err := p.advance(); err != nil {
				return nil, err
			}
			return p.parseStdlibCall(name, at)
		}
		return p.parseTag()
	case TokLatest:
		return p.parseLatest()
	case TokLink:
		return p.parseLink()
	case TokPulses:
		return p.parsePulses()
	case TokFlush:
		return p.parseFlush()
	case TokList:
		return p.parseList()
	case TokBytes:
		return p.parseBytes()
	case TokBits:
		return p.parseBitsLiteral()
	case TokTextKw:
		return p.parseText()
	case TokLBrace:
		return p.parseObject()
	case TokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, &ParseError{At: at, Expected: "expression", Found: p.tok.Kind.String()}
	}
}

func (p *Parser) parseStdlibCall(module string, at Span) (Expr, error) {
	if err := p.advance(); err != nil { // consume '/'
		return nil, err
	}
	name, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	callee := module + "/" + name.Text
	return p.parseCallWithCallee(callee, at)
}

func (p *Parser) parseCallWithCallee(callee string, at Span) (Expr, error) {
	call, err := p.parseCall()
	if err != nil {
		return nil, err
	}
	call.Span = at
	call.Callee = callee
	return call, nil
}

// parseCall parses `(args…)`; args are named (`field: value`) except the
// implicit piped first argument, which [parsePipeRHS] prepends (§4.1).
func (p *Parser) parseCall() (*CallExpr, error) {
	at := p.tok.At
	call := &CallExpr{Span: at}
	if p.tok.Kind != TokLParen {
		return call, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	for p.tok.Kind != TokRParen {
		argAt := p.tok.At
		name, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokColon); err != nil {
			return nil, err
		}
		val, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, Arg{Name: name.Text, Value: val})
		_ = argAt
		if p.tok.Kind == TokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *Parser) parseTag() (Expr, error) {
	at := p.tok.At
	name := p.tok.Text
	if err := p.advance(); err != nil {
		return nil, err
	}
	te := &TagExpr{Span: at, Name: name}
	if p.tok.Kind == TokLBracket {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for p.tok.Kind != TokRBracket {
			fieldName, err := p.expect(TokIdent)
			if err != nil {
				return nil, err
			}
			var val Expr
			if p.tok.Kind == TokColon {
				if err := p.advance(); err != nil {
					return nil, err
				}
				val, err = p.parseExpr(precLowest)
				if err != nil {
					return nil, err
				}
			} else {
				// Punned shorthand `Name[field]` === `Name[field: field]`
				// (§4.3.2's tag-pattern field binders are punned the same
				// way on the matching side).
				val = &IdentExpr{Span: fieldName.At, Name: fieldName.Text}
			}
			te.Fields = append(te.Fields, Arg{Name: fieldName.Text, Value: val})
			if p.tok.Kind == TokComma {
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
		if _, err := p.expect(TokRBracket); err != nil {
			return nil, err
		}
	}
	return te, nil
}

func (p *Parser) parseLatest() (Expr, error) {
	at := p.tok.At
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	le := &LatestExpr{Span: at}
	for p.tok.Kind != TokRBrace {
		arm, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		le.Arms = append(le.Arms, arm)
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.tok.Kind == TokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.skipNewlines(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return le, nil
}

func (p *Parser) parseLink() (Expr, error) {
	at := p.tok.At
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	alias, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return &LinkExpr{Span: at, Alias: alias.Text}, nil
}

func (p *Parser) parsePulses() (Expr, error) {
	at := p.tok.At
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	count, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return &PulsesExpr{Span: at, Count: count}, nil
}

func (p *Parser) parseFlush() (Expr, error) {
	at := p.tok.At
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	val, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return &FlushExpr{Span: at, Value: val}, nil
}

func (p *Parser) parseList() (Expr, error) {
	at := p.tok.At
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	le := &ListExpr{Span: at}
	for p.tok.Kind != TokRBrace {
		item, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		le.Items = append(le.Items, item)
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.tok.Kind == TokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.skipNewlines(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return le, nil
}

func (p *Parser) parseBytes() (Expr, error) {
	at := p.tok.At
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	var raw []byte
	for p.tok.Kind != TokRBrace {
		tok, err := p.expect(TokNumber)
		if err != nil {
			return nil, err
		}
		b, err := parseByteLiteral(tok.Text)
		if err != nil {
			return nil, &ParseError{At: tok.At, Expected: "byte 0-255", Found: tok.Text}
		}
		raw = append(raw, b)
		if p.tok.Kind == TokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return &BytesExpr{Span: at, Raw: raw}, nil
}

// parseByteLiteral accepts either a plain decimal byte ("255") or a
// `16#FF`-style based literal, per §4.1's BYTES grammar. A value outside
// 0–255 is an error.
func parseByteLiteral(text string) (byte, error) {
	if i := strings.IndexByte(text, '#'); i >= 0 {
		base, err := strconv.Atoi(text[:i])
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseUint(text[i+1:], base, 8)
		if err != nil {
			return 0, err
		}
		return byte(n), nil
	}
	n, err := strconv.ParseUint(text, 10, 8)
	if err != nil {
		return 0, err
	}
	return byte(n), nil
}

func (p *Parser) parseBitsLiteral() (Expr, error) {
	at := p.tok.At
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	widthTok, err := p.expect(TokNumber)
	if err != nil {
		return nil, err
	}
	width, _ := strconv.Atoi(widthTok.Text)
	if _, err := p.expect(TokComma); err != nil {
		return nil, err
	}
	digitsTok, err := p.expect(TokNumber)
	if err != nil {
		return nil, err
	}
	signed, payload, err := parseBitsDigits(digitsTok.Text)
	if err != nil {
		return nil, &ParseError{At: digitsTok.At, Expected: "base[s|u]digits", Found: digitsTok.Text}
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return &BitsExpr{Span: at, Width: width, Signed: signed, Payload: payload}, nil
}

// parseBitsDigits parses the `base[s|u]digits` segment of a BITS literal,
// e.g. "10s42" or "16uFF" (§4.1).
func parseBitsDigits(text string) (signed bool, payload uint64, err error) {
	i := 0
	for i < len(text) && text[i] >= '0' && text[i] <= '9' {
		i++
	}
	base, err := strconv.Atoi(text[:i])
	if err != nil || i >= len(text) {
		return false, 0, &InvariantError{Invariant: "bits-literal", Detail: text}
	}
	switch text[i] {
	case 's':
		signed = true
	case 'u':
		signed = false
	default:
		return false, 0, &InvariantError{Invariant: "bits-literal-sign", Detail: text}
	}
	n, err := strconv.ParseUint(text[i+1:], base, 64)
	if err != nil {
		return false, 0, err
	}
	return signed, n, nil
}

func (p *Parser) parseObject() (Expr, error) {
	at := p.tok.At
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	oe := &ObjectExpr{Span: at}
	for p.tok.Kind != TokRBrace {
		if p.tok.Kind == TokEllipsis {
			if err := p.advance(); err != nil {
				return nil, err
			}
			spread, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			oe.Spreads = append(oe.Spreads, spread)
		} else {
			name, err := p.expect(TokIdent)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokColon); err != nil {
				return nil, err
			}
			val, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			oe.Fields = append(oe.Fields, Arg{Name: name.Text, Value: val})
		}
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.tok.Kind == TokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.skipNewlines(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return oe, nil
}

// parseText parses `TEXT { literal {expr} literal … }` (§4.1): the lexer
// has already split the content into alternating TokText literal segments
// and bracketed interpolation expressions. Literal text is taken as
// written (quotes included); only the whitespace just inside the braces is
// dropped, so `TEXT { }` is "" and `TEXT { x }` is "x".
func (p *Parser) parseText() (Expr, error) {
	at := p.tok.At
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	te := &TextExpr{Span: at, Parts: []string{""}}
	for p.tok.Kind != TokRBrace {
		if p.tok.Kind == TokText {
			te.Parts[len(te.Parts)-1] += p.tok.Text
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if p.tok.Kind == TokLBrace {
			if err := p.advance(); err != nil {
				return nil, err
			}
			val, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokRBrace); err != nil {
				return nil, err
			}
			te.Values = append(te.Values, val)
			te.Parts = append(te.Parts, "")
			continue
		}
		return nil, &ParseError{At: p.tok.At, Expected: "TEXT content", Found: p.tok.Kind.String()}
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	te.Parts[0] = strings.TrimLeft(te.Parts[0], " \t\r\n")
	last := len(te.Parts) - 1
	te.Parts[last] = strings.TrimRight(te.Parts[last], " \t\r\n")
	return te, nil
}
