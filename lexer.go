// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"strings"
	"unicode"

	xunicode "golang.org/x/text/encoding/unicode"
)

// braceKind tags an open brace so the lexer knows what to do when its
// match closes: resume literal text scanning (TEXT interpolation), close
// a TEXT literal outright, or behave as an ordinary grouping/object
// brace.
type braceKind byte

const (
	braceOrdinary braceKind = iota
	braceTextLiteral
	braceInterpolation
)

// Lexer tokenizes Boon source text (§4.1). Construct with [NewLexer]; call
// [Lexer.Lex] to drain the full token stream, or [Lexer.Next] to pull one
// token at a time (the parser uses the latter).
type Lexer struct {
	source   string
	sourceID string
	runes    []rune
	pos      int
	line     int
	col      int

	braces   []braceKind
	textScan bool

	pendingTextKeyword bool // TEXT keyword just lexed; next '{' opens a literal
	pending            *Token
}

// NewLexer validates src as strict UTF-8, rejects a leading byte-order
// mark (§4.1: "Lexer consumes UTF-8 (BOM rejected)"), and returns a
// ready-to-use [*Lexer]. sourceID identifies src in span diagnostics and
// in [PersistenceId.Source].
func NewLexer(sourceID, src string) (*Lexer, error) {
	// The decoder replaces ill-formed bytes rather than failing, so any
	// difference from src marks invalid UTF-8.
	if out, _, err := xunicode.UTF8.NewDecoder().Bytes([]byte(src)); err != nil || string(out) != src {
		return nil, &LexError{At: Span{Source: sourceID, Line: 1, Column: 1}, Message: "invalid UTF-8"}
	}
	if strings.HasPrefix(src, "﻿") {
		return nil, &LexError{At: Span{Source: sourceID, Line: 1, Column: 1}, Message: "byte-order mark is rejected"}
	}
	return &Lexer{
		source:   src,
		sourceID: sourceID,
		runes:    []rune(src),
		line:     1,
		col:      1,
	}, nil
}

// Lex drains the Lexer, returning every token through a trailing TokEOF.
func (l *Lexer) Lex() ([]Token, error) {
	var out []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == TokEOF {
			return out, nil
		}
	}
}

func (l *Lexer) span() Span {
	return Span{Source: l.sourceID, Line: l.line, Column: l.col}
}

func (l *Lexer) peek() (rune, bool) {
	if l.pos >= len(l.runes) {
		return 0, false
	}
	return l.runes[l.pos], true
}

func (l *Lexer) peekAt(offset int) (rune, bool) {
	i := l.pos + offset
	if i >= len(l.runes) {
		return 0, false
	}
	return l.runes[i], true
}

func (l *Lexer) advance() rune {
	r := l.runes[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// Next returns the next token, switching between normal tokenizing and
// TEXT-literal scanning as brace context demands.
func (l *Lexer) Next() (Token, error) {
	if l.pending != nil {
		tok := *l.pending
		l.pending = nil
		return tok, nil
	}
	if l.textScan {
		return l.nextTextLiteralToken()
	}
	return l.nextNormalToken()
}

func (l *Lexer) nextNormalToken() (Token, error) {
	l.skipInsignificantWhitespace()
	at := l.span()
	r, ok := l.peek()
	if !ok {
		return Token{Kind: TokEOF, At: at}, nil
	}

	switch {
	case r == '\n':
		l.advance()
		return Token{Kind: TokNewline, At: at}, nil
	case r == '{':
		l.advance()
		if l.pendingTextKeyword {
			l.pendingTextKeyword = false
			l.braces = append(l.braces, braceTextLiteral)
			l.textScan = true
			return Token{Kind: TokLBrace, Text: "{", At: at}, nil
		}
		l.braces = append(l.braces, braceOrdinary)
		return Token{Kind: TokLBrace, Text: "{", At: at}, nil
	case r == '}':
		l.advance()
		kind := braceOrdinary
		if n := len(l.braces); n > 0 {
			kind = l.braces[n-1]
			l.braces = l.braces[:n-1]
		}
		if kind == braceInterpolation {
			l.textScan = true
		}
		return Token{Kind: TokRBrace, Text: "}", At: at}, nil
	case r == '(':
		l.advance()
		return Token{Kind: TokLParen, Text: "(", At: at}, nil
	case r == ')':
		l.advance()
		return Token{Kind: TokRParen, Text: ")", At: at}, nil
	case r == '[':
		l.advance()
		return Token{Kind: TokLBracket, Text: "[", At: at}, nil
	case r == ']':
		l.advance()
		return Token{Kind: TokRBracket, Text: "]", At: at}, nil
	case r == ',':
		l.advance()
		return Token{Kind: TokComma, Text: ",", At: at}, nil
	case r == '?':
		l.advance()
		return Token{Kind: TokQuestion, Text: "?", At: at}, nil
	case r == ':':
		l.advance()
		return Token{Kind: TokColon, Text: ":", At: at}, nil
	case r == '.':
		if n1, ok1 := l.peekAt(1); ok1 && n1 == '.' {
			if n2, ok2 := l.peekAt(2); ok2 && n2 == '.' {
				l.advance()
				l.advance()
				l.advance()
				return Token{Kind: TokEllipsis, Text: "...", At: at}, nil
			}
		}
		l.advance()
		return Token{Kind: TokDot, Text: ".", At: at}, nil
	case r == '|':
		if n, ok := l.peekAt(1); ok && n == '>' {
			l.advance()
			l.advance()
			return Token{Kind: TokPipe, Text: "|>", At: at}, nil
		}
		return Token{}, &LexError{At: at, Message: "unexpected '|'"}
	case r == '=':
		if n, ok := l.peekAt(1); ok && n == '=' {
			l.advance()
			l.advance()
			return Token{Kind: TokEq, Text: "==", At: at}, nil
		}
		if n, ok := l.peekAt(1); ok && n == '/' {
			if n2, ok2 := l.peekAt(2); ok2 && n2 == '=' {
				l.advance()
				l.advance()
				l.advance()
				return Token{Kind: TokNotEq, Text: "=/=", At: at}, nil
			}
		}
		if n, ok := l.peekAt(1); ok && n == '>' {
			l.advance()
			l.advance()
			return Token{Kind: TokFatArrow, Text: "=>", At: at}, nil
		}
		return Token{}, &LexError{At: at, Message: "unexpected '='"}
	case r == '<':
		l.advance()
		if n, ok := l.peek(); ok && n == '=' {
			l.advance()
			return Token{Kind: TokLtEq, Text: "<=", At: at}, nil
		}
		return Token{Kind: TokLt, Text: "<", At: at}, nil
	case r == '>':
		l.advance()
		if n, ok := l.peek(); ok && n == '=' {
			l.advance()
			return Token{Kind: TokGtEq, Text: ">=", At: at}, nil
		}
		return Token{Kind: TokGt, Text: ">", At: at}, nil
	case r == '+':
		l.advance()
		return Token{Kind: TokPlus, Text: "+", At: at}, nil
	case r == '-':
		l.advance()
		return Token{Kind: TokMinus, Text: "-", At: at}, nil
	case r == '*':
		l.advance()
		return Token{Kind: TokStar, Text: "*", At: at}, nil
	case r == '/':
		l.advance()
		return Token{Kind: TokSlash, Text: "/", At: at}, nil
	case r == '_':
		if n, ok := l.peekAt(1); ok && n == '_' {
			if n2, ok2 := l.peekAt(2); !ok2 || !isIdentRune(n2) {
				l.advance()
				l.advance()
				return Token{Kind: TokUnderscore, Text: "__", At: at}, nil
			}
		}
		if n, ok := l.peekAt(1); !ok || !isIdentRune(n) {
			l.advance()
			return Token{Kind: TokUnderscore, Text: "_", At: at}, nil
		}
		return l.lexIdentOrKeyword(at)
	case unicode.IsDigit(r):
		return l.lexNumber(at)
	case isIdentStart(r):
		return l.lexIdentOrKeyword(at)
	default:
		l.advance()
		return Token{}, &LexError{At: at, Message: "unexpected character " + string(r)}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentRune(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func (l *Lexer) lexIdentOrKeyword(at Span) (Token, error) {
	start := l.pos
	for {
		r, ok := l.peek()
		if !ok || !isIdentRune(r) {
			break
		}
		l.advance()
	}
	text := string(l.runes[start:l.pos])
	if kind, ok := keywords[text]; ok {
		if kind == TokTextKw {
			l.pendingTextKeyword = true
		}
		return Token{Kind: kind, Text: text, At: at}, nil
	}
	if r := []rune(text)[0]; unicode.IsUpper(r) {
		return Token{Kind: TokTag, Text: text, At: at}, nil
	}
	return Token{Kind: TokIdent, Text: text, At: at}, nil
}

func (l *Lexer) lexNumber(at Span) (Token, error) {
	start := l.pos
	// A based literal segment, e.g. BYTES' `16#FF` or BITS' `10u42` /
	// `16sFF`, is lexed whole as one TokNumber token; the parser interprets
	// its internal structure.
	for {
		r, ok := l.peek()
		if !ok {
			break
		}
		if unicode.IsDigit(r) || r == '.' || r == '#' || r == 's' || r == 'u' || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F') {
			l.advance()
			continue
		}
		break
	}
	return Token{Kind: TokNumber, Text: string(l.runes[start:l.pos]), At: at}, nil
}

// skipInsignificantWhitespace skips spaces and tabs but not newlines,
// which are significant inside argument lists and blocks (§4.1).
func (l *Lexer) skipInsignificantWhitespace() {
	for {
		r, ok := l.peek()
		if !ok {
			return
		}
		if r == ' ' || r == '\t' || r == '\r' {
			l.advance()
			continue
		}
		if r == '#' { // line comment
			for {
				r, ok := l.peek()
				if !ok || r == '\n' {
					break
				}
				l.advance()
			}
			continue
		}
		return
	}
}

// nextTextLiteralToken scans raw text content inside a TEXT { … } block
// until the next interpolation `{` or the block's closing `}`, per §4.1's
// "no nested TEXT" rule: an interpolation's expression is lexed normally
// (braces tracked via [braceInterpolation]), but literal runs of text are
// never re-interpreted as code. The `{`/`}` that ends the literal run is
// queued in l.pending so the caller receives it on the very next Next().
func (l *Lexer) nextTextLiteralToken() (Token, error) {
	at := l.span()
	start := l.pos
	for {
		r, ok := l.peek()
		if !ok {
			return Token{}, &LexError{At: at, Message: "unterminated TEXT literal"}
		}
		if r == '{' {
			lit := string(l.runes[start:l.pos])
			braceAt := l.span()
			l.advance()
			l.braces = append(l.braces, braceInterpolation)
			l.textScan = false
			queued := Token{Kind: TokLBrace, Text: "{", At: braceAt}
			if lit == "" {
				return queued, nil
			}
			l.pending = &queued
			return Token{Kind: TokText, Text: lit, At: at}, nil
		}
		if r == '}' {
			lit := string(l.runes[start:l.pos])
			braceAt := l.span()
			l.advance()
			if n := len(l.braces); n > 0 {
				l.braces = l.braces[:n-1]
			}
			l.textScan = false
			queued := Token{Kind: TokRBrace, Text: "}", At: braceAt}
			if lit == "" {
				return queued, nil
			}
			l.pending = &queued
			return Token{Kind: TokText, Text: lit, At: at}, nil
		}
		l.advance()
	}
}
