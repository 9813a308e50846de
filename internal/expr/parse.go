package expr

import (
	"fmt"
	"strings"
)

// SyntaxError reports a malformed expression.
type SyntaxError struct {
	Src    string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expression %q: offset %d: %s", e.Src, e.Offset, e.Msg)
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokLiteral
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
	tokCmp
)

type token struct {
	kind tokKind
	text string
	op   Op
	pos  int
}

type lexer struct {
	src string
	pos int
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && strings.IndexByte(" \t\r\n", l.src[l.pos]) >= 0 {
		l.pos++
	}
	start := l.pos
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: start}, nil
	}

	c := l.src[l.pos]
	peek := byte(0)
	if l.pos+1 < len(l.src) {
		peek = l.src[l.pos+1]
	}

	switch {
	case c == '&' && peek == '&':
		l.pos += 2
		return token{kind: tokAnd, pos: start}, nil
	case c == '|' && peek == '|':
		l.pos += 2
		return token{kind: tokOr, pos: start}, nil
	case c == '!' && peek == '=':
		l.pos += 2
		return token{kind: tokCmp, op: OpNeq, pos: start}, nil
	case c == '!':
		l.pos++
		return token{kind: tokNot, pos: start}, nil
	case c == '(':
		l.pos++
		return token{kind: tokLParen, pos: start}, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen, pos: start}, nil
	case c == '=':
		l.pos++
		return token{kind: tokCmp, op: OpEq, pos: start}, nil
	case c == '<' || c == '>':
		op := OpLt
		if c == '>' {
			op = OpGt
		}
		l.pos++
		if peek == '=' {
			l.pos++
			op++ // OpLe follows OpLt, OpGe follows OpGt
		}
		return token{kind: tokCmp, op: op, pos: start}, nil
	case c == '"' || c == '\'':
		return l.quoted(c)
	case c == '-' && isDigit(peek), isIdentByte(c):
		l.pos++
		for l.pos < len(l.src) && isIdentByte(l.src[l.pos]) {
			l.pos++
		}
		text := l.src[start:l.pos]
		kind := tokIdent
		if text == "y" || text == "n" || c == '-' || isDigit(c) {
			kind = tokLiteral
		}
		return token{kind: kind, text: text, pos: start}, nil
	}
	return token{}, &SyntaxError{Src: l.src, Offset: start, Msg: fmt.Sprintf("unexpected character %q", c)}
}

// quoted reads a Kconfig string literal. Only \" \' and \\ are escapes;
// a backslash before any other character is kept.
func (l *lexer) quoted(quote byte) (token, error) {
	start := l.pos
	l.pos++
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == quote:
			l.pos++
			return token{kind: tokLiteral, text: b.String(), pos: start}, nil
		case c == '\\' && l.pos+1 < len(l.src):
			n := l.src[l.pos+1]
			if n == '"' || n == '\'' || n == '\\' {
				b.WriteByte(n)
				l.pos += 2
				continue
			}
			b.WriteByte(c)
			l.pos++
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return token{}, &SyntaxError{Src: l.src, Offset: start, Msg: "unterminated string"}
}

type parser struct {
	pool *Pool
	lex  lexer
	tok  token
}

// Parse parses src into an interned expression. Blank input yields nil,
// the unconditional expression.
//
//	expr := or
//	or   := and ('||' and)*
//	and  := not ('&&' not)*
//	not  := '!' not | cmp
//	cmp  := atom (('=' | '!=' | '<' | '<=' | '>' | '>=') atom)?
//	atom := SYMBOL | LITERAL | '(' expr ')'
func (p *Pool) Parse(src string) (*Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	ps := &parser{pool: p, lex: lexer{src: src}}
	if err := ps.advance(); err != nil {
		return nil, err
	}
	e, err := ps.parseOr()
	if err != nil {
		return nil, err
	}
	if ps.tok.kind != tokEOF {
		return nil, ps.errorf("unexpected trailing input")
	}
	return e, nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or for expressions known to be valid.
func (p *Pool) MustParse(src string) *Expr {
	e, err := p.Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

func (ps *parser) advance() error {
	t, err := ps.lex.next()
	if err != nil {
		return err
	}
	ps.tok = t
	return nil
}

func (ps *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Src: ps.lex.src, Offset: ps.tok.pos, Msg: fmt.Sprintf(format, args...)}
}

func (ps *parser) parseOr() (*Expr, error) {
	x, err := ps.parseAnd()
	if err != nil {
		return nil, err
	}
	for ps.tok.kind == tokOr {
		if err := ps.advance(); err != nil {
			return nil, err
		}
		y, err := ps.parseAnd()
		if err != nil {
			return nil, err
		}
		x = ps.pool.binary(OpOr, x, y)
	}
	return x, nil
}

func (ps *parser) parseAnd() (*Expr, error) {
	x, err := ps.parseNot()
	if err != nil {
		return nil, err
	}
	for ps.tok.kind == tokAnd {
		if err := ps.advance(); err != nil {
			return nil, err
		}
		y, err := ps.parseNot()
		if err != nil {
			return nil, err
		}
		x = ps.pool.binary(OpAnd, x, y)
	}
	return x, nil
}

func (ps *parser) parseNot() (*Expr, error) {
	if ps.tok.kind != tokNot {
		return ps.parseCmp()
	}
	if err := ps.advance(); err != nil {
		return nil, err
	}
	x, err := ps.parseNot()
	if err != nil {
		return nil, err
	}
	return ps.pool.Not(x), nil
}

func (ps *parser) parseCmp() (*Expr, error) {
	x, err := ps.parseAtom()
	if err != nil {
		return nil, err
	}
	if ps.tok.kind != tokCmp {
		return x, nil
	}
	op := ps.tok.op
	if err := ps.advance(); err != nil {
		return nil, err
	}
	y, err := ps.parseAtom()
	if err != nil {
		return nil, err
	}
	return ps.pool.Compare(op, x, y), nil
}

func (ps *parser) parseAtom() (*Expr, error) {
	switch ps.tok.kind {
	case tokIdent:
		e := ps.pool.Ref(ps.tok.text)
		return e, ps.advance()
	case tokLiteral:
		e := ps.pool.Const(ps.tok.text)
		return e, ps.advance()
	case tokLParen:
		if err := ps.advance(); err != nil {
			return nil, err
		}
		e, err := ps.parseOr()
		if err != nil {
			return nil, err
		}
		if ps.tok.kind != tokRParen {
			return nil, ps.errorf("expected ')'")
		}
		return e, ps.advance()
	case tokEOF:
		return nil, ps.errorf("unexpected end of expression")
	default:
		return nil, ps.errorf("expected symbol, literal or '('")
	}
}
