package sexp

import (
	"strings"

	"go.trai.ch/zerr"
)

// Parse reads exactly one tree from src. Trailing content other than
// whitespace is an error, as is an empty input.
func Parse(src string) (Tree, error) {
	p := &parser{src: src}
	p.skipSpace()
	t, err := p.tree()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing data after tree")
	}
	return t, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(msg string) error {
	return zerr.With(zerr.New(msg), "offset", p.pos)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) tree() (Tree, error) {
	if p.pos >= len(p.src) {
		return nil, p.errorf("unexpected end of input")
	}
	switch p.src[p.pos] {
	case '(':
		return p.list()
	case ')':
		return nil, p.errorf("unexpected ')'")
	case '"':
		return p.quotedAtom()
	default:
		return p.bareAtom(), nil
	}
}

func (p *parser) list() (Tree, error) {
	p.pos++ // consume '('
	list := List{}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errorf("unterminated list")
		}
		if p.src[p.pos] == ')' {
			p.pos++
			return list, nil
		}
		child, err := p.tree()
		if err != nil {
			return nil, err
		}
		list = append(list, child)
	}
}

func (p *parser) quotedAtom() (Tree, error) {
	p.pos++ // consume '"'
	var b strings.Builder
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; c {
		case '"':
			p.pos++
			return Atom(b.String()), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return nil, p.errorf("unterminated escape sequence")
			}
			switch e := p.src[p.pos]; e {
			case '"', '\\':
				b.WriteByte(e)
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				return nil, p.errorf("unknown escape sequence")
			}
			p.pos++
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return nil, p.errorf("unterminated string atom")
}

func (p *parser) bareAtom() Tree {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c <= ' ' || c == '(' || c == ')' || c == '"' || c == '\\' {
			break
		}
		p.pos++
	}
	return Atom(p.src[start:p.pos])
}
