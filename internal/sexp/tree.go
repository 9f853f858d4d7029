// Package sexp implements the tree notation used to persist mason's build state.
//
// A tree is either an atomic string leaf or an ordered list of subtrees. The
// textual form is a parenthesized sequence; atoms are written bare when they
// contain no delimiters and double-quoted otherwise.
package sexp

import "strings"

// Tree is either an Atom leaf or a List of subtrees.
type Tree interface {
	isTree()
}

// Atom is a string leaf.
type Atom string

func (Atom) isTree() {}

// List is an ordered sequence of subtrees.
type List []Tree

func (List) isTree() {}

// Format renders a tree in its textual form. Parsing the result yields an
// equal tree for any input, including atoms containing delimiters.
func Format(t Tree) string {
	var b strings.Builder
	format(t, &b)
	return b.String()
}

func format(t Tree, b *strings.Builder) {
	switch v := t.(type) {
	case Atom:
		writeAtom(string(v), b)
	case List:
		b.WriteByte('(')
		for i, child := range v {
			if i > 0 {
				b.WriteByte(' ')
			}
			format(child, b)
		}
		b.WriteByte(')')
	}
}

func writeAtom(s string, b *strings.Builder) {
	if isBare(s) {
		b.WriteString(s)
		return
	}
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
}

// isBare reports whether an atom can be written without quotes.
func isBare(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '(' || c == ')' || c == '"' || c == '\\':
			return false
		case c <= ' ':
			return false
		}
	}
	return true
}
