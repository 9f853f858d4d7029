package domain

import (
	"strings"
	"unique"

	"go.trai.ch/mason/internal/sexp"
)

// Path identifies a site resource by its site-relative path. It wraps a
// unique.Handle[string] so that the many repeated paths held by the build
// cache and dependency sets share storage, and so Path is a cheap map key.
type Path struct {
	h unique.Handle[string]
}

// NewPath creates a Path from a site-relative path string.
func NewPath(s string) Path {
	return Path{h: unique.Make(s)}
}

// String returns the underlying path string.
func (p Path) String() string {
	var zero unique.Handle[string]
	if p.h == zero {
		return ""
	}
	return p.h.Value()
}

// Compare orders paths lexicographically by their string form.
func (p Path) Compare(o Path) int {
	return strings.Compare(p.String(), o.String())
}

// ToTree encodes the path as an atomic leaf.
func (p Path) ToTree() sexp.Tree {
	return sexp.Atom(p.String())
}

// PathFromTree decodes a path from its tree encoding. Only an atomic leaf is
// accepted.
func PathFromTree(t sexp.Tree) (Path, error) {
	atom, ok := t.(sexp.Atom)
	if !ok {
		return Path{}, sexp.Invalid(t, "path")
	}
	return NewPath(string(atom)), nil
}
