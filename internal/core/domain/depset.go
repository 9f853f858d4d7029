package domain

import (
	"slices"

	"go.trai.ch/mason/internal/sexp"
)

// DepSet is an immutable set of resource paths, used to record the dynamic
// dependencies discovered while building a page. The zero value is the empty
// set.
type DepSet struct {
	// Sorted by path string and deduplicated.
	paths []Path
}

// EmptyDepSet returns the set with no paths.
func EmptyDepSet() DepSet {
	return DepSet{}
}

// NewDepSet builds a set from the given paths, deduplicating them.
func NewDepSet(paths ...Path) DepSet {
	return DepSet{paths: canonicalize(paths)}
}

// Add returns a new set containing the receiver's paths plus p. The receiver
// is unchanged.
func (d DepSet) Add(p Path) DepSet {
	if d.Contains(p) {
		return d
	}
	merged := make([]Path, 0, len(d.paths)+1)
	merged = append(merged, d.paths...)
	merged = append(merged, p)
	return DepSet{paths: canonicalize(merged)}
}

// Contains reports whether p is in the set.
func (d DepSet) Contains(p Path) bool {
	_, found := slices.BinarySearchFunc(d.paths, p, Path.Compare)
	return found
}

// Len returns the number of paths in the set.
func (d DepSet) Len() int {
	return len(d.paths)
}

// IsEmpty reports whether the set has no paths.
func (d DepSet) IsEmpty() bool {
	return len(d.paths) == 0
}

// Paths returns the set's paths in lexicographic order. The returned slice
// must not be modified.
func (d DepSet) Paths() []Path {
	return d.paths
}

// Equal reports whether both sets contain exactly the same paths.
func (d DepSet) Equal(o DepSet) bool {
	if len(d.paths) != len(o.paths) {
		return false
	}
	for i := range d.paths {
		if d.paths[i] != o.paths[i] {
			return false
		}
	}
	return true
}

// ToTree encodes the set as a list of path leaves in lexicographic order.
func (d DepSet) ToTree() sexp.Tree {
	list := make(sexp.List, len(d.paths))
	for i, p := range d.paths {
		list[i] = p.ToTree()
	}
	return list
}

// DepSetFromTree decodes a set from its tree encoding: a list whose children
// are all path leaves.
func DepSetFromTree(t sexp.Tree) (DepSet, error) {
	list, ok := t.(sexp.List)
	if !ok {
		return DepSet{}, sexp.Invalid(t, "dependencies")
	}
	paths := make([]Path, len(list))
	for i, child := range list {
		p, err := PathFromTree(child)
		if err != nil {
			return DepSet{}, sexp.InvalidCause(t, "dependencies", err)
		}
		paths[i] = p
	}
	return NewDepSet(paths...), nil
}

func canonicalize(paths []Path) []Path {
	if len(paths) == 0 {
		return nil
	}
	sorted := make([]Path, len(paths))
	copy(sorted, paths)
	slices.SortFunc(sorted, Path.Compare)
	return slices.Compact(sorted)
}
