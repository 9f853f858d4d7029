// Package fs provides file system adapters for walking and digesting page
// sources.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"

	"go.trai.ch/mason/internal/core/ports"
)

var _ ports.Walker = (*Walker)(nil)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields all files under root, skipping version control metadata
// and names matching the ignore globs. Yielded paths start with root, as
// filepath.WalkDir produces them.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if skip := w.skip(d, ignores); skip != nil {
				return skip
			}
			if d.IsDir() || w.ignored(d.Name(), ignores) {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// skip returns filepath.SkipDir for directories that must not be descended
// into.
func (w *Walker) skip(d fs.DirEntry, ignores []string) error {
	if !d.IsDir() {
		return nil
	}
	name := d.Name()
	if name == ".git" || name == ".jj" || name == ".mason" {
		return filepath.SkipDir
	}
	if w.ignored(name, ignores) {
		return filepath.SkipDir
	}
	return nil
}

func (w *Walker) ignored(name string, ignores []string) bool {
	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}
	return false
}
