package ports

import "iter"

// Walker defines the interface for enumerating page sources.
//
//go:generate mockgen -source=walker.go -destination=mocks/mock_walker.go -package=mocks
type Walker interface {
	// WalkFiles yields the paths of all files under root, skipping ignored
	// names. Paths start with root, as filepath.WalkDir yields them.
	WalkFiles(root string, ignores []string) iter.Seq[string]
}
