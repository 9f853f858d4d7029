// Package state persists the build cache to disk in its textual tree form.
package state

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/sexp"
	"go.trai.ch/zerr"
)

var _ ports.CacheStore = (*Store)(nil)

// Store implements ports.CacheStore using a flat text file.
type Store struct{}

// NewStore creates a new cache file store.
func NewStore() *Store {
	return &Store{}
}

// Load reads the cache persisted at path. A missing or empty file yields the
// empty cache; any other failure, including a malformed tree, is returned so
// the caller can decide to fall back to a full rebuild.
func (s *Store) Load(path string) (domain.Cache, error) {
	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.EmptyCache(), nil
		}
		return domain.Cache{}, zerr.Wrap(err, "failed to read build cache")
	}

	if len(data) == 0 {
		return domain.EmptyCache(), nil
	}

	tree, err := sexp.Parse(string(data))
	if err != nil {
		return domain.Cache{}, zerr.Wrap(err, "failed to parse build cache")
	}

	cache, err := domain.CacheFromTree(tree)
	if err != nil {
		return domain.Cache{}, zerr.Wrap(err, "failed to decode build cache")
	}
	return cache, nil
}

// Save writes the cache to path, creating parent directories as needed.
func (s *Store) Save(path string, cache domain.Cache) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for build cache")
	}

	text := sexp.Format(cache.ToTree()) + "\n"

	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(filepath.Clean(path), []byte(text), 0o644); err != nil {
		return zerr.Wrap(err, "failed to write build cache")
	}

	return nil
}
