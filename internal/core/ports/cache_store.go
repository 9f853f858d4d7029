package ports

import "go.trai.ch/mason/internal/core/domain"

// CacheStore defines the interface for persisting the build cache between
// runs. The cache itself never performs I/O; this is the only boundary where
// it touches disk.
//
//go:generate mockgen -source=cache_store.go -destination=mocks/mock_cache_store.go -package=mocks
type CacheStore interface {
	// Load reads the cache persisted at path. A missing file yields the
	// empty cache; a malformed file yields a decode error.
	Load(path string) (domain.Cache, error)

	// Save writes the cache to path, creating parent directories as needed.
	Save(path string, cache domain.Cache) error
}
