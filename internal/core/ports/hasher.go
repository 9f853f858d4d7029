package ports

// Hasher defines the interface for probing page sources on disk.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeDigest computes the content digest of the file at path.
	ComputeDigest(path string) (string, error)
	// ModTime returns the file's modification time in unix seconds.
	ModTime(path string) (int64, error)
}
