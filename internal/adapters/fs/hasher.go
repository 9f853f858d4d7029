package fs

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes page content digests and modification times.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// ComputeDigest computes the XXHash of the file's content, formatted as a
// 16-digit hex string. The cache treats the result as an opaque token.
func (h *Hasher) ComputeDigest(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

// ModTime returns the file's modification time in unix seconds.
func (h *Hasher) ModTime(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
	}
	return info.ModTime().Unix(), nil
}
