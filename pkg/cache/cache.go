// Package cache provides the response cache for motif database
// clients. Three backends implement the same interface: a file cache
// for single-user CLI runs, a Redis cache for shared serve-mode
// deployments, and a null cache that disables caching entirely.
//
// Keys are hashed with SHA-256 before touching any backend, so
// arbitrary request URLs become safe file names and Redis keys.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"
)

// Cache stores opaque payloads under string keys with per-entry TTL.
// Implementations are safe for concurrent use.
type Cache interface {
	// Get retrieves the payload for key. The boolean reports whether
	// a live (non-expired) entry was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key for ttl (0 = never expires).
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the entry for key if present.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Hash returns the hex-encoded SHA-256 of data, used to derive
// backend-safe storage keys.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DefaultDir returns the cache directory following the XDG convention
// (~/.cache/motifmerge, or $XDG_CACHE_HOME/motifmerge).
func DefaultDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, "motifmerge"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "motifmerge"), nil
}
