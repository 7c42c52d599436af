package github

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Cache stores raw API responses on disk, keyed by a hash of the request.
// GraphQL requests always hit the same endpoint, so the request body (query
// plus variables) is the cache identity. A nil *Cache disables caching.
type Cache struct {
	dir string
}

// NewCache returns a disk cache rooted at dir. The directory is created
// lazily on first write.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Key derives the cache key for a request body.
func Key(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached response for a key, if present.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores a response under a key. Write failures are returned so callers
// can surface them, but a failed write never invalidates the response itself.
func (c *Cache) Set(key string, data []byte) error {
	if c == nil {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}
