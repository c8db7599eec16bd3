package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/loanlens-cli/internal/logging"
	gocache "github.com/patrickmn/go-cache"
)

// Loader loads datasets by path.
type Loader interface {
	Load(path string) (*Dataset, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string) (*Dataset, error)

// Load calls f(path).
func (f LoaderFunc) Load(path string) (*Dataset, error) { return f(path) }

type cacheEntry struct {
	modTime time.Time
	size    int64
	ds      *Dataset
}

// Cache memoizes loaded datasets by absolute path. An entry is reused only
// while the file's modification time and size are unchanged.
type Cache struct {
	cache  *gocache.Cache
	load   func(string) (*Dataset, error)
	logger *slog.Logger
}

// NewCache creates a cache whose entries expire after ttl (0 = never).
func NewCache(ttl time.Duration) *Cache {
	exp := ttl
	if exp <= 0 {
		exp = gocache.NoExpiration
	}
	cleanup := 10 * time.Minute
	if ttl > 0 && ttl < cleanup {
		cleanup = ttl
	}
	return &Cache{
		cache:  gocache.New(exp, cleanup),
		load:   Load,
		logger: logging.New("dataset-cache"),
	}
}

// Load returns the memoized dataset for path, re-reading the file when it changed.
// Missing files are never cached.
func (c *Cache) Load(path string) (*Dataset, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(key)
	if err != nil {
		c.cache.Delete(key)
		if errors.Is(err, fs.ErrNotExist) {
			return c.load(path)
		}
		return nil, fmt.Errorf("stat dataset: %w", err)
	}
	if v, ok := c.cache.Get(key); ok {
		e := v.(*cacheEntry)
		if e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
			c.logger.Debug("dataset cache hit", "path", key)
			return e.ds, nil
		}
		c.logger.Debug("dataset changed on disk, reloading", "path", key)
	}
	ds, err := c.load(path)
	if err != nil {
		return ds, err
	}
	c.cache.SetDefault(key, &cacheEntry{modTime: info.ModTime(), size: info.Size(), ds: ds})
	return ds, nil
}

// Invalidate drops the entry for path.
func (c *Cache) Invalidate(path string) {
	if key, err := filepath.Abs(path); err == nil {
		c.cache.Delete(key)
	}
}

// Len returns the number of cached datasets.
func (c *Cache) Len() int { return c.cache.ItemCount() }
