// Package mapcache caches decoded source maps keyed by their resolved
// on-disk path. It lives outside pkg/sourcemap because spec.md puts file
// I/O out of scope for that package (a pure library; callers own I/O) —
// this cache does the os.ReadFile and logging that a disk-backed cache
// needs, and builds *sourcemap.TraceMap values through sourcemap.New like
// any other external caller would, mirroring pkg/diagnostic's split from
// the pure library.
package mapcache

import (
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/sourcemapgo/tracemap/internal/log"
	"github.com/sourcemapgo/tracemap/pkg/sourcemap"
)

// Cache caches decoded TraceMaps keyed by their resolved .map path,
// adapted from pkg/lsp/sourcemap_cache.go's double-checked-locking disk
// cache. Where that cache validated a cached entry by source map version
// number, this one fingerprints the file's bytes with xxhash and reloads
// whenever the hash changes — cheap enough to check on every Get without
// needing an mtime-based invalidation hook from a file watcher.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	logger  log.Logger
}

type cacheEntry struct {
	tm   *sourcemap.TraceMap
	hash uint64
}

// New creates an empty cache. logger must not be nil.
func New(logger log.Logger) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		logger:  logger,
	}
}

// Get returns the TraceMap for mapPath. It reads the file on every call to
// fingerprint it, and parses it into a new TraceMap only on a cold cache
// or a content-hash mismatch.
func (c *Cache) Get(mapPath string) (*sourcemap.TraceMap, error) {
	logger := c.logger.WithField("map", mapPath)

	data, err := os.ReadFile(mapPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("mapcache: map not found: %s", mapPath)
		}
		return nil, fmt.Errorf("mapcache: read %s: %w", mapPath, err)
	}
	hash := xxhash.Sum64(data)

	c.mu.RLock()
	if e, ok := c.entries[mapPath]; ok && e.hash == hash {
		c.mu.RUnlock()
		logger.Debugf("cache hit")
		return e.tm, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[mapPath]; ok && e.hash == hash {
		return e.tm, nil
	}

	tm, err := sourcemap.New(sourcemap.Input{JSON: string(data)}, mapPath)
	if err != nil {
		return nil, fmt.Errorf("mapcache: parse %s: %w", mapPath, err)
	}

	c.entries[mapPath] = cacheEntry{tm: tm, hash: hash}
	logger.Infof("loaded (%d bytes)", len(data))
	return tm, nil
}

// Invalidate drops mapPath's cached entry, if any — called after a
// watcher reports the file changed.
func (c *Cache) Invalidate(mapPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[mapPath]; ok {
		delete(c.entries, mapPath)
		c.logger.WithField("map", mapPath).Debugf("invalidated")
	}
}

// InvalidateAll clears the entire cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := len(c.entries)
	c.entries = make(map[string]cacheEntry)
	c.logger.Infof("all sourcemaps invalidated (%d entries cleared)", count)
}

// Size returns the number of cached entries.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
