package structure

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Cache memoizes the parse pipeline keyed by (absolute path, modification
// time). It is an explicit object owned by the caller, never package-level
// state, so independent invocations do not observe each other's entries
// unless they intentionally share an instance.
type Cache struct {
	parser *Parser

	mu      sync.RWMutex
	entries map[string]cacheEntry
	stats   CacheStats
}

type cacheEntry struct {
	modTime time.Time
	model   *Model
}

// CacheStats tracks hit/miss counts for observability.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// NewCache creates a cache around the given parser.
func NewCache(parser *Parser) *Cache {
	return &Cache{
		parser:  parser,
		entries: map[string]cacheEntry{},
	}
}

// GetOrParse returns the cached model for path, or runs the full pipeline
// on a miss. A same-path entry with a different modification time is stale
// and gets evicted by the insert. Writes are serialized so parallel callers
// cannot corrupt the map; at worst two callers parse the same document once
// each and the later result wins.
func (c *Cache) GetOrParse(path string) (*Model, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	modTime := info.ModTime()

	c.mu.RLock()
	entry, ok := c.entries[abs]
	c.mu.RUnlock()

	if ok && entry.modTime.Equal(modTime) {
		c.mu.Lock()
		c.stats.Hits++
		c.mu.Unlock()
		return entry.model, nil
	}

	model, err := c.parser.ParseFile(abs)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[abs] = cacheEntry{modTime: modTime, model: model}
	c.stats.Misses++
	c.mu.Unlock()

	return model, nil
}

// Invalidate drops the entry for path, if any.
func (c *Cache) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, abs)
	c.mu.Unlock()
}

// Len returns the number of cached models.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the hit/miss counters.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}
