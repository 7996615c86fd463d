package extract

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lexandro/codemap/index"
)

// DefaultCacheSize is the number of extraction results kept by default.
const DefaultCacheSize = 4096

type cacheKey struct {
	language    string
	fingerprint index.Fingerprint
}

// Cache remembers extraction results by content fingerprint, so a file that
// returns to earlier content (undo, branch switch) or a copy of another file
// is not parsed again. Safe for concurrent use and shared by all projects.
type Cache struct {
	entries *lru.Cache[cacheKey, []index.Symbol]
}

// NewCache creates a cache holding up to size results.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[cacheKey, []index.Symbol](size)
	if err != nil {
		return nil, fmt.Errorf("creating extraction cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Extract returns cached symbols for (e, fp) or runs e and caches the
// result. Failed extractions are not cached.
func (c *Cache) Extract(e Extractor, fp index.Fingerprint, path string, content []byte) ([]index.Symbol, error) {
	key := cacheKey{language: e.Language(), fingerprint: fp}
	if symbols, ok := c.entries.Get(key); ok {
		return append([]index.Symbol(nil), symbols...), nil
	}
	symbols, err := Run(e, path, content)
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, symbols)
	return append([]index.Symbol(nil), symbols...), nil
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.entries.Purge()
}
