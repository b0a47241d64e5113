package depparse

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultCacheSize bounds the number of distinct binaries whose parsed
// metadata is held in memory at once. A deploy run can easily touch
// several hundred plugin libraries; this keeps memory proportional to
// the working set rather than to everything ever visited, without
// changing the memoization contract — a cache miss just re-invokes the
// helper tool, which spec §4.3 already treats as always-safe.
const defaultCacheSize = 2048

// Cache memoizes parse results by canonical subject path, for the
// lifetime of one deploy run. It is not safe for concurrent use —
// the orchestrator that owns it runs single-threaded, per spec §5.
type Cache struct {
	results     *lru.Cache[string, ParseResult]
	machoRpaths *lru.Cache[string, MachoRpaths]
}

// NewCache builds an empty Cache.
func NewCache() *Cache {
	results, err := lru.New[string, ParseResult](defaultCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// defaultCacheSize never is.
		panic(err)
	}
	machoRpaths, err := lru.New[string, MachoRpaths](defaultCacheSize)
	if err != nil {
		panic(err)
	}
	return &Cache{results: results, machoRpaths: machoRpaths}
}

// GetResult returns the cached ParseResult for canonicalPath, if any.
func (c *Cache) GetResult(canonicalPath string) (ParseResult, bool) {
	return c.results.Get(canonicalPath)
}

// PutResult stores a ParseResult for canonicalPath.
func (c *Cache) PutResult(canonicalPath string, r ParseResult) {
	c.results.Add(canonicalPath, r)
}

// GetMachoRpaths returns the cached MachoRpaths for canonicalPath, if any.
func (c *Cache) GetMachoRpaths(canonicalPath string) (MachoRpaths, bool) {
	return c.machoRpaths.Get(canonicalPath)
}

// PutMachoRpaths stores MachoRpaths for canonicalPath.
func (c *Cache) PutMachoRpaths(canonicalPath string, r MachoRpaths) {
	c.machoRpaths.Add(canonicalPath, r)
}
