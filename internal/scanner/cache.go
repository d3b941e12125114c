package scanner

import (
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/newthinker/pulse/internal/core"
)

// CacheKey derives a deterministic key from a universe and the scan
// parameters, so a parameter change never serves a stale result.
func CacheKey(symbols []string, cfg Config) string {
	h := fnv.New64a()
	h.Write([]byte(strings.Join(symbols, ",")))
	return fmt.Sprintf("scan:%x:%d:%g:%g:%g:%d",
		h.Sum64(), cfg.LookbackDays, cfg.OversoldBelow, cfg.OverboughtAbove,
		cfg.MarketCapFloor, cfg.MaxResults)
}

type cacheEntry struct {
	result  *core.ScanResult
	expires time.Time
}

// ResultCache is a time-boxed ScanResult cache. The scanner itself stays
// stateless; the cache is owned by whoever drives it (the scan command, the
// watch scheduler) and bounds how stale a reused result may be.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

// NewResultCache creates a cache with the given staleness window.
func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Get returns a cached result if present and within its staleness window.
func (c *ResultCache) Get(key string) (*core.ScanResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.result, true
}

// Put stores a result. A fresh result always supersedes the previous one.
func (c *ResultCache) Put(key string, result *core.ScanResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		result:  result,
		expires: time.Now().Add(c.ttl),
	}
}

// Len returns the number of live entries, expiring lazily.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
		}
	}
	return len(c.entries)
}
