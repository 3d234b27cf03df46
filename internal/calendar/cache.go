package calendar

import (
	"sync"
	"time"
)

// CacheEntry is a cached calendar body and the time it was fetched
type CacheEntry struct {
	Text      string
	FetchedAt time.Time
}

// Cache stores fetched calendar text. Expiry is decided by the caller.
type Cache interface {
	Get(key string) (CacheEntry, bool, error)
	Set(key string, entry CacheEntry) error
}

// MemoryCache is a process-local Cache
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
}

// NewMemoryCache creates an empty MemoryCache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]CacheEntry),
	}
}

// Get returns the entry stored under key
func (c *MemoryCache) Get(key string) (CacheEntry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	return entry, ok, nil
}

// Set stores entry under key, replacing any previous value
func (c *MemoryCache) Set(key string, entry CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry
	return nil
}
