package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value    []byte
	storedAt time.Time
}

// MemoryCache is an in-process AnalysisCache for tests and single-process tools
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithClock(time.Now)
}

// NewMemoryCacheWithClock creates an in-memory cache with an injectable clock
func NewMemoryCacheWithClock(now func() time.Time) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		now:     now,
	}
}

// Get implements AnalysisCache
func (c *MemoryCache) Get(_ context.Context, key string, maxAge time.Duration) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.storedAt) > maxAge {
		return nil, false, nil
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Put implements AnalysisCache
func (c *MemoryCache) Put(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	c.entries[key] = entry{value: stored, storedAt: c.now()}
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, fresh or not
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
