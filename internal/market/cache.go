package market

import (
	"context"
	"sync"
	"time"
)

// ReadingTTL bounds how long a live reading is served before the provider is
// called again.
const ReadingTTL = 30 * time.Second

// Cache is a keyed store of live readings. Implementations must treat
// entries past their TTL as absent, never returning them stale.
type Cache interface {
	Get(ctx context.Context, kind Kind) (*Reading, bool)
	Set(ctx context.Context, kind Kind, r *Reading, ttl time.Duration)
}

type memoryEntry struct {
	reading *Reading
	expiry  time.Time
}

// MemoryCache is the default in-process cache. Each kind is its own key, so
// there is no cross-kind contention beyond the single mutex.
type MemoryCache struct {
	mu    sync.RWMutex
	store map[Kind]memoryEntry
	now   func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		store: make(map[Kind]memoryEntry),
		now:   time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, kind Kind) (*Reading, bool) {
	c.mu.RLock()
	e, ok := c.store[kind]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expiry) {
		return nil, false
	}
	return e.reading, true
}

func (c *MemoryCache) Set(_ context.Context, kind Kind, r *Reading, ttl time.Duration) {
	c.mu.Lock()
	c.store[kind] = memoryEntry{reading: r, expiry: c.now().Add(ttl)}
	c.mu.Unlock()
}
