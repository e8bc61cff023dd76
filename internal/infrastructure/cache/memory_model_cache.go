package cache

import (
	"context"
	"sync"
	"time"

	"github.com/andraa0104/isystem-1-sub006/internal/domain/coding"
)

// InMemoryModelCache stores trained models in process memory with a
// time-based expiry. Suitable for single-instance deployments and testing.
// Concurrent misses may rebuild the same model redundantly; that is safe
// because models derive only from immutable historical data.
type InMemoryModelCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	model     *coding.Model
	expiresAt time.Time
}

// NewInMemoryModelCache creates an in-memory model cache.
func NewInMemoryModelCache() *InMemoryModelCache {
	return &InMemoryModelCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// NewInMemoryModelCacheWithClock creates a cache with an injected clock so
// tests can force expiry deterministically.
func NewInMemoryModelCacheWithClock(now func() time.Time) *InMemoryModelCache {
	c := NewInMemoryModelCache()
	c.now = now
	return c
}

// Get returns the cached model for the key, or false when absent or expired.
func (c *InMemoryModelCache) Get(_ context.Context, key string) (*coding.Model, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.model, true
}

// Set stores a model under the key with the given time-to-live.
func (c *InMemoryModelCache) Set(_ context.Context, key string, model *coding.Model, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = memoryEntry{model: model, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}
