package cache

import (
	"context"
	"sync"
	"time"
)

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a thread-safe TTL cache for slowly-changing configuration values
// such as per-user plan lookups. Reads go through GetOrRefresh; the
// corresponding write path must call Invalidate so stale values never
// outlive a change by more than one request.
type Cache[K comparable, V any] struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[K]item[V]
	now   func() time.Time
}

// New returns a Cache whose entries expire after ttl. A non-positive ttl
// disables caching: every read refreshes.
func New[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		ttl:   ttl,
		items: make(map[K]item[V]),
		now:   time.Now,
	}
}

// GetOrRefresh returns the cached value for key, or calls refresh and caches
// the result. A failed refresh is not cached. Concurrent misses for the same
// key may refresh more than once; last write wins, which is acceptable for
// idempotent lookups.
func (c *Cache[K, V]) GetOrRefresh(ctx context.Context, key K, refresh func(ctx context.Context) (V, error)) (V, error) {
	if c.ttl > 0 {
		c.mu.RLock()
		it, ok := c.items[key]
		c.mu.RUnlock()
		if ok && c.now().Before(it.expiresAt) {
			return it.value, nil
		}
	}

	value, err := refresh(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	if c.ttl > 0 {
		c.mu.Lock()
		c.items[key] = item[V]{value: value, expiresAt: c.now().Add(c.ttl)}
		c.mu.Unlock()
	}
	return value, nil
}

// Invalidate removes the cached value for key.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len returns the number of cached entries, expired or not.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
