package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	v   V
	exp time.Time
}

// TTLCache is a size bounded cache whose entries expire after a fixed
// ttl. When full, the entry closest to expiry is evicted first.
type TTLCache[V any] struct {
	mu         sync.Mutex
	m          map[string]entry[V]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func NewTTLCache[V any](ttl time.Duration, maxEntries int) *TTLCache[V] {
	return &TTLCache[V]{
		m:          make(map[string]entry[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.m[key]
	if !ok {
		return zero, false
	}
	if c.now().After(e.exp) {
		delete(c.m, key)
		return zero, false
	}
	return e.v, true
}

func (c *TTLCache[V]) Set(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.m[key]; !exists && c.maxEntries > 0 && len(c.m) >= c.maxEntries {
		c.evict()
	}
	c.m[key] = entry[V]{v: v, exp: c.now().Add(c.ttl)}
}

func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// evict drops expired entries, or the one expiring soonest if
// nothing has expired yet. Caller holds mu.
func (c *TTLCache[V]) evict() {
	now := c.now()
	var (
		oldestKey string
		oldestExp time.Time
	)
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
			continue
		}
		if oldestKey == "" || e.exp.Before(oldestExp) {
			oldestKey = k
			oldestExp = e.exp
		}
	}
	if len(c.m) >= c.maxEntries && oldestKey != "" {
		delete(c.m, oldestKey)
	}
}
