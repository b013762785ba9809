package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-memory cache bounded by entry count and age.
//
// Eviction is first-in-first-out by insertion time. Reads never refresh an
// entry's eviction position; only Set on an existing key does.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = oldest insertion
	policy  Policy
	now     func() time.Time

	hits        int64
	misses      int64
	evictions   int64
	expirations int64
}

type cacheEntry struct {
	key        string
	value      []byte
	insertedAt time.Time
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Evictions   int64 `json:"evictions"`
	Expirations int64 `json:"expirations"`
	Size        int   `json:"size"`
	Capacity    int   `json:"capacity"`
}

// HitRate returns the hit rate as a percentage of lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Option configures a MemoryCache.
type Option func(*MemoryCache)

// WithClock overrides the time source used for insertion stamps and expiry.
func WithClock(now func() time.Time) Option {
	return func(c *MemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewMemoryCache creates a new in-memory cache with the given policy.
func NewMemoryCache(policy Policy, opts ...Option) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		policy:  policy,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a value from the cache. Returns (nil, false) on miss or expiry.
// An expired entry is removed as a side effect.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	if c.policy.Expired(entry.insertedAt, c.now()) {
		c.removeLocked(elem)
		c.expirations++
		c.misses++
		return nil, false
	}

	c.hits++
	return entry.value, true
}

// Set stores a value. Overwriting an existing key resets its insertion time
// and moves it to the newest position. A disabled policy makes Set a no-op.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if !c.policy.ShouldCache() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		entry.insertedAt = now
		c.order.MoveToBack(elem)
		return nil
	}

	for c.order.Len() >= c.policy.Capacity {
		c.removeLocked(c.order.Front())
		c.evictions++
	}

	c.entries[key] = c.order.PushBack(&cacheEntry{
		key:        key,
		value:      value,
		insertedAt: now,
	})
	return nil
}

// Delete removes a value from the cache. Idempotent - no error on miss.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.removeLocked(elem)
	}
	return nil
}

// Len returns the number of physically present entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns a snapshot of the cache counters.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
		Size:        c.order.Len(),
		Capacity:    c.policy.Capacity,
	}
}

// Policy returns the cache policy.
func (c *MemoryCache) Policy() Policy {
	return c.policy
}

func (c *MemoryCache) removeLocked(elem *list.Element) {
	entry := c.order.Remove(elem).(*cacheEntry)
	delete(c.entries, entry.key)
}

// Ensure MemoryCache implements Cache
var _ Cache = (*MemoryCache)(nil)
