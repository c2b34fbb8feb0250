package utils

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheItem[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a bounded LRU whose entries expire after a fixed TTL.
type Cache[V any] struct {
	lru *lru.Cache[string, cacheItem[V]]
	ttl time.Duration

	mu  sync.Mutex
	now func() time.Time
}

// NewCache creates a cache holding at most size entries. A non-positive ttl
// disables caching: Get always misses.
func NewCache[V any](size int, ttl time.Duration) (*Cache[V], error) {
	l, err := lru.New[string, cacheItem[V]](size)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{lru: l, ttl: ttl, now: time.Now}, nil
}

// SetClock overrides the time source, for tests.
func (c *Cache[V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func (c *Cache[V]) clock() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}

func (c *Cache[V]) Set(key string, value V) {
	if c.ttl <= 0 {
		return
	}
	c.lru.Add(key, cacheItem[V]{value: value, expiresAt: c.clock().Add(c.ttl)})
}

// Get returns the cached value, dropping it if it has expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	item, ok := c.lru.Get(key)
	if !ok {
		return zero, false
	}
	if !c.clock().Before(item.expiresAt) {
		c.lru.Remove(key)
		return zero, false
	}
	return item.value, true
}

func (c *Cache[V]) Delete(key string) {
	c.lru.Remove(key)
}

func (c *Cache[V]) Purge() {
	c.lru.Purge()
}
