// Package cache memoizes rendered API listings per committed generation.
package cache

import (
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache wraps go-cache. Keys carry the state generation they were rendered
// from, so a new commit naturally misses and old entries expire by TTL.
type Cache struct {
	store *gocache.Cache
}

// New creates a new cache with the given TTL and cleanup interval.
func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Key builds a generation-scoped key.
func Key(generation uint64, parts ...string) string {
	key := strconv.FormatUint(generation, 10)
	for _, p := range parts {
		key += "|" + p
	}
	return key
}

// Get retrieves a value from the cache.
func (c *Cache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

// Set stores a value in the cache with default TTL.
func (c *Cache) Set(key string, value any) {
	c.store.Set(key, value, gocache.DefaultExpiration)
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss.
func (c *Cache) GetOrCompute(key string, compute func() any) any {
	if v, ok := c.store.Get(key); ok {
		return v
	}
	v := compute()
	c.store.Set(key, v, gocache.DefaultExpiration)
	return v
}

// Clear removes all items from the cache.
func (c *Cache) Clear() {
	c.store.Flush()
}

// ItemCount returns the number of items in the cache.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}
