package cachemanager

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/deskctl/internal/log"
)

const DefaultExpiration = 5 * time.Minute
const DefaultCleanupInterval = 10 * time.Minute

// NewInMemoryCacheManager builds a go-cache backed manager. useCase labels log
// lines so the prompt store and the status cache can be told apart.
func NewInMemoryCacheManager[K comparable, V any](useCase string, defaultExpiration, cleanupInterval time.Duration) *InMemoryCacheManager[K, V] {
	return &InMemoryCacheManager[K, V]{
		useCase: useCase,
		cache:   gocache.New(defaultExpiration, cleanupInterval),
	}
}

// InMemoryCacheManager is the concrete implementation of the CacheManager interface
type InMemoryCacheManager[K comparable, V any] struct {
	useCase string
	cache   *gocache.Cache
}

var _ CacheManager[int64, string] = (*InMemoryCacheManager[int64, string])(nil)

func keyOf[K comparable](key K) string {
	return fmt.Sprint(key)
}

// Get retrieves an item from the cache by its key
func (c *InMemoryCacheManager[K, V]) Get(_ context.Context, key K) (V, bool) {
	var zeroValue V

	value, found := c.cache.Get(keyOf(key))
	if !found {
		return zeroValue, false
	}

	v, ok := value.(V)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting value", "cache", c.useCase, "key", key)
		return zeroValue, false
	}

	log.Debug(log.CatCache, "cache hit", "cache", c.useCase, "key", key)
	return v, true
}

// Take retrieves an item and deletes it.
func (c *InMemoryCacheManager[K, V]) Take(ctx context.Context, key K) (V, bool) {
	v, ok := c.Get(ctx, key)
	if ok {
		c.cache.Delete(keyOf(key))
	}
	return v, ok
}

// Set sets a value in the cache with a key and TTL
func (c *InMemoryCacheManager[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	c.cache.Set(keyOf(key), value, ttl)
}

// Delete removes values by key.
func (c *InMemoryCacheManager[K, V]) Delete(_ context.Context, keys ...K) {
	for _, key := range keys {
		c.cache.Delete(keyOf(key))
	}
}

// Flush removes everything.
func (c *InMemoryCacheManager[K, V]) Flush(context.Context) {
	c.cache.Flush()
}
