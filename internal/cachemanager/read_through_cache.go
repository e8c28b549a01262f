package cachemanager

import (
	"context"
	"time"
)

// ReadThroughCache serves values from cache and falls back to fn on a miss.
// Errors are not cached.
type ReadThroughCache[K comparable, V any] struct {
	cache CacheManager[K, V]
	fn    func(ctx context.Context, key K) (V, error)
	ttl   time.Duration
}

// NewReadThroughCache wraps fn. A ttl of zero disables caching.
func NewReadThroughCache[K comparable, V any](
	cache CacheManager[K, V],
	fn func(ctx context.Context, key K) (V, error),
	ttl time.Duration,
) *ReadThroughCache[K, V] {
	return &ReadThroughCache[K, V]{
		cache: cache,
		fn:    fn,
		ttl:   ttl,
	}
}

func (r *ReadThroughCache[K, V]) Get(ctx context.Context, key K) (V, error) {
	if r.ttl <= 0 {
		return r.fn(ctx, key)
	}

	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}

	value, err := r.fn(ctx, key)
	if err != nil {
		return value, err
	}

	r.cache.Set(ctx, key, value, r.ttl)

	return value, nil
}

// Invalidate drops the cached value for key.
func (r *ReadThroughCache[K, V]) Invalidate(ctx context.Context, key K) {
	r.cache.Delete(ctx, key)
}
