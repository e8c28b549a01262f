// Package cachemanager holds short-lived bot state keyed by chat: pending
// input prompts and recently fetched agent status.
package cachemanager

import (
	"context"
	"time"
)

type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	// Take returns the value and removes it, so a prompt is answered once.
	Take(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K)
	Flush(ctx context.Context)
}
