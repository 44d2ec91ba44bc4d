// Package cache stores computed snapshots for a limited time.
package cache

import (
	"context"
	"time"
)

// Cache stores JSON-encodable values under string keys with a TTL.
type Cache interface {
	// Get decodes the value at key into dst and reports whether it was found.
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}
