package cache

import (
	"context"
	"time"
)

// ScopedCache wraps a Cache with a key prefix.
// This keeps artifact kinds (SVG, DOT, manifests) apart in one backing cache.
//
// Example usage:
//
//	svg := cache.Scoped(backing, "svg:")
//	yaml := cache.Scoped(backing, "k8s:")
type ScopedCache struct {
	inner  Cache
	prefix string
}

// Scoped creates a cache whose keys are prefixed with prefix.
// A nil inner cache is replaced by a NullCache.
func Scoped(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	return &ScopedCache{inner: inner, prefix: prefix}
}

// Get retrieves a prefixed key.
func (c *ScopedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

// Set stores a prefixed key.
func (c *ScopedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, c.prefix+key, data, ttl)
}

// Delete removes a prefixed key.
func (c *ScopedCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close closes the inner cache.
func (c *ScopedCache) Close() error {
	return c.inner.Close()
}

// Key builds a cache key of the form prefix:hash(parts...).
func Key(prefix string, parts ...any) string {
	return hashKey(prefix, parts...)
}
