// Package cache provides a small byte cache used for rendered artifacts.
//
// Rendering a stack to SVG shells out to Graphviz, which dominates the cost of
// the render and inspect commands. Artifacts are keyed by the hash of their
// input so an unchanged stack is never rendered twice.
//
// Implementations:
//   - [FileCache]: entries as JSON files under a directory, for the CLI
//   - [MemoryCache]: in-process map, for the HTTP server
//   - [NullCache]: never stores anything
//
// [Scoped] prefixes keys so one backing cache can serve several artifact kinds.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional TTL.
type Cache interface {
	// Get returns the value and true on a hit. Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// NullCache never stores anything; every Get is a miss. The render command
// uses it for --no-cache.
type NullCache struct{}

// NewNullCache returns a cache that disables caching.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }
