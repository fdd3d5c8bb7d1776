// Package cache stores computed linearizations between runs.
//
// A linearization depends only on the hierarchy it was computed from and the
// root, so results are keyed by a hash of the hierarchy's canonical encoding
// plus the root (see [Keyer]). This is a content-addressed result store; it is
// unrelated to the per-call fetch and merge caches inside the Linearizer.
//
// Backends:
//   - [FileCache]: JSON entries under a directory, for CLI use
//   - [RedisCache]: a shared Redis instance, for the HTTP API
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Entry lifetimes. Linearizations are content-addressed and never go stale,
// so the TTLs only bound storage growth.
const (
	TTLLinearization = 7 * 24 * time.Hour
	TTLReport        = 24 * time.Hour
)
