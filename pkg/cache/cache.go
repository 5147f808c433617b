// Package cache provides result caching for arrange and route passes.
//
// Layout is deterministic: the same node list, direction, spacing and route
// options always produce the same result. The pipeline therefore caches the
// encoded result under a key derived from a hash of the canonical input.
//
// # Backends
//
//   - [NullCache]: caching disabled
//   - [FileCache]: sharded JSON files under the user cache directory (CLI)
//   - [RedisCache]: shared cache for server deployments
//
// # Keys
//
// A [Keyer] turns an input hash plus options into a key. [ScopedKeyer]
// prefixes every key so tenants or environments can share a backend:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "staging:")
//	key := keyer.LayoutKey(cache.Hash(input), cache.LayoutKeyOpts{Direction: "vertical"})
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Cache TTLs.
const (
	// TTLLayout is how long a full arrange + route result is kept.
	TTLLayout = 7 * 24 * time.Hour

	// TTLRoute is how long a re-route for fixed positions is kept. Dragging
	// produces many short-lived position sets, so these expire quickly.
	TTLRoute = time.Hour
)

// Key types reported to observability hooks.
const (
	KeyTypeLayout = "layout"
	KeyTypeRoute  = "route"
)
