// Package cache provides the artifact cache behind the render pipeline.
//
// Rendering a poster is a pure function of its configuration, seed and
// output options, so every encoded artifact can be stored under a key
// derived from those inputs and served again without redrawing.
//
// Backends:
//   - [FileCache]: Local directory, used by the CLI (~/.cache/wobble)
//   - [RedisCache]: Shared cache for multi-instance HTTP servers
//   - [NullCache]: Disables caching
//
// Keys come from a [Keyer]; [NewScopedKeyer] namespaces them.
package cache

import (
	"context"
	"time"
)

// TTLArtifact is how long rendered files stay cached.
const TTLArtifact = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NullCache stores nothing; every Get is a miss. It backs --no-cache.
type NullCache struct{}

// NewNullCache returns a cache that never hits.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)         { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
