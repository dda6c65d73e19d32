// Package cache stores computed plans and rendered diagrams.
//
// Solving is deterministic, so a plan is cached under a key derived from its
// input demand and solver options. Rendered artifacts are keyed by the hash
// of the plan JSON plus the render options.
//
// Backends:
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared cache for the API server
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache stores byte blobs under string keys with an optional TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss returns (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs.
const (
	TTLPlan     = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
