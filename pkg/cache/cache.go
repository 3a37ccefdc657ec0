// Package cache provides the byte-level caches used by the pipeline.
//
// Three backends implement [Cache]:
//   - [NullCache] never stores anything (caching disabled)
//   - [FileCache] stores JSON-wrapped entries under a local directory
//   - [RedisCache] shares entries between server replicas, and stops using
//     Redis after the first connection error
//
// Keys are built by a [Keyer] so the CLI and the HTTP server agree on them.
// Values are opaque bytes; callers choose the encoding.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired key returns
	// (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// TTLs for each kind of cached value.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLAtlas    = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
