// Package cache stores pipeline results keyed by content hashes.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [MemoryCache]: a bounded in-process LRU, for the preview server
//   - [RedisCache]: a shared Redis instance, for several server replicas
//   - [NullCache]: stores nothing, for --no-cache
//
// [Open] picks a backend from a URL such as "redis://localhost:6379/0",
// "mem://", "none", or a directory path.
//
// # Keys
//
// A [Keyer] derives keys from the hash of the previous stage's output and the
// options of the current stage, so a layout is reused only for the same
// model and the same layout options, and an artifact only for the same
// layout and render options.
package cache

import (
	"context"
	"time"
)

// Entry lifetimes used by the pipeline. Keys embed content hashes, so
// entries never go stale; the TTLs only bound disk and memory use.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with optional per-entry expiry. A ttl of zero
// stores the entry without expiry. Get reports a miss with ok == false and
// a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}
