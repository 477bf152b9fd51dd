// Package cachex is a small byte cache with an in-process backend
// (go-cache) and a shared backend (Redis).
package cachex

import (
	"context"
	"time"
)

// Cache stores opaque values with a per-entry TTL.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value for ttl. A non-positive ttl stores nothing.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}
