package ports

import (
	"context"
	"time"
)

// CacheRepository is a byte-oriented key/value cache with expiry.
type CacheRepository interface {
	// Set stores value under key. A zero TTL never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns nil, nil when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete reports whether a key was removed.
	Delete(ctx context.Context, key string) (bool, error)

	// Health checks the cache connection.
	Health(ctx context.Context) error
}
