package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which keys have been processed so retried
// requests and redelivered events run their side effects once.
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl. It reports false when the key
	// was already claimed and still live.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether key holds a live claim.
	IsProcessed(ctx context.Context, key string) (bool, error)

	Close() error
}

// IdempotencyConfig tunes duplicate suppression.
type IdempotencyConfig struct {
	// TTL bounds how long a key stays claimed; after it expires the
	// same key may be processed again.
	TTL time.Duration

	Enabled bool
}

// DefaultIdempotencyConfig claims keys for a full day.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
