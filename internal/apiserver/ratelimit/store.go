package ratelimit

import (
	"context"
	"time"
)

// Store counts hits per key in fixed windows
type Store interface {
	// Incr records one hit for key and returns the hit count of the current
	// window together with the time left until that window resets.
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)

	// Close releases the store's resources
	Close() error
}
