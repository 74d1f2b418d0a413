package providers

import (
	"context"
	"time"
)

// RateLimiter counts events per key in fixed windows.
type RateLimiter interface {
	// Allow records one event for key and reports whether the key is still
	// within limit events for the current window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
