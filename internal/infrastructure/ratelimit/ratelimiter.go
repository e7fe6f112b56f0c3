// Package ratelimit counts API calls per caller in sliding windows kept in Redis.
package ratelimit

import (
	"context"
	"time"
)

// RateLimitConfig sets the ceiling for each window; a zero limit disables
// that window.
type RateLimitConfig struct {
	RequestsPerMinute int
	RequestsPerHour   int
	BurstSize         int
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, config RateLimitConfig) (bool, error)
	// Used is the number of calls recorded for key inside window.
	Used(ctx context.Context, key string, window time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}
