// Package ratelimit implements fixed-window request limits keyed by an
// arbitrary string such as a client IP.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether one more request for key fits in the current window
type Limiter interface {
	// Allow counts a request. When it is rejected, retryAfter is the time
	// left in the window.
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// RetryAfterSeconds formats d for a Retry-After header
func RetryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
