// Package scrape implements the pagination engine and the category
// auto-detection policy for district scrapes.
package scrape

import (
	"context"
	"time"
)

// RateLimiter enforces a minimum delay between consecutive outbound requests.
// The delay is measured from the start of the previous tracked request, and
// the first call never waits. Callers are strictly sequential, so no locking
// is required.
type RateLimiter struct {
	interval time.Duration
	last     time.Time
}

// NewRateLimiter creates a rate limiter with the given minimum interval.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{interval: interval}
}

// Wait blocks until at least the configured interval has elapsed since the
// start of the previous tracked request, then marks the start of the next
// one. It returns early with the context's error if the context is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if !r.last.IsZero() && r.interval > 0 {
		if remaining := r.interval - time.Since(r.last); remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	r.last = time.Now()
	return nil
}
