// Package ratelimit throttles outgoing protocol lines so bursts of user
// commands don't get us flood-killed.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket over outgoing lines. A nil Limiter never waits.
type Limiter struct {
	bucket *rate.Limiter
}

// New creates a limiter allowing burst lines at once and one more every
// interval. A non-positive burst or interval disables limiting.
func New(burst int, interval time.Duration) *Limiter {
	if burst <= 0 || interval <= 0 {
		return nil
	}
	return &Limiter{bucket: rate.NewLimiter(rate.Every(interval), burst)}
}

// Wait blocks until a line may be sent or ctx is done
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.bucket.Wait(ctx)
}

// Allow reports whether a line may be sent right now, consuming a token if so
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.bucket.Allow()
}

// Delay returns how long the next line would have to wait
func (l *Limiter) Delay() time.Duration {
	if l == nil {
		return 0
	}
	r := l.bucket.Reserve()
	d := r.Delay()
	r.Cancel()
	return d
}
