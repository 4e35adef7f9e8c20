package irc

import (
	"context"
	"sync"
	"time"

	"github.com/yourusername/pesterlink/internal/output"
)

// Backoff spaces out reconnection attempts, doubling the delay after each
// failure up to a ceiling.
type Backoff struct {
	mu       sync.Mutex
	logger   output.Logger
	minDelay time.Duration
	maxDelay time.Duration
	current  time.Duration
	attempt  int
}

// NewBackoff creates a backoff starting at minDelay
func NewBackoff(minDelay, maxDelay time.Duration, logger output.Logger) *Backoff {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Backoff{
		logger:   logger,
		minDelay: minDelay,
		maxDelay: maxDelay,
		current:  minDelay,
	}
}

// Next returns the delay before the next attempt and increases it
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.attempt++
	delay := b.current
	b.current *= 2
	if b.current > b.maxDelay {
		b.current = b.maxDelay
	}
	return delay
}

// Reset goes back to the minimum delay after a successful connection
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.attempt > 0 {
		b.logger.Info("Backoff reset to %v", b.minDelay)
	}
	b.current = b.minDelay
	b.attempt = 0
}

// Attempt returns how many delays have been handed out since the last reset
func (b *Backoff) Attempt() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempt
}

// Wait sleeps for the next delay. It returns false if ctx ends first.
func (b *Backoff) Wait(ctx context.Context) bool {
	delay := b.Next()
	b.logger.Info("Reconnection attempt %d (waiting %v)...", b.Attempt(), delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
