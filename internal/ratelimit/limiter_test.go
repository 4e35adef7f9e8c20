package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_Burst(t *testing.T) {
	l := New(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !l.Allow() {
			t.Fatalf("line %d should be allowed within burst", i)
		}
	}
	if l.Allow() {
		t.Error("line beyond burst should be refused")
	}
	if l.Delay() <= 0 {
		t.Error("expected a positive delay once the bucket is empty")
	}
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	l := New(1, time.Hour)
	l.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); err == nil {
		t.Error("expected Wait to fail when the deadline is shorter than the refill")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	l := New(0, time.Second)
	if l != nil {
		t.Fatal("zero burst should disable limiting")
	}
	if !l.Allow() || l.Delay() != 0 {
		t.Error("nil limiter should never throttle")
	}
	if err := l.Wait(context.Background()); err != nil {
		t.Errorf("nil limiter Wait returned %v", err)
	}
}
