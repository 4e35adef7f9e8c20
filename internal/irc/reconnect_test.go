package irc

import (
	"context"
	"testing"
	"time"

	"github.com/yourusername/pesterlink/internal/output"
)

func TestBackoff(t *testing.T) {
	b := NewBackoff(5*time.Second, 30*time.Second, output.NopLogger{})

	want := []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second, 30 * time.Second, 30 * time.Second}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Errorf("attempt %d: delay = %v, want %v", i+1, got, w)
		}
	}
	if b.Attempt() != len(want) {
		t.Errorf("attempt = %d", b.Attempt())
	}

	b.Reset()
	if got := b.Next(); got != 5*time.Second {
		t.Errorf("after reset delay = %v", got)
	}
}

func TestBackoff_WaitHonoursContext(t *testing.T) {
	b := NewBackoff(time.Hour, time.Hour, output.NopLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if b.Wait(ctx) {
		t.Error("Wait returned true for a cancelled context")
	}

	quick := NewBackoff(time.Millisecond, time.Millisecond, output.NopLogger{})
	if !quick.Wait(context.Background()) {
		t.Error("Wait returned false")
	}
}
