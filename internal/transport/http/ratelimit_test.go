package http

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	rl := newRateLimiter(2, time.Hour)

	if !rl.allow() || !rl.allow() {
		t.Fatal("expected first two calls to be allowed")
	}
	if rl.allow() {
		t.Fatal("expected third call to be rejected")
	}
}

func TestRateLimiterResets(t *testing.T) {
	rl := newRateLimiter(1, 10*time.Millisecond)
	stop := make(chan struct{})
	defer close(stop)
	rl.startReset(stop)

	if !rl.allow() {
		t.Fatal("expected first call to be allowed")
	}
	if rl.allow() {
		t.Fatal("expected second call to be rejected")
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		time.Sleep(15 * time.Millisecond)
		if rl.allow() {
			return
		}
	}
	t.Fatal("limiter never reset")
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := newRateLimiter(0, time.Minute)
	for range 100 {
		if !rl.allow() {
			t.Fatal("disabled limiter must always allow")
		}
	}
}
