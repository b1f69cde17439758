package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_DefaultBurst(t *testing.T) {
	if l := NewLimiter(10, -1); l.burst != 5 {
		t.Errorf("expected default burst 5, got %d", l.burst)
	}
}

func TestLimiter_PerHost(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "http://localhost:8000/sources"); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(short, "http://localhost:8000/claims"); err == nil {
		t.Error("second request to the same host should be limited")
	}
	if err := limiter.Wait(short, "http://localhost:5500/jobs"); err != nil {
		t.Errorf("another host has its own bucket: %v", err)
	}
}

func TestLimiter_ContextDeadline(t *testing.T) {
	limiter := NewLimiter(0.1, 1)
	_ = limiter.Wait(context.Background(), "http://api.local/x")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "http://api.local/y"); err == nil {
		t.Error("expected wait to fail before the next token")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	for i := 0; i < 10; i++ {
		if err := limiter.Wait(ctx, "http://api.local/"); err != nil {
			t.Fatalf("request %d limited with rate disabled: %v", i, err)
		}
	}
}

func TestLimiter_BadURL(t *testing.T) {
	limiter := NewLimiter(10, 1)
	if err := limiter.Wait(context.Background(), "not a url"); err == nil {
		t.Error("expected error for URL without host")
	}
}
