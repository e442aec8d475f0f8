package ratelimiter

import (
	"context"
	"testing"
	"time"
)

func TestAllow(t *testing.T) {
	limiter := New(10, 10)

	for i := 0; i < 10; i++ {
		if !limiter.Allow() {
			t.Fatalf("connection %d should be admitted (within burst)", i)
		}
	}
	if limiter.Allow() {
		t.Fatal("connection should be dropped after burst exhausted")
	}

	time.Sleep(110 * time.Millisecond)
	if !limiter.Allow() {
		t.Fatal("connection should be admitted after token replenishment")
	}
}

func TestZeroRateIsUnlimited(t *testing.T) {
	limiter := New(0, 0)

	for i := 0; i < 1000; i++ {
		if !limiter.Allow() {
			t.Fatalf("unlimited limiter rejected connection %d", i)
		}
	}
}

func TestWait(t *testing.T) {
	limiter := New(10, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("first wait should succeed: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("second wait should succeed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("second wait returned too fast: %v", elapsed)
	}
}

func TestWaitCancelled(t *testing.T) {
	limiter := New(1, 1)
	limiter.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx); err == nil {
		t.Fatal("wait should fail once the context is cancelled")
	}
}
