package utils

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("client") {
			t.Fatalf("request %d within the limit was rejected", i+1)
		}
	}
	if rl.Allow("client") {
		t.Error("request over the limit was allowed")
	}

	// Лимиты считаются по ключам независимо
	if !rl.Allow("other") {
		t.Error("different key must have its own limit")
	}
}

func TestRateLimiterRemaining(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)

	if got := rl.Remaining("client"); got != 5 {
		t.Errorf("fresh key remaining: got %d want 5", got)
	}
	rl.Allow("client")
	rl.Allow("client")
	if got := rl.Remaining("client"); got != 3 {
		t.Errorf("remaining after two requests: got %d want 3", got)
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 30*time.Millisecond)

	if !rl.Allow("client") {
		t.Fatal("first request was rejected")
	}
	if rl.Allow("client") {
		t.Fatal("second request within the window was allowed")
	}

	time.Sleep(40 * time.Millisecond)
	if !rl.Allow("client") {
		t.Error("request after the window expired was rejected")
	}
}

func TestRateLimiterReset(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	rl.Allow("client")
	if rl.Allow("client") {
		t.Fatal("limit was not enforced")
	}

	rl.Reset("client")
	if !rl.Allow("client") {
		t.Error("request after Reset was rejected")
	}
}

func TestRateLimiterResetAt(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	before := time.Now()
	rl.Allow("client")
	resetAt := rl.ResetAt("client")

	// Окно освобождается через минуту после первого запроса
	if resetAt.Before(before.Add(59 * time.Second)) {
		t.Errorf("ResetAt too early: %v", resetAt)
	}
}
