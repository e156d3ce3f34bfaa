package utils

import (
	"sync"
	"time"
)

// RateLimiter реализует ограничение частоты запросов по скользящему окну
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
}

// NewRateLimiter создает новый RateLimiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

// prune отбрасывает запросы, вышедшие из окна; вызывается под mu
func (rl *RateLimiter) prune(key string, now time.Time) []time.Time {
	windowStart := now.Add(-rl.window)
	kept := rl.requests[key][:0]
	for _, t := range rl.requests[key] {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(rl.requests, key)
		return nil
	}
	rl.requests[key] = kept
	return kept
}

// Allow проверяет, разрешен ли запрос для ключа
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	recent := rl.prune(key, now)

	if len(recent) >= rl.limit {
		return false
	}

	rl.requests[key] = append(recent, now)
	return true
}

// Remaining возвращает количество оставшихся запросов в текущем окне
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	left := rl.limit - len(rl.prune(key, time.Now()))
	if left < 0 {
		left = 0
	}
	return left
}

// ResetAt возвращает момент, когда лимит для ключа освободится
func (rl *RateLimiter) ResetAt(key string) time.Time {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	recent := rl.prune(key, time.Now())
	if len(recent) == 0 {
		return time.Now()
	}
	return recent[0].Add(rl.window)
}

// Reset сбрасывает счетчик для ключа
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.requests, key)
}
