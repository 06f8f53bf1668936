package middleware

import (
	"sync"
	"time"
)

// RateLimiter is a sliding window limit of commands per Telegram user.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[int64][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRateLimiter starts the limiter and its sweeper goroutine. Call Close on shutdown.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[int64][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	go rl.sweepLoop(5 * time.Minute)
	return rl
}

// Close stops the sweeper.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Allow records a hit for telegramID unless the window is full.
func (rl *RateLimiter) Allow(telegramID int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	recent := pruned(rl.requests[telegramID], now.Add(-rl.window))
	if len(recent) >= rl.limit {
		rl.requests[telegramID] = recent
		return false
	}
	rl.requests[telegramID] = append(recent, now)
	return true
}

// Tracked returns how many users currently hold hits in the window.
func (rl *RateLimiter) Tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.requests)
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for id, hits := range rl.requests {
		if recent := pruned(hits, cutoff); len(recent) == 0 {
			delete(rl.requests, id)
		} else {
			rl.requests[id] = recent
		}
	}
}

func (rl *RateLimiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// pruned keeps the hits after cutoff. hits is in ascending order.
func pruned(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}
