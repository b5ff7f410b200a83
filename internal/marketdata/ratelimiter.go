package marketdata

import (
	"math"
	"sync"
	"time"
)

// window tracks a single provider's sliding-one-hour request window,
// grounded on the Manager-of-per-key-state idiom in the teacher's
// internal/net/ratelimit/limiter.go, but counting requests in a fixed
// one-hour window instead of a token bucket: spec.md §4.4's
// can_request/record_request/reset contract cannot be expressed by
// golang.org/x/time/rate's continuous refill model.
type window struct {
	start time.Time
	count int
}

// RateLimiter is a per-provider sliding-window-of-one-hour request counter
// (spec.md §4.4), exclusively owned by one Service instance.
type RateLimiter struct {
	mu       sync.Mutex
	windows  map[string]window
	now      func() time.Time
	windowLen time.Duration
}

// NewRateLimiter constructs a rate limiter using one-hour windows.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		windows:   make(map[string]window),
		now:       time.Now,
		windowLen: time.Hour,
	}
}

// CanRequest reports whether provider `name` may issue another request
// given `limit` requests per hour. limit=+Inf always allows.
func (r *RateLimiter) CanRequest(name string, limit float64) bool {
	if math.IsInf(limit, 1) {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.windows[name]
	if !ok || r.now().Sub(w.start) >= r.windowLen {
		return true
	}
	return float64(w.count) < limit
}

// RecordRequest records a request against provider `name`'s window,
// starting a fresh window if none exists or the current one has expired.
func (r *RateLimiter) RecordRequest(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	w, ok := r.windows[name]
	if !ok || now.Sub(w.start) >= r.windowLen {
		r.windows[name] = window{start: now, count: 1}
		return
	}
	w.count++
	r.windows[name] = w
}

// GetRemaining returns limit-count for provider `name`, clamped at zero,
// or +Inf when limit is unbounded.
func (r *RateLimiter) GetRemaining(name string, limit float64) float64 {
	if math.IsInf(limit, 1) {
		return math.Inf(1)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.windows[name]
	if !ok || r.now().Sub(w.start) >= r.windowLen {
		return limit
	}
	remaining := limit - float64(w.count)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset clears every provider's window.
func (r *RateLimiter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.windows = make(map[string]window)
}
