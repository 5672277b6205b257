package middleware

import (
	"net/http"
	"sync"
	"time"

	pkgerrors "mindmapx/pkg/errors"
)

// SlidingWindowLimiter allows at most limit requests per key in any window
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	windows    map[string][]time.Time
	limit      int
	windowSize time.Duration
	now        func() time.Time
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter
func NewSlidingWindowLimiter(limit int, windowSize time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		windows:    make(map[string][]time.Time),
		limit:      limit,
		windowSize: windowSize,
		now:        time.Now,
	}
}

// Allow records a request for key and reports whether it is within the limit
func (l *SlidingWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.windowSize)

	// Remove old requests outside the window
	requests := l.windows[key]
	valid := requests[:0]
	for _, t := range requests {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= l.limit {
		l.windows[key] = valid
		return false
	}
	l.windows[key] = append(valid, now)
	return true
}

// RateLimit rejects requests over the per-client limit with 429. Clients are
// keyed by RemoteAddr, so RealIP must run first.
func RateLimit(limiter *SlidingWindowLimiter, errorHandler *pkgerrors.ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow("ip:" + r.RemoteAddr) {
				w.Header().Set("Retry-After", "60")
				errorHandler.HandleStatus(w, r, http.StatusTooManyRequests, "too many sessions created, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
