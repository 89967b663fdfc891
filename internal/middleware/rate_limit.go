package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/bharat-ai/bharatai/internal/config"
)

type rateWindow struct {
	count   int
	resetAt time.Time
}

// RateLimiter enforces a fixed-window per-user request limit.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	limit   int
	window  time.Duration
}

func NewRateLimiter(limit int) *RateLimiter {
	if limit <= 0 {
		limit = config.RateLimitPerMinute
	}
	return &RateLimiter{
		windows: make(map[string]*rateWindow),
		limit:   limit,
		window:  time.Minute,
	}
}

// Allow counts one request for key and reports whether it is within the
// limit.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &rateWindow{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	w.count++
	return w.count <= l.limit
}

// RateLimit rejects requests over the per-user limit. It runs after
// UserLoader so the key is the authenticated user id.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r.Context())
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}
			if !limiter.Allow(user.ID) {
				http.Error(w, `{"error":"Too many requests"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
