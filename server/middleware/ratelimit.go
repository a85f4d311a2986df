package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/bg/auth"
	apperrors "github.com/kbukum/bg/errors"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// RequestsPerMinute is the maximum number of requests allowed per minute per key.
	RequestsPerMinute int
	// KeyFunc extracts the rate limit key from a request. Defaults to PrincipalKey.
	KeyFunc func(*gin.Context) string
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// RateLimit returns a Gin middleware that applies per-key sliding-window rate limiting.
// It must run after Auth so that callers are keyed by principal.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = PrincipalKey
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	rl := &rateLimiter{
		requests: make(map[string][]time.Time),
		limit:    cfg.RequestsPerMinute,
		now:      cfg.Now,
	}

	return func(c *gin.Context) {
		key := cfg.KeyFunc(c)
		if !rl.allow(key) {
			appErr := apperrors.RateLimited(cfg.RequestsPerMinute)
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
			return
		}
		c.Next()
	}
}

// PrincipalKey keys by authenticated subject, falling back to the client IP.
func PrincipalKey(c *gin.Context) string {
	if p, ok := auth.PrincipalFrom(c.Request.Context()); ok && p.Method != auth.MethodAnonymous {
		return p.Method + ":" + p.Subject
	}
	return "ip:" + c.ClientIP()
}

type rateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	now      func() time.Time
	calls    int
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-time.Minute)

	rl.calls++
	if rl.calls%1000 == 0 {
		rl.sweep(cutoff)
	}

	valid := filterByTime(rl.requests[key], cutoff)
	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}
	rl.requests[key] = append(valid, now)
	return true
}

// sweep drops keys with no requests in the window. Caller holds mu.
func (rl *rateLimiter) sweep(cutoff time.Time) {
	for key, times := range rl.requests {
		valid := filterByTime(times, cutoff)
		if len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

func filterByTime(times []time.Time, cutoff time.Time) []time.Time {
	var result []time.Time
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}
