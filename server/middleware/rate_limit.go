// Package middleware holds the echo middlewares shared by the API routers.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	// limiterIdleTTL 閒置多久後回收該 key 的限流器
	limiterIdleTTL = 10 * time.Minute
	// limiterSweepInterval 兩次回收掃描的最短間隔
	limiterSweepInterval = 5 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limits requests per client key. The server is single-user, so
// the limiter mainly protects the search endpoints against a runaway client
// polling in a loop. Idle entries are swept so the key map cannot grow
// without bound.
type RateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	limits    map[string]*limiterEntry
	lastSweep time.Time
}

// NewRateLimiter creates a limiter allowing perSecond requests with the
// given burst per client key.
func NewRateLimiter(perSecond int, burst int) *RateLimiter {
	return &RateLimiter{
		limit:     rate.Every(time.Second / time.Duration(perSecond)),
		burst:     burst,
		limits:    make(map[string]*limiterEntry),
		lastSweep: time.Now(),
	}
}

// getLimiter gets or creates a limiter for the given key.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.sweepLocked(now)

	if entry, ok := rl.limits[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}
	entry := &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst), lastSeen: now}
	rl.limits[key] = entry
	return entry.limiter
}

// sweepLocked drops entries idle past the TTL, at most once per sweep
// interval. Caller must hold the mutex.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.lastSweep) < limiterSweepInterval {
		return
	}
	rl.lastSweep = now
	for key, entry := range rl.limits {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(rl.limits, key)
		}
	}
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Middleware rejects over-limit requests with 429, keyed by client IP.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "rate limit exceeded",
				})
			}
			return next(c)
		}
	}
}
