package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Defaults for RateLimiter: up to limit requests per window and client IP.
var (
	window = time.Minute
	limit  = 60
)

// visitor is the token bucket of one client IP.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one bucket per client IP. A bucket refills completely
// within one window, so buckets idle for longer than that are dropped.
type ipLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	every     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
}

func newIPLimiter(window time.Duration, limit int) *ipLimiter {
	if limit < 1 {
		limit = 1
	}
	return &ipLimiter{
		visitors: map[string]*visitor{},
		every:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
		idle:     window,
	}
}

func (l *ipLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.idle {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.idle {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// retryAfter is the time for one token to come back, in whole seconds.
func (l *ipLimiter) retryAfter() int {
	secs := int(math.Ceil(1 / float64(l.every)))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// RateLimiter limits requests per client IP with a token bucket
// (golang.org/x/time/rate).
//
// Behavior:
//   - Each IP may burst up to `limit` requests and is refilled at
//     `limit` per `window` (default: 60 per minute).
//   - A client staying under that rate is never blocked.
//   - Exceeding it answers 429 with dto.ErrorResponse and Retry-After.
//
// Each call returns a middleware with its own buckets.
func RateLimiter() gin.HandlerFunc {
	l := newIPLimiter(window, limit)
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP(), time.Now()) {
			c.Header("Retry-After", strconv.Itoa(l.retryAfter()))
			AbortWithError(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}
