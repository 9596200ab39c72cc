package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is an in-memory fixed-window limiter. Each key gets a bucket
// of tokens that refills when its window elapses. State lives in the
// process, so limits apply per server instance.
type RateLimiter struct {
	mu           sync.Mutex
	buckets      map[string]*bucket
	limit        int
	window       time.Duration
	evictionTick time.Duration
}

type bucket struct {
	tokens      int
	windowStart time.Time
}

// NewRateLimiter allows at most limit requests per key per window and
// starts a background goroutine that evicts idle buckets.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:      make(map[string]*bucket),
		limit:        limit,
		window:       window,
		evictionTick: window * 2,
	}
	go rl.evictStale()
	return rl
}

// evictStale drops buckets that have been idle for two full windows so
// one-off clients do not accumulate forever.
func (rl *RateLimiter) evictStale() {
	ticker := time.NewTicker(rl.evictionTick)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, b := range rl.buckets {
			if now.Sub(b.windowStart) > rl.window*2 {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow consumes a token for key, reporting whether the request may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, exists := rl.buckets[key]

	if !exists {
		rl.buckets[key] = &bucket{
			tokens:      rl.limit - 1,
			windowStart: now,
		}
		return true
	}

	if now.Sub(b.windowStart) >= rl.window {
		b.tokens = rl.limit - 1
		b.windowStart = now
		return true
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	return false
}

// Remaining reports how many tokens key has left in its current window.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[key]
	if !exists {
		return rl.limit
	}

	if time.Since(b.windowStart) >= rl.window {
		return rl.limit
	}

	return b.tokens
}

func rejectRateLimited(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "RATE_LIMIT_EXCEEDED",
			"message": "Too many requests. Please try again later.",
		},
	})
}

// RateLimit throttles by client IP, or by employee plus IP when the
// request carries the employee header. That keeps one busy clerk from
// exhausting the budget of everyone behind the same store NAT.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if employeeID := c.GetHeader(EmployeeIDHeader); employeeID != "" {
			key = employeeID + ":" + key
		}

		if !limiter.Allow(key) {
			rejectRateLimited(c)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))

		c.Next()
	}
}

// RateLimitByKey throttles using a caller-supplied key extractor, for
// routes where IP plus employee is not the right granularity.
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(keyFunc(c)) {
			rejectRateLimited(c)
			return
		}

		c.Next()
	}
}
