package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joblane/platform/pkg/logger"
	"go.uber.org/zap"
)

// rateLimiter is a sliding-window counter keyed by client IP. In-process
// state is enough here: the service runs as a single instance and the
// limiter only has to blunt credential-stuffing bursts.
type rateLimiter struct {
	mu       sync.Mutex
	hits     map[string][]time.Time
	limit    int
	window   time.Duration
	lastSwep time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
	}
}

// allow must be called with mu held.
func (rl *rateLimiter) allow(ip string, now time.Time) (bool, int) {
	cutoff := now.Add(-rl.window)

	valid := rl.hits[ip][:0]
	for _, t := range rl.hits[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.hits[ip] = valid
		return false, 0
	}

	rl.hits[ip] = append(valid, now)
	return true, rl.limit - len(valid) - 1
}

// sweep drops idle IPs so the map does not grow without bound.
func (rl *rateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSwep) < rl.window {
		return
	}
	cutoff := now.Add(-rl.window)
	for ip, times := range rl.hits {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(rl.hits, ip)
		}
	}
	rl.lastSwep = now
}

// RateLimit caps requests per client IP inside a sliding window.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	limiter := newRateLimiter(limit, window)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		limiter.mu.Lock()
		limiter.sweep(now)
		ok, remaining := limiter.allow(ip, now)
		limiter.mu.Unlock()

		if !ok {
			logger.GetLogger().Warn("Rate limit exceeded",
				zap.String("client_ip", ip),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int("limit", limit),
				zap.Duration("window", window),
			)

			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"status":      "error",
				"message":     "too many requests",
				"retry_after": window.Seconds(),
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(now.Add(window).Unix(), 10))

		c.Next()
	}
}
