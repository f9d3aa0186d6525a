package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a per-client-IP token bucket.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     map[string]float64
	lastRefill map[string]time.Time
	rate       float64 // tokens per second
	bucketSize float64
}

func NewRateLimiter(rate float64, bucketSize float64) *RateLimiter {
	return &RateLimiter{
		tokens:     make(map[string]float64),
		lastRefill: make(map[string]time.Time),
		rate:       rate,
		bucketSize: bucketSize,
	}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		rl.mu.Lock()
		now := time.Now()

		if _, exists := rl.lastRefill[ip]; !exists {
			rl.tokens[ip] = rl.bucketSize
			rl.lastRefill[ip] = now
		}

		elapsed := now.Sub(rl.lastRefill[ip])
		rl.tokens[ip] = minf(rl.bucketSize, rl.tokens[ip]+elapsed.Seconds()*rl.rate)
		rl.lastRefill[ip] = now

		if rl.tokens[ip] < 1 {
			rl.mu.Unlock()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		rl.tokens[ip]--
		rl.pruneLocked(now)
		rl.mu.Unlock()

		c.Next()
	}
}

// pruneLocked drops buckets idle long enough to have fully refilled, so the
// maps don't grow with every IP ever seen. Caller holds rl.mu.
func (rl *RateLimiter) pruneLocked(now time.Time) {
	if len(rl.lastRefill) < 10000 {
		return
	}
	idle := time.Duration(rl.bucketSize/rl.rate)*time.Second + time.Minute
	for ip, last := range rl.lastRefill {
		if now.Sub(last) > idle {
			delete(rl.lastRefill, ip)
			delete(rl.tokens, ip)
		}
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
