package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/marketpulse/trade-coin/backend/internal/metrics"
)

// requestMetrics records request counts and latency per route. The route
// template (":entity" rather than the concrete value) keeps label cardinality
// bounded.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path,
		).Observe(time.Since(start).Seconds())
	}
}

const (
	// Credential endpoints allow a short burst then 1 request/sec per IP.
	credentialRatePerSec = 1
	credentialBurst      = 5
)

// ipRateLimiter returns middleware limiting register/login attempts per
// client IP. Limiters are kept per IP for the process lifetime; the map is
// small enough at this scale that eviction is not worth the bookkeeping.
func ipRateLimiter() gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[ip]
		if !ok {
			l = rate.NewLimiter(credentialRatePerSec, credentialBurst)
			limiters[ip] = l
		}
		return l
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts, slow down"})
			return
		}
		c.Next()
	}
}
