package middleware

import (
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sirosfoundation/go-site-router/pkg/config"
)

// RateLimiter manages per-client rate limiting
type RateLimiter struct {
	config config.RateLimitConfig
	logger *zap.Logger

	mu      sync.Mutex
	clients map[string]*clientLimiter

	// cleanupInterval for removing old limiters
	cleanupInterval time.Duration
	lastCleanup     time.Time
}

// clientLimiter holds the rate limiter for a single client
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		config:          cfg,
		logger:          logger.Named("ratelimit"),
		clients:         make(map[string]*clientLimiter),
		cleanupInterval: 10 * time.Minute,
		lastCleanup:     time.Now(),
	}
}

// getLimiter returns the rate limiter for a client, creating it if needed
func (r *RateLimiter) getLimiter(clientIP string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Cleanup old limiters periodically
	if time.Since(r.lastCleanup) > r.cleanupInterval {
		r.cleanup()
	}

	if cl, exists := r.clients[clientIP]; exists {
		cl.lastSeen = time.Now()
		return cl.limiter
	}

	// Use ceiling to avoid truncation for low RPM values
	perSecond := float64(r.config.RequestsPerMinute) / 60.0
	burst := int(math.Ceil(perSecond * float64(r.config.BurstMultiplier)))
	if burst < 1 {
		burst = 1
	}

	cl := &clientLimiter{
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
		lastSeen: time.Now(),
	}
	r.clients[clientIP] = cl
	return cl.limiter
}

// cleanup removes limiters that haven't been used in a while
func (r *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-30 * time.Minute)
	for ip, cl := range r.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(r.clients, ip)
		}
	}
	r.lastCleanup = time.Now()
}

// Allow checks if a request from clientIP is allowed
func (r *RateLimiter) Allow(clientIP string) bool {
	if !r.config.Enabled {
		return true
	}
	return r.getLimiter(clientIP).Allow()
}

// RateLimitMiddleware returns a Gin middleware that applies rate limiting
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if !rl.Allow(clientIP) {
			rl.logger.Debug("Rate limit exceeded", zap.String("client_ip", clientIP))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests",
			})
			return
		}

		c.Next()
	}
}
