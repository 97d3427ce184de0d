package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"wavy/internal/metrics"
)

// RateLimitConfig configures the per-client token bucket
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	MaxClients        int     `mapstructure:"max_clients"`
}

// DefaultRateLimitConfig returns the default configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 20,
		Burst:             40,
		MaxClients:        10000,
	}
}

// RateLimiter keeps one token bucket per client IP. The least recently seen
// clients are forgotten once MaxClients is reached.
func RateLimiter(config RateLimitConfig) (gin.HandlerFunc, error) {
	if !config.Enabled || config.RequestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }, nil
	}
	if config.Burst < 1 {
		config.Burst = 1
	}
	if config.MaxClients < 1 {
		config.MaxClients = DefaultRateLimitConfig().MaxClients
	}

	limiters, err := lru.New[string, *rate.Limiter](config.MaxClients)
	if err != nil {
		return nil, err
	}
	limit := rate.Limit(config.RequestsPerSecond)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter, ok := limiters.Get(ip)
		if !ok {
			limiter = rate.NewLimiter(limit, config.Burst)
			// another request may have raced us; keep whichever landed first
			if prev, found, _ := limiters.PeekOrAdd(ip, limiter); found {
				limiter = prev
			}
		}

		if !limiter.Allow() {
			metrics.RateLimited.Inc()
			c.Header("Retry-After", strconv.Itoa(retryAfter(limit)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}, nil
}

func retryAfter(limit rate.Limit) int {
	if limit >= 1 {
		return 1
	}
	return int(1/float64(limit)) + 1
}
