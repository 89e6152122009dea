package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/jsamuelsen/quote-oasis/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-oasis/internal/platform/logging"
)

// limiterIdleTTL is how long an unused per-client limiter is kept.
const limiterIdleTTL = 10 * time.Minute

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int

	// KeyFunc identifies the client. Defaults to gin's ClientIP.
	KeyFunc func(*gin.Context) string
}

// RateLimit returns middleware that throttles each client with its own
// token bucket. Rejected requests get 429 with the error envelope.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}

	limiters := cache.New(limiterIdleTTL, limiterIdleTTL)
	limit := rate.Limit(cfg.RequestsPerSecond)

	return func(c *gin.Context) {
		key := keyFunc(c)

		var limiter *rate.Limiter
		if v, ok := limiters.Get(key); ok {
			limiter = v.(*rate.Limiter)
		} else {
			limiter = rate.NewLimiter(limit, cfg.Burst)
			if err := limiters.Add(key, limiter, cache.DefaultExpiration); err != nil {
				// Lost the race; use the stored one.
				if v, ok := limiters.Get(key); ok {
					limiter = v.(*rate.Limiter)
				}
			}
		}
		limiters.SetDefault(key, limiter)

		if !limiter.Allow() {
			logging.FromContext(c.Request.Context()).Warn("rate limit exceeded",
				slog.String("client", key),
				slog.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", "1")
			dto.AbortWithErrorCode(c, dto.ErrorCodeRateLimited, "too many requests")
			return
		}

		c.Next()
	}
}
