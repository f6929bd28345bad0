package middleware

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"catalog/src/app/http/response"
	"catalog/src/infra/config"
)

// RateLimit limits requests per client IP with an in-memory store.
// Requests whose path starts with one of skipPrefixes are not counted.
// Blocked requests get a 429 and the X-RateLimit-* headers.
func RateLimit(cfg config.RateLimitConfig, log *slog.Logger, skipPrefixes ...string) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: cfg.Period,
		Limit:  cfg.Requests,
	}
	limit := mgin.NewMiddleware(
		limiter.New(memory.NewStore(), rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			log.Warn("rate limit exceeded",
				"request_id", GetRequestID(c),
				"client_ip", c.ClientIP(),
				"path", c.Request.URL.Path,
			)
			response.TooManyRequests(c, GetRequestID(c))
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// Fail open on store errors.
			log.Error("rate limiter failed", "error", err)
			c.Next()
		}),
	)

	return func(c *gin.Context) {
		for _, prefix := range skipPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}
		limit(c)
	}
}
