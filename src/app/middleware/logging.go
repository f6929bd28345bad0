package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"catalog/src/infra/logger"
)

// Logging emits one record per request once the handler chain finished.
// The level follows the status code: 5xx errors, 4xx warnings, the rest info.
// Errors attached with c.Error are included.
func Logging(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if query := c.Request.URL.RawQuery; query != "" {
			path = path + "?" + query
		}

		c.Next()

		status := c.Writer.Status()
		reqLog := logger.WithRequestID(log, GetRequestID(c))
		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"bytes", c.Writer.Size(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			reqLog.Error("request failed", attrs...)
		case status >= 400:
			reqLog.Warn("request rejected", attrs...)
		default:
			reqLog.Info("request completed", attrs...)
		}
	}
}
