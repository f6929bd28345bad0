// Package middleware contains HTTP middleware for the Gin router.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is the HTTP header used for request tracing.
const RequestIDHeader = "X-Request-ID"

// RequestIDKey is the context key for storing the request ID.
const RequestIDKey = "request_id"

// maxRequestIDLength caps client-supplied IDs before they reach logs.
const maxRequestIDLength = 128

// RequestID is a middleware that injects a unique request ID into each request.
// A client-supplied X-Request-ID header is reused when it is at most 128
// characters; otherwise a new UUID is generated.
//
// The request ID is stored in the Gin context (see GetRequestID) and echoed
// in the response headers.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		// Store in context for later use (logging, error responses, etc.)
		c.Set(RequestIDKey, requestID)

		// Add to response headers for client-side tracing
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID retrieves the request ID from the Gin context.
// Returns empty string if not set.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		if requestID, ok := id.(string); ok {
			return requestID
		}
	}
	return ""
}

