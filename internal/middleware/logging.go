package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"audycon/internal/logger"
)

const requestIDKey = "requestID"

// RequestLogging logs each request with a generated request id, the
// resolved actor when a bearer token identified one, method, path, status,
// latency, and client IP. The request id is echoed in X-Request-ID so
// console-side reports can be matched to server logs.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.New().String()
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		fields := []interface{}{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		// Attribute the request when auth middleware resolved an actor.
		if actorID, exists := c.Get(userIDKey); exists {
			fields = append(fields, "actor_id", actorID)
		}
		logger.Get().Infow("request", fields...)
	}
}
