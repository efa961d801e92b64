package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"smartspend/internal/logger"
)

// RequestIDKey holds the request's correlation id in the Gin context.
const RequestIDKey = "requestID"

const requestIDHeader = "X-Request-ID"

// RequestLogging tags each request with a correlation id and writes one log
// line when it completes. A UUID supplied by the caller in X-Request-ID is
// kept so a client can trace its own calls. Server errors log at error level
// and client errors at warn.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"request_id", requestID,
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if userID := c.GetString(UserIDKey); userID != "" {
			fields = append(fields, "user_id", userID)
		}
		if code := errorCode(c); code != "" {
			fields = append(fields, "error_code", code)
		}

		log := logger.Get()
		switch {
		case status >= 500:
			log.Errorw("request", fields...)
		case status >= 400:
			log.Warnw("request", fields...)
		default:
			log.Infow("request", fields...)
		}
	}
}

// RequestID returns the correlation id assigned by RequestLogging, or "" when
// the middleware did not run.
func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
