package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

// RequestLogger tags every request with an id and logs its outcome
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		if status >= 500 {
			log.Printf("[RequestLogger] ERROR %s %s -> %d (%s) id=%s errors=%v",
				c.Request.Method, c.FullPath(), status, time.Since(start), requestID, c.Errors.ByType(gin.ErrorTypePrivate))
			return
		}
		log.Printf("[RequestLogger] %s %s -> %d (%s) id=%s",
			c.Request.Method, c.FullPath(), status, time.Since(start), requestID)
	}
}
