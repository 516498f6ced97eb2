package middleware

import (
	"time" // Request latency

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// RequestLogger logs one structured line per request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":    c.Request.Method,  // HTTP method
			"path":      c.FullPath(),      // Route pattern, not the raw URL
			"status":    c.Writer.Status(), // Response status
			"latency":   time.Since(start), // Handler duration
			"client_ip": c.ClientIP(),      // Caller address
			"bytes":     c.Writer.Size(),   // Response size
		}
		if userID, ok := UserID(c); ok {
			fields["user_id"] = userID
		}
		entry := logrus.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request served")
		}
	}
}
