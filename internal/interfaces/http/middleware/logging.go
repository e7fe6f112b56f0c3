package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/boxdesk/boxdesk/internal/shared/constants"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

// CustomLogger writes one access line per request, tagged with the billing
// scope once the scope middleware has resolved it.
func CustomLogger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", c.Writer.Status(),
			"latency", latency,
			"client_ip", c.ClientIP(),
			"body_size", c.Writer.Size(),
		}

		if requestID := c.GetString(constants.ContextKeyRequestID); requestID != "" {
			args = append(args, "request_id", requestID)
		}
		if actorID, exists := c.Get(constants.ContextKeyActorID); exists {
			args = append(args, "actor_id", actorID)
		}
		if scope, ok := c.Get(constants.ContextKeyScope); ok {
			if s, ok := scope.(fmt.Stringer); ok {
				args = append(args, "scope", s.String())
			}
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			log.Errorw("request failed", args...)
		case status >= 400:
			log.Warnw("request rejected", args...)
		default:
			log.Debugw("request served", args...)
		}
	}
}
