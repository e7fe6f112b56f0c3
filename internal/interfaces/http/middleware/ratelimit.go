package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/boxdesk/boxdesk/internal/infrastructure/ratelimit"
	"github.com/boxdesk/boxdesk/internal/shared/constants"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
	"github.com/boxdesk/boxdesk/internal/shared/utils"
)

// RateLimitMiddleware throttles authenticated callers per academy and actor.
type RateLimitMiddleware struct {
	limiter   ratelimit.RateLimiter
	perMinute int
	logger    logger.Interface
}

func NewRateLimitMiddleware(limiter ratelimit.RateLimiter, perMinute int, logger logger.Interface) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter:   limiter,
		perMinute: perMinute,
		logger:    logger,
	}
}

// LimitByActor must run after RequireAuth. Limiter failures let the request
// through so a Redis outage does not take billing down.
func (m *RateLimitMiddleware) LimitByActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetUint(constants.ContextKeyActorID)
		key := fmt.Sprintf("actor:%d:%d", c.GetUint(constants.ContextKeyTenantID), actorID)
		config := ratelimit.RateLimitConfig{
			RequestsPerMinute: m.perMinute,
			RequestsPerHour:   m.perMinute * 60,
			BurstSize:         m.perMinute,
		}

		ctx := c.Request.Context()
		allowed, err := m.limiter.Allow(ctx, key, config)
		if err != nil {
			m.logger.Warnw("rate limit check failed", "error", err, "actor_id", actorID)
			c.Next()
			return
		}

		var remaining int64
		if used, err := m.limiter.Used(ctx, key, time.Minute); err == nil && used < int64(m.perMinute) {
			remaining = int64(m.perMinute) - used
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(m.perMinute))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			m.logger.Warnw("rate limit exceeded", "actor_id", actorID)
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
