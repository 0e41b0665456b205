package ratelimit

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/qna/internal/middleware"
	"github.com/aura-webinar/qna/pkg/response"
)

// Middleware rejects requests over the limit with 429. The key is the client
// IP plus the caller's user id when known. Limiter errors let the request through.
func Middleware(limiter Limiter, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		userID := c.GetString(middleware.ContextUserID)
		if userID == "" {
			userID = "anonymous"
		}
		key := c.ClientIP() + ":" + userID
		ok, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err), zap.String("key", key))
			c.Next()
			return
		}
		if !ok {
			response.TooManyRequests(c, "Rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}
