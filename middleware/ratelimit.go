package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/civicconnect/civicconnect-be/logger"
	"github.com/civicconnect/civicconnect-be/metrics"
	"github.com/civicconnect/civicconnect-be/services"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit keys limiter by client IP. Limiter failures let the request
// through.
func RateLimit(name string, limiter services.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := limiter.Allow(c, c.ClientIP())
		if err != nil {
			logger.FromGin(c).Warn("rate limiter unavailable", zap.String("limiter", name), zap.Error(err))
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		if !decision.Allowed {
			metrics.RecordRateLimitRejection(name)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
			util.HandleHTTPErrorRes(c, util.NewHTTPError(http.StatusTooManyRequests, util.CodeRateLimited, "too many requests, try again later"))
			return
		}
		c.Next()
	}
}
