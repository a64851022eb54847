package middleware

import (
	"github.com/civicconnect/civicconnect-be/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-ID"
	REQUEST_ID_KEY  = "requestId"
)

// RequestID adds a unique request ID to each request and a logger carrying it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Set(REQUEST_ID_KEY, requestID)
		c.Set(logger.GinKey, logger.Get().With(zap.String("request_id", requestID)))
		c.Next()
	}
}
