package logger

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey contextKey = "logger"
	GinKey               = "logger"
)

func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return Get()
	}
	if c, ok := ctx.(*gin.Context); ok {
		return FromGin(c)
	}
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return Get()
}

func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromGin returns the request-scoped logger set by the request id middleware.
func FromGin(c *gin.Context) *zap.Logger {
	if c == nil {
		return Get()
	}
	if l, ok := c.Get(GinKey); ok {
		if zl, ok := l.(*zap.Logger); ok {
			return zl
		}
	}
	return Get()
}
