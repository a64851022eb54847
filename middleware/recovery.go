package middleware

import (
	"fmt"
	"net/http"

	"github.com/civicconnect/civicconnect-be/logger"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a panic into the 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered interface{}) {
		logger.FromGin(c).Error("panic recovered",
			zap.String("path", c.Request.URL.Path),
			zap.String("panic", fmt.Sprint(recovered)),
			zap.Stack("stack"))
		util.HandleHTTPErrorRes(c, util.NewHTTPError(http.StatusInternalServerError, util.CodeInternal, "internal server error"))
	})
}
