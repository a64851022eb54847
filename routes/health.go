package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/civicconnect/civicconnect-be/util"
	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type healthRoutes struct {
	db Pinger
}

func AddHealthCheckRoutes(group *gin.RouterGroup, db Pinger) {
	routes := healthRoutes{db}
	health := group.Group("/health")
	health.GET("", util.HandlerWrapper(routes.aliveCheck, &util.HandlerOpts{}))
}

func (hr *healthRoutes) aliveCheck(c *gin.Context) (interface{}, *util.HTTPError) {
	ctx, cancel := context.WithTimeout(c, 2*time.Second)
	defer cancel()
	if err := hr.db.Ping(ctx); err != nil {
		return nil, &util.HTTPError{
			Status:  http.StatusServiceUnavailable,
			Code:    util.CodeInternal,
			Message: "database unavailable",
			Cause:   err,
		}
	}
	return gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
	}, nil
}
