package routes

import (
	"net/http"

	"github.com/civicconnect/civicconnect-be/controllers"
	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/middleware"
	"github.com/civicconnect/civicconnect-be/services"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/gin-gonic/gin"
)

type reportRoutes struct {
	controller *controllers.ReportController
}

func AddReportRoutes(group *gin.RouterGroup, db appDb.UserDatabase, tokens *services.TokenService, controller *controllers.ReportController) {
	routes := reportRoutes{controller}
	reports := group.Group("/reports", middleware.GenAuth(db, tokens, &middleware.AuthConfig{}))
	reports.POST("", util.HandlerWrapper(routes.createReport, &util.HandlerOpts{SuccessStatus: http.StatusCreated}))
}

func (rr *reportRoutes) createReport(c *gin.Context) (interface{}, *util.HTTPError) {
	var req controllers.CreateReportReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return rr.controller.CreateReport(c, middleware.MustGetUser(c), &req)
}
