package routes

import (
	"github.com/civicconnect/civicconnect-be/controllers"
	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/middleware"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/services"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/gin-gonic/gin"
)

type adminControllers struct {
	users   *controllers.AdminController
	posts   *controllers.PostController
	reports *controllers.ReportController
}

type adminRoutes struct {
	db appDb.Database
	*adminControllers
}

func AddAdminRoutes(group *gin.RouterGroup, db appDb.Database, tokens *services.TokenService, handlers *adminControllers) {
	routes := adminRoutes{db, handlers}
	admin := group.Group("/admin", middleware.GenAuth(db, tokens, &middleware.AuthConfig{}), middleware.RequireAdmin())
	admin.GET("/stats", util.HandlerWrapper(routes.getStats, &util.HandlerOpts{}))
	admin.GET("/users", util.HandlerWrapper(routes.listUsers, &util.HandlerOpts{}))
	admin.PUT("/users/:id/role", util.HandlerWrapper(routes.setRole, &util.HandlerOpts{}))
	admin.PUT("/users/:id/ban", util.HandlerWrapper(routes.setBanned, &util.HandlerOpts{}))
	admin.DELETE("/posts/:id", util.HandlerWrapper(routes.deletePost, &util.HandlerOpts{}))
	admin.DELETE("/comments/:id", util.HandlerWrapper(routes.deleteComment, &util.HandlerOpts{}))
	admin.GET("/reports", util.HandlerWrapper(routes.getReports, &util.HandlerOpts{}))
	admin.PUT("/reports/:id", util.HandlerWrapper(routes.updateReport, &util.HandlerOpts{}))
}

func (ar *adminRoutes) getStats(c *gin.Context) (interface{}, *util.HTTPError) {
	stats, err := ar.db.GetStats(c)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return stats, nil
}

func (ar *adminRoutes) listUsers(c *gin.Context) (interface{}, *util.HTTPError) {
	page := util.ParsePaging(c)
	users, total, err := ar.db.ListUsers(c, c.Query("q"), page)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return pageRes(users, page, total), nil
}

type setRoleReq struct {
	Role model.Role `json:"role" binding:"required"`
}

func (ar *adminRoutes) setRole(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	var req setRoleReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return ar.users.SetRole(c, middleware.MustGetUser(c), id, req.Role)
}

type setBannedReq struct {
	Banned *bool `json:"banned" binding:"required"`
}

func (ar *adminRoutes) setBanned(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	var req setBannedReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return ar.users.SetBanned(c, middleware.MustGetUser(c), id, *req.Banned)
}

func (ar *adminRoutes) deletePost(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	if httpErr := ar.posts.DeletePost(c, middleware.MustGetUser(c), id); httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"id": id}, nil
}

func (ar *adminRoutes) deleteComment(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	deleted, httpErr := ar.posts.DeleteComment(c, middleware.MustGetUser(c), 0, id)
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"id": id, "deleted": deleted}, nil
}

func (ar *adminRoutes) getReports(c *gin.Context) (interface{}, *util.HTTPError) {
	page := util.ParsePaging(c)
	status := model.ReportStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		return nil, util.BadRequest("unknown report status")
	}
	reports, total, err := ar.db.GetReports(c, status, page)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return pageRes(reports, page, total), nil
}

type updateReportReq struct {
	Status model.ReportStatus `json:"status" binding:"required"`
}

func (ar *adminRoutes) updateReport(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	var req updateReportReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return ar.reports.UpdateStatus(c, middleware.MustGetUser(c), id, req.Status)
}
