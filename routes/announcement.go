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

type announcementRoutes struct {
	controller *controllers.AnnouncementController
}

// AddAnnouncementRoutes serves the public banner endpoints without a session;
// writes need an admin.
func AddAnnouncementRoutes(group *gin.RouterGroup, db appDb.UserDatabase, tokens *services.TokenService, controller *controllers.AnnouncementController) {
	routes := announcementRoutes{controller}
	announcements := group.Group("/announcements")
	announcements.GET("", util.HandlerWrapper(routes.getActive, &util.HandlerOpts{}))
	announcements.GET("/urgent", util.HandlerWrapper(routes.getUrgent, &util.HandlerOpts{}))

	admin := announcements.Group("", middleware.GenAuth(db, tokens, &middleware.AuthConfig{}), middleware.RequireAdmin())
	admin.POST("", util.HandlerWrapper(routes.createAnnouncement, &util.HandlerOpts{SuccessStatus: http.StatusCreated}))
	admin.PUT("/:id", util.HandlerWrapper(routes.updateAnnouncement, &util.HandlerOpts{}))
	admin.DELETE("/:id", util.HandlerWrapper(routes.deleteAnnouncement, &util.HandlerOpts{}))
}

func (ar *announcementRoutes) getActive(c *gin.Context) (interface{}, *util.HTTPError) {
	return ar.controller.GetActive(c)
}

func (ar *announcementRoutes) getUrgent(c *gin.Context) (interface{}, *util.HTTPError) {
	return ar.controller.GetUrgent(), nil
}

func (ar *announcementRoutes) createAnnouncement(c *gin.Context) (interface{}, *util.HTTPError) {
	var req controllers.AnnouncementReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return ar.controller.CreateAnnouncement(c, middleware.MustGetUser(c), &req)
}

func (ar *announcementRoutes) updateAnnouncement(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	var req controllers.AnnouncementReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return ar.controller.UpdateAnnouncement(c, id, &req)
}

func (ar *announcementRoutes) deleteAnnouncement(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	if httpErr := ar.controller.DeleteAnnouncement(c, id); httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"id": id}, nil
}
