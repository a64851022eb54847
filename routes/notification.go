package routes

import (
	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/middleware"
	"github.com/civicconnect/civicconnect-be/services"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/gin-gonic/gin"
)

type notificationRoutes struct {
	db appDb.NotificationDatabase
}

func AddNotificationRoutes(group *gin.RouterGroup, db appDb.Database, tokens *services.TokenService) {
	routes := notificationRoutes{db}
	notifications := group.Group("/notifications", middleware.GenAuth(db, tokens, &middleware.AuthConfig{}))
	notifications.GET("", util.HandlerWrapper(routes.getNotifications, &util.HandlerOpts{}))
	notifications.GET("/unread-count", util.HandlerWrapper(routes.getUnreadCount, &util.HandlerOpts{}))
	notifications.PUT("/read-all", util.HandlerWrapper(routes.markAllRead, &util.HandlerOpts{}))
	notifications.PUT("/:id/read", util.HandlerWrapper(routes.markRead, &util.HandlerOpts{}))
	notifications.DELETE("/:id", util.HandlerWrapper(routes.deleteNotification, &util.HandlerOpts{}))
}

func (nr *notificationRoutes) getNotifications(c *gin.Context) (interface{}, *util.HTTPError) {
	page := util.ParsePaging(c)
	notifications, total, err := nr.db.GetNotifications(c, middleware.MustGetUser(c).Id, c.Query("unreadOnly") == "true", page)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return pageRes(notifications, page, total), nil
}

func (nr *notificationRoutes) getUnreadCount(c *gin.Context) (interface{}, *util.HTTPError) {
	count, err := nr.db.CountUnread(c, middleware.MustGetUser(c).Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"count": count}, nil
}

func (nr *notificationRoutes) markRead(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	if err := nr.db.MarkRead(c, middleware.MustGetUser(c).Id, id); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"id": id, "isRead": true}, nil
}

func (nr *notificationRoutes) markAllRead(c *gin.Context) (interface{}, *util.HTTPError) {
	updated, err := nr.db.MarkAllRead(c, middleware.MustGetUser(c).Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"updated": updated}, nil
}

func (nr *notificationRoutes) deleteNotification(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	if err := nr.db.DeleteNotification(c, middleware.MustGetUser(c).Id, id); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"id": id}, nil
}
