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

type messageRoutes struct {
	db         appDb.MessageDatabase
	controller *controllers.MessageController
}

func AddMessageRoutes(group *gin.RouterGroup, db appDb.Database, tokens *services.TokenService, controller *controllers.MessageController) {
	routes := messageRoutes{db, controller}
	conversations := group.Group("/messages/conversations", middleware.GenAuth(db, tokens, &middleware.AuthConfig{}))
	conversations.GET("", util.HandlerWrapper(routes.getConversations, &util.HandlerOpts{}))
	conversations.POST("", util.HandlerWrapper(routes.startConversation, &util.HandlerOpts{}))
	conversations.GET("/:id/messages", util.HandlerWrapper(routes.getMessages, &util.HandlerOpts{}))
	conversations.POST("/:id/messages", util.HandlerWrapper(routes.sendMessage, &util.HandlerOpts{SuccessStatus: http.StatusCreated}))
	conversations.PUT("/:id/read", util.HandlerWrapper(routes.markRead, &util.HandlerOpts{}))
}

type startConversationReq struct {
	ParticipantId int64 `json:"participantId" binding:"required,gt=0"`
}

func (mr *messageRoutes) getConversations(c *gin.Context) (interface{}, *util.HTTPError) {
	conversations, err := mr.db.GetConversations(c, middleware.MustGetUser(c).Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return conversations, nil
}

func (mr *messageRoutes) startConversation(c *gin.Context) (interface{}, *util.HTTPError) {
	var req startConversationReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return mr.controller.StartConversation(c, middleware.MustGetUser(c), req.ParticipantId)
}

func (mr *messageRoutes) getMessages(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	page := util.ParsePaging(c)
	messages, total, httpErr := mr.controller.GetMessages(c, middleware.MustGetUser(c), id, page)
	if httpErr != nil {
		return nil, httpErr
	}
	return pageRes(messages, page, total), nil
}

func (mr *messageRoutes) sendMessage(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	var req controllers.SendMessageReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return mr.controller.SendMessage(c, middleware.MustGetUser(c), id, &req)
}

func (mr *messageRoutes) markRead(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	updated, httpErr := mr.controller.MarkRead(c, middleware.MustGetUser(c), id)
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"updated": updated}, nil
}
