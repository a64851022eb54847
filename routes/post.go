package routes

import (
	"errors"
	"net/http"

	"github.com/civicconnect/civicconnect-be/app"
	"github.com/civicconnect/civicconnect-be/controllers"
	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/middleware"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/services"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/gin-gonic/gin"
)

type postRoutes struct {
	db         appDb.Database
	controller *controllers.PostController
}

func AddPostRoutes(group *gin.RouterGroup, db appDb.Database, tokens *services.TokenService, controller *controllers.PostController) {
	routes := postRoutes{db, controller}
	posts := group.Group("/posts", middleware.GenAuth(db, tokens, &middleware.AuthConfig{}))
	posts.GET("", util.HandlerWrapper(routes.getFeed, &util.HandlerOpts{}))
	posts.POST("", util.HandlerWrapper(routes.createPost, &util.HandlerOpts{SuccessStatus: http.StatusCreated}))
	posts.GET("/:id", util.HandlerWrapper(routes.getPostById, &util.HandlerOpts{}))
	posts.PUT("/:id", util.HandlerWrapper(routes.updatePost, &util.HandlerOpts{}))
	posts.DELETE("/:id", util.HandlerWrapper(routes.deletePost, &util.HandlerOpts{}))
	posts.POST("/:id/reactions", util.HandlerWrapper(routes.react, &util.HandlerOpts{}))
	posts.DELETE("/:id/reactions", util.HandlerWrapper(routes.unreact, &util.HandlerOpts{}))
	posts.GET("/:id/comments", util.HandlerWrapper(routes.getComments, &util.HandlerOpts{}))
	posts.POST("/:id/comments", util.HandlerWrapper(routes.createComment, &util.HandlerOpts{SuccessStatus: http.StatusCreated}))
	posts.DELETE("/:id/comments/:commentId", util.HandlerWrapper(routes.deleteComment, &util.HandlerOpts{}))
}

func (pr *postRoutes) getFeed(c *gin.Context) (interface{}, *util.HTTPError) {
	scope := app.FeedScope(c.DefaultQuery("scope", string(app.FeedScopeAll)))
	if !scope.Valid() {
		return nil, util.BadRequest("scope must be all or network")
	}
	page, err := app.GetFeedForUser(c, pr.db, middleware.MustGetUser(c), scope, c.Query("cursor"), util.ParsePaging(c).Limit)
	if err != nil {
		if errors.Is(err, app.ErrMalformedCursor) {
			return nil, util.BadRequest(err.Error())
		}
		return nil, util.BuildDbHTTPErr(err)
	}
	return page, nil
}

func (pr *postRoutes) createPost(c *gin.Context) (interface{}, *util.HTTPError) {
	var req controllers.CreatePostReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return pr.controller.CreatePost(c, middleware.MustGetUser(c), &req)
}

func (pr *postRoutes) getPostById(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	return pr.controller.GetPost(c, middleware.MustGetUser(c), id)
}

func (pr *postRoutes) updatePost(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	var req controllers.UpdatePostReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return pr.controller.UpdatePost(c, middleware.MustGetUser(c), id, &req)
}

func (pr *postRoutes) deletePost(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	if httpErr := pr.controller.DeletePost(c, middleware.MustGetUser(c), id); httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"id": id}, nil
}

type reactReq struct {
	Type model.ReactionType `json:"type" binding:"required"`
}

func (pr *postRoutes) react(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	var req reactReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return pr.controller.React(c, middleware.MustGetUser(c), id, req.Type)
}

func (pr *postRoutes) unreact(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	return pr.controller.Unreact(c, middleware.MustGetUser(c), id)
}

func (pr *postRoutes) getComments(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	return pr.controller.GetComments(c, middleware.MustGetUser(c), id)
}

func (pr *postRoutes) createComment(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	var req controllers.CreateCommentReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return pr.controller.CreateComment(c, middleware.MustGetUser(c), id, &req)
}

func (pr *postRoutes) deleteComment(c *gin.Context) (interface{}, *util.HTTPError) {
	postId, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	commentId, httpErr := paramId(c, "commentId")
	if httpErr != nil {
		return nil, httpErr
	}
	deleted, httpErr := pr.controller.DeleteComment(c, middleware.MustGetUser(c), postId, commentId)
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"id": commentId, "deleted": deleted}, nil
}
