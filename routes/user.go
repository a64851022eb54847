package routes

import (
	"strconv"
	"strings"

	"github.com/civicconnect/civicconnect-be/controllers"
	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/middleware"
	"github.com/civicconnect/civicconnect-be/services"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/gin-gonic/gin"
)

const (
	defaultSuggestions = 10
	maxSuggestions     = 50
)

type userRoutes struct {
	db          appDb.Database
	connections *controllers.ConnectionController
}

func AddUserRoutes(group *gin.RouterGroup, db appDb.Database, tokens *services.TokenService, connections *controllers.ConnectionController) {
	routes := userRoutes{db, connections}
	users := group.Group("/users", middleware.GenAuth(db, tokens, &middleware.AuthConfig{}))
	users.GET("/suggestions", util.HandlerWrapper(routes.getSuggestions, &util.HandlerOpts{}))
	users.PUT("/me", util.HandlerWrapper(routes.updateMe, &util.HandlerOpts{}))
	users.GET("/:id", util.HandlerWrapper(routes.getProfile, &util.HandlerOpts{}))
	users.GET("/:id/posts", util.HandlerWrapper(routes.getUserPosts, &util.HandlerOpts{}))
	users.GET("/:id/connections", util.HandlerWrapper(routes.getConnections, &util.HandlerOpts{}))
	users.POST("/:id/connect", util.HandlerWrapper(routes.connect, &util.HandlerOpts{}))
	users.DELETE("/:id/connect", util.HandlerWrapper(routes.disconnect, &util.HandlerOpts{}))
}

type updateMeReq struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=100"`
	Username *string `json:"username" binding:"omitempty,min=3,max=30"`
	Headline *string `json:"headline" binding:"omitempty,max=200"`
	Bio      *string `json:"bio" binding:"omitempty,max=2000"`
	Location *string `json:"location" binding:"omitempty,max=200"`
}

func sanitizedPtr(val *string) *string {
	if val == nil {
		return nil
	}
	sanitized := util.SanitizeText(*val)
	return &sanitized
}

func (ur *userRoutes) updateMe(c *gin.Context) (interface{}, *util.HTTPError) {
	var req updateMeReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	if req.Username != nil && !util.IsValidHandle(*req.Username) {
		return nil, util.BadRequest("username may only contain letters, digits and underscores")
	}
	user := middleware.MustGetUser(c)
	update := &appDb.UpdateUser{
		Username: req.Username,
		Name:     sanitizedPtr(req.Name),
		Headline: sanitizedPtr(req.Headline),
		Bio:      sanitizedPtr(req.Bio),
		Location: sanitizedPtr(req.Location),
	}
	if !update.IsEmpty() {
		if err := ur.db.UpdateUser(c, user.Id, update); err != nil {
			if appDb.IsDupKeyErr(err) {
				return nil, util.Conflict("username is already taken")
			}
			return nil, util.BuildDbHTTPErr(err)
		}
	}
	return ur.profile(c, user.Id)
}

func (ur *userRoutes) profile(c *gin.Context, id int64) (interface{}, *util.HTTPError) {
	viewer := middleware.MustGetUser(c)
	profile, err := ur.db.GetProfile(c, id, viewer.Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if profile == nil || (profile.IsBanned && !viewer.IsAdmin()) {
		return nil, util.NotFound("user")
	}
	profile.User = profile.User.MakeDisplayableFor(viewer)
	return profile, nil
}

func (ur *userRoutes) getProfile(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	return ur.profile(c, id)
}

func (ur *userRoutes) getUserPosts(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	page := util.ParsePaging(c)
	posts, err := ur.db.GetPosts(c, &appDb.PostsListQuery{
		PostQueryOpts: &appDb.PostQueryOpts{ReactionsOf: middleware.GetViewerId(c)},
		AuthorIds:     []int64{id},
		Limit:         page.Limit,
		Offset:        page.Offset(),
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	total, err := ur.db.CountPostsByAuthor(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return pageRes(posts, page, total), nil
}

func (ur *userRoutes) getConnections(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	page := util.ParsePaging(c)
	connections, total, err := ur.db.GetConnections(c, id, page)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return pageRes(connections, page, total), nil
}

func (ur *userRoutes) getSuggestions(c *gin.Context) (interface{}, *util.HTTPError) {
	limit, err := strconv.Atoi(strings.TrimSpace(c.DefaultQuery("limit", strconv.Itoa(defaultSuggestions))))
	if err != nil || limit < 1 {
		limit = defaultSuggestions
	}
	if limit > maxSuggestions {
		limit = maxSuggestions
	}
	suggestions, err := ur.db.GetSuggestions(c, middleware.MustGetUser(c).Id, limit)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return suggestions, nil
}

func (ur *userRoutes) connect(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	if httpErr := ur.connections.Connect(c, middleware.MustGetUser(c), id); httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"connected": true}, nil
}

func (ur *userRoutes) disconnect(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	if httpErr := ur.connections.Disconnect(c, middleware.MustGetUser(c), id); httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"connected": false}, nil
}
