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

type authRoutes struct {
	controller *controllers.AuthController
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func AddAuthRoutes(group *gin.RouterGroup, db appDb.UserDatabase, tokens *services.TokenService, limiter services.RateLimiter) {
	routes := authRoutes{controllers.NewAuthController(db, tokens)}
	auth := group.Group("/auth")

	limited := auth.Group("")
	if limiter != nil {
		limited.Use(middleware.RateLimit("auth", limiter))
	}
	limited.POST("/register", util.HandlerWrapper(routes.register, &util.HandlerOpts{SuccessStatus: http.StatusCreated}))
	limited.POST("/login", util.HandlerWrapper(routes.login, &util.HandlerOpts{}))
	limited.POST("/refresh", util.HandlerWrapper(routes.refresh, &util.HandlerOpts{}))

	auth.POST("/logout", util.HandlerWrapper(routes.logout, &util.HandlerOpts{}))
	auth.GET("/me", middleware.GenAuth(db, tokens, &middleware.AuthConfig{}),
		util.HandlerWrapper(routes.me, &util.HandlerOpts{}))
}

func (ar *authRoutes) register(c *gin.Context) (interface{}, *util.HTTPError) {
	var req controllers.RegisterReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return ar.controller.Register(c, &req)
}

func (ar *authRoutes) login(c *gin.Context) (interface{}, *util.HTTPError) {
	var req controllers.LoginReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return ar.controller.Login(c, &req)
}

func (ar *authRoutes) refresh(c *gin.Context) (interface{}, *util.HTTPError) {
	var req refreshReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return ar.controller.Refresh(c, req.RefreshToken)
}

func (ar *authRoutes) logout(c *gin.Context) (interface{}, *util.HTTPError) {
	var req refreshReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	if httpErr := ar.controller.Logout(c, req.RefreshToken); httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"loggedOut": true}, nil
}

func (ar *authRoutes) me(c *gin.Context) (interface{}, *util.HTTPError) {
	user := *middleware.MustGetUser(c)
	user.Avatar = util.AvatarOr(user.Avatar, user.Username)
	return &user, nil
}
