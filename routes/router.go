package routes

import (
	"net/http"
	"time"

	"github.com/civicconnect/civicconnect-be/config"
	"github.com/civicconnect/civicconnect-be/controllers"
	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/middleware"
	"github.com/civicconnect/civicconnect-be/services"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the route groups share. Limiters may be nil to
// disable rate limiting.
type Deps struct {
	Config        *config.Config
	DB            appDb.Database
	Tokens        *services.TokenService
	Store         services.FileStore
	GlobalLimiter services.RateLimiter
	AuthLimiter   services.RateLimiter
	Announcements *controllers.AnnouncementController
}

func NewRouter(deps *Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.Server.FrontendOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.NoRoute(func(c *gin.Context) {
		util.HandleHTTPErrorRes(c, util.NotFound("route"))
	})

	AddHealthCheckRoutes(&r.RouterGroup, deps.DB)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if local, ok := deps.Store.(*services.LocalFileStore); ok {
		r.StaticFS(services.UploadsRoute, http.Dir(local.Dir()))
	}

	api := r.Group("/api")
	if deps.GlobalLimiter != nil {
		api.Use(middleware.RateLimit("global", deps.GlobalLimiter))
	}

	notifier := controllers.NewNotifier(deps.DB)
	AddAuthRoutes(api, deps.DB, deps.Tokens, deps.AuthLimiter)
	AddUserRoutes(api, deps.DB, deps.Tokens, controllers.NewConnectionController(deps.DB, notifier))
	posts := controllers.NewPostController(deps.DB, notifier)
	AddPostRoutes(api, deps.DB, deps.Tokens, posts)
	listings := controllers.NewListingController(deps.DB, notifier)
	AddSchemeRoutes(api, deps.DB, deps.Tokens, listings)
	AddJobRoutes(api, deps.DB, deps.Tokens, listings)
	AddEventRoutes(api, deps.DB, deps.Tokens, listings)
	AddNotificationRoutes(api, deps.DB, deps.Tokens)
	AddMessageRoutes(api, deps.DB, deps.Tokens, controllers.NewMessageController(deps.DB, notifier))
	AddSearchRoutes(api, deps.DB, deps.Tokens)
	AddUploadRoutes(api, deps.DB, deps.Tokens,
		controllers.NewUploadController(deps.DB, deps.Store, deps.Config.Storage.MaxUploadBytes))
	reports := controllers.NewReportController(deps.DB)
	AddReportRoutes(api, deps.DB, deps.Tokens, reports)
	AddAnnouncementRoutes(api, deps.DB, deps.Tokens, deps.Announcements)
	AddAdminRoutes(api, deps.DB, deps.Tokens, &adminControllers{
		users:   controllers.NewAdminController(deps.DB),
		posts:   posts,
		reports: reports,
	})
	return r
}

func bind(c *gin.Context, req interface{}) *util.HTTPError {
	if err := c.ShouldBindJSON(req); err != nil {
		return util.BuildJSONBindHTTPErr(err)
	}
	return nil
}

func paramId(c *gin.Context, name string) (int64, *util.HTTPError) {
	return util.ParseId(c.Param(name))
}

func pageRes(items interface{}, page appDb.Page, total int64) *util.PageRes {
	return &util.PageRes{Items: items, Page: page.Page, Limit: page.Limit, Total: total}
}
