package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/civicconnect/civicconnect-be/controllers"
	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/middleware"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/services"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/gin-gonic/gin"
)

type listingRoutes struct {
	db         appDb.Database
	controller *controllers.ListingController
}

func AddSchemeRoutes(group *gin.RouterGroup, db appDb.Database, tokens *services.TokenService, controller *controllers.ListingController) {
	routes := listingRoutes{db, controller}
	schemes := group.Group("/schemes", middleware.GenAuth(db, tokens, &middleware.AuthConfig{}))
	schemes.GET("", util.HandlerWrapper(routes.listSchemes, &util.HandlerOpts{}))
	schemes.GET("/:id", util.HandlerWrapper(routes.getScheme, &util.HandlerOpts{}))

	admin := schemes.Group("", middleware.RequireAdmin())
	admin.POST("", util.HandlerWrapper(routes.createScheme, &util.HandlerOpts{SuccessStatus: http.StatusCreated}))
	admin.PUT("/:id", util.HandlerWrapper(routes.updateScheme, &util.HandlerOpts{}))
	admin.DELETE("/:id", util.HandlerWrapper(routes.deleteScheme, &util.HandlerOpts{}))
}

func AddJobRoutes(group *gin.RouterGroup, db appDb.Database, tokens *services.TokenService, controller *controllers.ListingController) {
	routes := listingRoutes{db, controller}
	jobs := group.Group("/jobs", middleware.GenAuth(db, tokens, &middleware.AuthConfig{}))
	jobs.GET("", util.HandlerWrapper(routes.listJobs, &util.HandlerOpts{}))
	jobs.POST("", util.HandlerWrapper(routes.createJob, &util.HandlerOpts{SuccessStatus: http.StatusCreated}))
	jobs.GET("/:id", util.HandlerWrapper(routes.getJob, &util.HandlerOpts{}))
	jobs.PUT("/:id", util.HandlerWrapper(routes.updateJob, &util.HandlerOpts{}))
	jobs.DELETE("/:id", util.HandlerWrapper(routes.deleteJob, &util.HandlerOpts{}))
	jobs.POST("/:id/apply", util.HandlerWrapper(routes.applyToJob, &util.HandlerOpts{SuccessStatus: http.StatusCreated}))
	jobs.GET("/:id/applications", util.HandlerWrapper(routes.getApplications, &util.HandlerOpts{}))
}

func AddEventRoutes(group *gin.RouterGroup, db appDb.Database, tokens *services.TokenService, controller *controllers.ListingController) {
	routes := listingRoutes{db, controller}
	events := group.Group("/events", middleware.GenAuth(db, tokens, &middleware.AuthConfig{}))
	events.GET("", util.HandlerWrapper(routes.listEvents, &util.HandlerOpts{}))
	events.POST("", util.HandlerWrapper(routes.createEvent, &util.HandlerOpts{SuccessStatus: http.StatusCreated}))
	events.GET("/:id", util.HandlerWrapper(routes.getEvent, &util.HandlerOpts{}))
	events.PUT("/:id", util.HandlerWrapper(routes.updateEvent, &util.HandlerOpts{}))
	events.DELETE("/:id", util.HandlerWrapper(routes.deleteEvent, &util.HandlerOpts{}))
	events.POST("/:id/rsvp", util.HandlerWrapper(routes.attend, &util.HandlerOpts{}))
	events.DELETE("/:id/rsvp", util.HandlerWrapper(routes.unattend, &util.HandlerOpts{}))
}

func (lr *listingRoutes) listSchemes(c *gin.Context) (interface{}, *util.HTTPError) {
	page := util.ParsePaging(c)
	schemes, total, err := lr.db.ListSchemes(c, &appDb.ListingQuery{
		Q:        c.Query("q"),
		Category: c.Query("category"),
		Page:     page,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return pageRes(schemes, page, total), nil
}

func (lr *listingRoutes) getScheme(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	scheme, err := lr.db.GetScheme(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if scheme == nil {
		return nil, util.NotFound("scheme")
	}
	return scheme, nil
}

func (lr *listingRoutes) createScheme(c *gin.Context) (interface{}, *util.HTTPError) {
	var req controllers.SchemeReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return lr.controller.CreateScheme(c, middleware.MustGetUser(c), &req)
}

func (lr *listingRoutes) updateScheme(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	var req controllers.SchemeReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return lr.controller.UpdateScheme(c, id, &req)
}

func (lr *listingRoutes) deleteScheme(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	if err := lr.db.DeleteScheme(c, id); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"id": id}, nil
}

func (lr *listingRoutes) listJobs(c *gin.Context) (interface{}, *util.HTTPError) {
	page := util.ParsePaging(c)
	jobType := model.JobType(c.Query("jobType"))
	if jobType != "" && !jobType.Valid() {
		return nil, util.BadRequest("unknown jobType")
	}
	// inactive jobs are listed only when asked for explicitly
	activeOnly := c.Query("includeInactive") != "true"
	jobs, total, err := lr.db.ListJobs(c, &appDb.JobsQuery{
		Q:          c.Query("q"),
		JobType:    jobType,
		Location:   c.Query("location"),
		ActiveOnly: activeOnly,
		Page:       page,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return pageRes(jobs, page, total), nil
}

func (lr *listingRoutes) getJob(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	job, err := lr.db.GetJob(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if job == nil {
		return nil, util.NotFound("job")
	}
	return job, nil
}

func (lr *listingRoutes) createJob(c *gin.Context) (interface{}, *util.HTTPError) {
	var req controllers.JobReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return lr.controller.CreateJob(c, middleware.MustGetUser(c), &req)
}

func (lr *listingRoutes) updateJob(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	var req controllers.JobReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return lr.controller.UpdateJob(c, middleware.MustGetUser(c), id, &req)
}

func (lr *listingRoutes) deleteJob(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	if httpErr := lr.controller.DeleteJob(c, middleware.MustGetUser(c), id); httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"id": id}, nil
}

func (lr *listingRoutes) applyToJob(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	var req controllers.ApplyReq
	// the body is optional
	if c.Request.ContentLength != 0 {
		if httpErr := bind(c, &req); httpErr != nil {
			return nil, httpErr
		}
	}
	return lr.controller.ApplyToJob(c, middleware.MustGetUser(c), id, &req)
}

func (lr *listingRoutes) getApplications(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	page := util.ParsePaging(c)
	applications, total, httpErr := lr.controller.GetApplications(c, middleware.MustGetUser(c), id, page)
	if httpErr != nil {
		return nil, httpErr
	}
	return pageRes(applications, page, total), nil
}

func (lr *listingRoutes) listEvents(c *gin.Context) (interface{}, *util.HTTPError) {
	page := util.ParsePaging(c)
	upcoming, err := strconv.ParseBool(c.DefaultQuery("upcoming", "false"))
	if err != nil {
		return nil, util.BadRequest("upcoming must be true or false")
	}
	events, total, err := lr.db.ListEvents(c, &appDb.EventsQuery{
		Q:            c.Query("q"),
		UpcomingOnly: upcoming,
		Now:          time.Now().UTC(),
		ViewerId:     middleware.GetViewerId(c),
		Page:         page,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return pageRes(events, page, total), nil
}

func (lr *listingRoutes) getEvent(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	return lr.controller.GetEvent(c, middleware.MustGetUser(c), id)
}

func (lr *listingRoutes) createEvent(c *gin.Context) (interface{}, *util.HTTPError) {
	var req controllers.EventReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return lr.controller.CreateEvent(c, middleware.MustGetUser(c), &req)
}

func (lr *listingRoutes) updateEvent(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	var req controllers.EventReq
	if httpErr := bind(c, &req); httpErr != nil {
		return nil, httpErr
	}
	return lr.controller.UpdateEvent(c, middleware.MustGetUser(c), id, &req)
}

func (lr *listingRoutes) deleteEvent(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	if httpErr := lr.controller.DeleteEvent(c, middleware.MustGetUser(c), id); httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"id": id}, nil
}

func (lr *listingRoutes) attend(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	return lr.controller.Attend(c, middleware.MustGetUser(c), id)
}

func (lr *listingRoutes) unattend(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := paramId(c, "id")
	if httpErr != nil {
		return nil, httpErr
	}
	return lr.controller.Unattend(c, middleware.MustGetUser(c), id)
}
