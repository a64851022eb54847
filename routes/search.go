package routes

import (
	"strconv"
	"strings"
	"unicode/utf8"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/middleware"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/services"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/gin-gonic/gin"
)

const (
	minSearchLen       = 2
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

type SearchType string

const (
	SearchAll     SearchType = "all"
	SearchUsers   SearchType = "users"
	SearchPosts   SearchType = "posts"
	SearchJobs    SearchType = "jobs"
	SearchSchemes SearchType = "schemes"
	SearchEvents  SearchType = "events"
)

type SearchResults struct {
	Users   []*model.UserSummary `json:"users,omitempty"`
	Posts   []*model.Post        `json:"posts,omitempty"`
	Jobs    []*model.Job         `json:"jobs,omitempty"`
	Schemes []*model.Scheme      `json:"schemes,omitempty"`
	Events  []*model.Event       `json:"events,omitempty"`
}

type searchRoutes struct {
	db appDb.Database
}

func AddSearchRoutes(group *gin.RouterGroup, db appDb.Database, tokens *services.TokenService) {
	routes := searchRoutes{db}
	search := group.Group("/search", middleware.GenAuth(db, tokens, &middleware.AuthConfig{}))
	search.GET("", util.HandlerWrapper(routes.search, &util.HandlerOpts{}))
}

func (sr *searchRoutes) search(c *gin.Context) (interface{}, *util.HTTPError) {
	q := strings.TrimSpace(c.Query("q"))
	if utf8.RuneCountInString(q) < minSearchLen {
		return nil, util.BadRequest("search query must be at least 2 characters")
	}
	searchType := SearchType(c.DefaultQuery("type", string(SearchAll)))
	switch searchType {
	case SearchAll, SearchUsers, SearchPosts, SearchJobs, SearchSchemes, SearchEvents:
	default:
		return nil, util.BadRequest("type must be one of all, users, posts, jobs, schemes, events")
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSearchLimit)))
	if err != nil || limit < 1 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	page := appDb.Page{Page: 1, Limit: limit}
	wants := func(t SearchType) bool {
		return searchType == SearchAll || searchType == t
	}

	results := &SearchResults{}
	if wants(SearchUsers) {
		if results.Users, err = sr.db.SearchUsers(c, q, limit); err != nil {
			return nil, util.BuildDbHTTPErr(err)
		}
	}
	if wants(SearchPosts) {
		if results.Posts, err = sr.db.SearchPosts(c, q, limit, middleware.GetViewerId(c)); err != nil {
			return nil, util.BuildDbHTTPErr(err)
		}
	}
	if wants(SearchJobs) {
		if results.Jobs, _, err = sr.db.ListJobs(c, &appDb.JobsQuery{Q: q, ActiveOnly: true, Page: page}); err != nil {
			return nil, util.BuildDbHTTPErr(err)
		}
	}
	if wants(SearchSchemes) {
		if results.Schemes, _, err = sr.db.ListSchemes(c, &appDb.ListingQuery{Q: q, Page: page}); err != nil {
			return nil, util.BuildDbHTTPErr(err)
		}
	}
	if wants(SearchEvents) {
		if results.Events, _, err = sr.db.ListEvents(c, &appDb.EventsQuery{Q: q, ViewerId: middleware.GetViewerId(c), Page: page}); err != nil {
			return nil, util.BuildDbHTTPErr(err)
		}
	}
	return results, nil
}
