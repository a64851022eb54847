package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/civicconnect/civicconnect-be/config"
	"github.com/civicconnect/civicconnect-be/controllers"
	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/db/memdb"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	router *gin.Engine
	db     *memdb.MemDB
	tokens *services.TokenService
	store  *services.FakeFileStore
}

func newTestServer(t *testing.T, authLimiter services.RateLimiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Server: config.ServerConfig{FrontendOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    time.Hour,
		},
		Storage: config.StorageConfig{MaxUploadBytes: 1 << 10},
	}
	db := memdb.New()
	clock := time.Now().Add(-time.Hour)
	db.SetClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
	announcements, err := controllers.NewAnnouncementController(context.Background(), db)
	require.NoError(t, err)
	t.Cleanup(announcements.Stop)

	ts := &testServer{
		db:     db,
		tokens: services.NewTokenService(cfg.JWT, services.NewMemoryCache()),
		store:  services.NewFakeFileStore(),
	}
	ts.router = NewRouter(&Deps{
		Config:        cfg,
		DB:            db,
		Tokens:        ts.tokens,
		Store:         ts.store,
		AuthLimiter:   authLimiter,
		Announcements: announcements,
	})
	return ts
}

// login creates a user straight in the store and returns an access token.
func (ts *testServer) login(t *testing.T, username string, role model.Role) (*model.User, string) {
	t.Helper()
	user := &model.User{Email: username + "@example.com", Username: username, Name: username}
	_, err := ts.db.CreateUser(context.Background(), user)
	require.NoError(t, err)
	if role != "" && role != model.RoleUser {
		require.NoError(t, ts.db.UpdateUser(context.Background(), user.Id, &appDb.UpdateUser{Role: &role}))
		user.Role = role
	}
	pair, err := ts.tokens.IssuePair(user)
	require.NoError(t, err)
	return user, pair.AccessToken
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, &env
}

func TestHealthAndUnknownRoute(t *testing.T) {
	ts := newTestServer(t, nil)

	w, env := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"status":"ok"`)

	w, env = ts.do(t, http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestRegisterThenMe(t *testing.T) {
	ts := newTestServer(t, nil)

	w, env := ts.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "Ada@Example.com", "password": "correct horse", "name": "Ada Lovelace", "username": "ada",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var registered struct {
		User        model.User `json:"user"`
		AccessToken string     `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &registered))
	assert.Equal(t, "ada@example.com", registered.User.Email)
	assert.NotContains(t, string(env.Data), "correct horse")

	w, env = ts.do(t, http.MethodGet, "/api/auth/me", registered.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me model.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "ada", me.Username)

	w, env = ts.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"email": "not-an-email", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	w, env = ts.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	ts := newTestServer(t, services.NewTokenBucketLimiter(2, time.Minute))
	creds := gin.H{"email": "nobody@example.com", "password": "whatever1"}

	for i := 0; i < 2; i++ {
		w, env := ts.do(t, http.MethodPost, "/api/auth/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
	}
	w, env := ts.do(t, http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", env.Error.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestFeedPagesByCursor(t *testing.T) {
	ts := newTestServer(t, nil)
	user, token := ts.login(t, "ada", model.RoleUser)
	for _, content := range []string{"first", "second", "third"} {
		_, err := ts.db.CreatePost(context.Background(), &appDb.CreatePost{AuthorId: user.Id, Content: content})
		require.NoError(t, err)
	}

	var seen []string
	cursor := ""
	for pages := 0; pages < 3; pages++ {
		w, env := ts.do(t, http.MethodGet, "/api/posts?limit=2&cursor="+cursor, token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var page struct {
			Posts      []model.Post `json:"posts"`
			NextCursor string       `json:"nextCursor"`
			HasMore    bool         `json:"hasMore"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &page))
		for _, post := range page.Posts {
			seen = append(seen, post.Content)
		}
		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}
	assert.Equal(t, []string{"third", "second", "first"}, seen)

	w, env := ts.do(t, http.MethodGet, "/api/posts?cursor=%25%25%25", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)

	w, _ = ts.do(t, http.MethodGet, "/api/posts?scope=everyone", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchValidation(t *testing.T) {
	ts := newTestServer(t, nil)
	_, token := ts.login(t, "ada", model.RoleUser)

	w, _ := ts.do(t, http.MethodGet, "/api/search?q=a", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = ts.do(t, http.MethodGet, "/api/search?q=ada&type=planets", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := ts.do(t, http.MethodGet, "/api/search?q=ada&type=users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var results SearchResults
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.Len(t, results.Users, 1)
	assert.Equal(t, "ada", results.Users[0].Username)
	assert.Empty(t, results.Posts)
}

func multipartFile(t *testing.T, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "picture.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	ts := newTestServer(t, nil)
	_, token := ts.login(t, "ada", model.RoleUser)
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

	body, contentType := multipartFile(t, png)
	req := httptest.NewRequest(http.MethodPost, "/api/upload/image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"contentType":"image/png"`)
	assert.Len(t, ts.store.Files, 1)

	req = httptest.NewRequest(http.MethodPost, "/api/upload/image", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutesNeedAdmin(t *testing.T) {
	ts := newTestServer(t, nil)
	user, userToken := ts.login(t, "ada", model.RoleUser)
	_, adminToken := ts.login(t, "root", model.RoleAdmin)

	w, env := ts.do(t, http.MethodGet, "/api/admin/stats", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	w, env = ts.do(t, http.MethodGet, "/api/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats model.Stats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(2), stats.Users)

	w, _ = ts.do(t, http.MethodPut, "/api/admin/users/"+strconv.FormatInt(user.Id, 10)+"/ban", adminToken, gin.H{"banned": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = ts.do(t, http.MethodGet, "/api/auth/me", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "ACCOUNT_BANNED", env.Error.Code)
}

func TestAnnouncementsArePublicToRead(t *testing.T) {
	ts := newTestServer(t, nil)
	_, userToken := ts.login(t, "ada", model.RoleUser)
	_, adminToken := ts.login(t, "root", model.RoleAdmin)
	announcement := gin.H{"title": "Flood warning", "content": "Avoid the river", "isUrgent": true}

	w, _ := ts.do(t, http.MethodPost, "/api/announcements", userToken, announcement)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = ts.do(t, http.MethodPost, "/api/announcements", adminToken, announcement)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := ts.do(t, http.MethodGet, "/api/announcements/urgent", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var urgent []model.Announcement
	require.NoError(t, json.Unmarshal(env.Data, &urgent))
	require.Len(t, urgent, 1)
	assert.Equal(t, "Flood warning", urgent[0].Title)
}
