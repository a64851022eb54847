package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/civicconnect/civicconnect-be/config"
	"github.com/civicconnect/civicconnect-be/db/memdb"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body
}

type authFixture struct {
	db     *memdb.MemDB
	tokens *services.TokenService
	router *gin.Engine
}

func newAuthFixture(t *testing.T, config *AuthConfig, extra ...gin.HandlerFunc) *authFixture {
	t.Helper()
	f := &authFixture{
		db:     memdb.New(),
		tokens: services.NewTokenService(configForTests(), services.NewMemoryCache()),
		router: gin.New(),
	}
	handlers := append([]gin.HandlerFunc{GenAuth(f.db, f.tokens, config)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"viewerId": GetViewerId(c)})
	})
	f.router.GET("/protected", handlers...)
	return f
}

func configForTests() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
	}
}

func (f *authFixture) createUser(t *testing.T, user *model.User) string {
	t.Helper()
	_, err := f.db.CreateUser(context.Background(), user)
	require.NoError(t, err)
	pair, err := f.tokens.IssuePair(user)
	require.NoError(t, err)
	return pair.AccessToken
}

func (f *authFixture) get(header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestGenAuth(t *testing.T) {
	f := newAuthFixture(t, &AuthConfig{})
	token := f.createUser(t, &model.User{Email: "ada@example.com", Username: "ada", Role: model.RoleUser})

	t.Run("missing header", func(t *testing.T) {
		w := f.get("")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, w).Error.Code)
	})
	t.Run("not a bearer header", func(t *testing.T) {
		w := f.get("Basic abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
	t.Run("bad token", func(t *testing.T) {
		w := f.get("Bearer not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_TOKEN", decodeError(t, w).Error.Code)
	})
	t.Run("valid token", func(t *testing.T) {
		w := f.get("Bearer " + token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"viewerId":1}`, w.Body.String())
	})
}

func TestGenAuthBannedUser(t *testing.T) {
	f := newAuthFixture(t, &AuthConfig{})
	token := f.createUser(t, &model.User{Email: "spam@example.com", Username: "spammer", IsBanned: true})

	w := f.get("Bearer " + token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "ACCOUNT_BANNED", decodeError(t, w).Error.Code)
}

func TestGenAuthSessionNotRequired(t *testing.T) {
	f := newAuthFixture(t, &AuthConfig{SessionNotRequired: true})

	w := f.get("")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"viewerId":0}`, w.Body.String())

	w = f.get("Bearer garbage")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"viewerId":0}`, w.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	f := newAuthFixture(t, &AuthConfig{}, RequireAdmin())
	userToken := f.createUser(t, &model.User{Email: "user@example.com", Username: "plain", Role: model.RoleUser})
	adminToken := f.createUser(t, &model.User{Email: "admin@example.com", Username: "boss", Role: model.RoleAdmin})

	w := f.get("Bearer " + userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, w).Error.Code)

	w = f.get("Bearer " + adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

type stubLimiter struct {
	decision services.Decision
	err      error
}

func (s *stubLimiter) Allow(context.Context, string) (services.Decision, error) {
	return s.decision, s.err
}

func rateLimitedRouter(limiter services.RateLimiter) *gin.Engine {
	r := gin.New()
	r.GET("/", RateLimit("test", limiter), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRateLimitRejects(t *testing.T) {
	r := rateLimitedRouter(&stubLimiter{decision: services.Decision{
		Allowed:    false,
		Limit:      5,
		Remaining:  0,
		RetryAfter: 1500 * time.Millisecond,
	}})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decodeError(t, w).Error.Code)
}

func TestRateLimitAllowsAndFailsOpen(t *testing.T) {
	r := rateLimitedRouter(&stubLimiter{decision: services.Decision{Allowed: true, Limit: 5, Remaining: 4}})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))

	r = rateLimitedRouter(&stubLimiter{err: context.DeadlineExceeded})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, w).Error.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDReusesValidHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(REQUEST_ID_KEY))
	})

	const incoming = "0b7c1d3e-6f0a-4a8e-9a53-2f1c2d3e4f50"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Body.String())
	assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Body.String())
	assert.Len(t, w.Body.String(), 36)
}
