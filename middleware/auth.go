package middleware

import (
	"net/http"
	"strings"

	"github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/logger"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/services"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CLAIMS_KEY = "authClaims"
	USER_KEY   = "user"
)

// AccessTokenParser is the part of services.TokenService the middleware needs.
type AccessTokenParser interface {
	ParseAccess(raw string) (*services.Claims, error)
}

type AuthConfig struct {
	// SessionNotRequired lets anonymous requests through; a valid token
	// still loads the user.
	SessionNotRequired bool
}

func GenAuth(userDB db.UserDatabase, tokens AccessTokenParser, config *AuthConfig) gin.HandlerFunc {
	if config == nil {
		config = &AuthConfig{}
	}
	return func(c *gin.Context) {
		raw, httpErr := bearerToken(c.GetHeader("Authorization"))
		if httpErr != nil {
			if config.SessionNotRequired {
				c.Next()
				return
			}
			util.HandleHTTPErrorRes(c, httpErr)
			return
		}

		claims, err := tokens.ParseAccess(raw)
		if err != nil {
			if config.SessionNotRequired {
				c.Next()
				return
			}
			util.HandleHTTPErrorRes(c, util.Unauthorized(util.CodeInvalidToken, "invalid or expired token"))
			return
		}
		c.Set(CLAIMS_KEY, claims)

		user, err := userDB.GetUser(c, claims.UserId)
		if err != nil {
			util.HandleHTTPErrorRes(c, util.BuildDbHTTPErr(err))
			return
		}
		if user == nil {
			util.HandleHTTPErrorRes(c, util.Unauthorized(util.CodeInvalidToken, "user no longer exists"))
			return
		}
		if user.IsBanned {
			util.HandleHTTPErrorRes(c, util.NewHTTPError(http.StatusForbidden, util.CodeAccountBanned, "account is banned"))
			return
		}
		c.Set(USER_KEY, user)
		c.Set(logger.GinKey, logger.FromGin(c).With(zap.Int64("user_id", user.Id)))
		c.Next()
	}
}

func bearerToken(header string) (string, *util.HTTPError) {
	if header == "" {
		return "", util.Unauthorized(util.CodeUnauthorized, "no authorization header")
	}
	if !strings.HasPrefix(header, "Bearer ") || len(header) < 8 {
		return "", util.Unauthorized(util.CodeUnauthorized, "incorrectly formatted authorization header")
	}
	return strings.TrimSpace(header[7:]), nil
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetUserMaybe(c).IsAdmin() {
			util.HandleHTTPErrorRes(c, util.Forbidden("admin access required"))
			return
		}
		c.Next()
	}
}

// MustGetUser returns the user loaded by Auth. Only use it on routes where
// a session is required.
func MustGetUser(c *gin.Context) *model.User {
	return c.MustGet(USER_KEY).(*model.User)
}

func GetUserMaybe(c *gin.Context) *model.User {
	user, ok := c.Get(USER_KEY)
	if !ok {
		return nil
	}
	return user.(*model.User)
}

// GetViewerId returns 0 for anonymous requests.
func GetViewerId(c *gin.Context) int64 {
	if user := GetUserMaybe(c); user != nil {
		return user.Id
	}
	return 0
}
