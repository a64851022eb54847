package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/metrics"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/services"
	"github.com/civicconnect/civicconnect-be/util"
	"golang.org/x/crypto/bcrypt"
)

const generatedHandleAttempts = 5

type RegisterReq struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Username string `json:"username" binding:"omitempty,min=3,max=30"`
}

type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResult struct {
	User *model.User `json:"user"`
	*services.TokenPair
}

type AuthController struct {
	db       appDb.UserDatabase
	tokens   *services.TokenService
	hashCost int
}

func NewAuthController(db appDb.UserDatabase, tokens *services.TokenService) *AuthController {
	return &AuthController{db: db, tokens: tokens, hashCost: bcrypt.DefaultCost}
}

func (ac *AuthController) Register(ctx context.Context, req *RegisterReq) (*AuthResult, *util.HTTPError) {
	if req.Username != "" && !util.IsValidHandle(req.Username) {
		return nil, util.BadRequest("username may only contain letters, digits and underscores")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), ac.hashCost)
	if err != nil {
		return nil, util.InternalHTTPErr("could not hash password", err)
	}
	user := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Name:         util.SanitizeText(req.Name),
		Role:         model.RoleUser,
	}

	if req.Username != "" {
		user.Username = req.Username
		if _, err := ac.db.CreateUser(ctx, user); err != nil {
			return nil, registerConflict(err)
		}
	} else if httpErr := ac.createWithGeneratedHandle(ctx, user); httpErr != nil {
		return nil, httpErr
	}
	metrics.RecordAuthAttempt("register", "success")
	return ac.issue(user)
}

// createWithGeneratedHandle retries on username collisions only.
func (ac *AuthController) createWithGeneratedHandle(ctx context.Context, user *model.User) *util.HTTPError {
	var err error
	for attempt := 0; attempt < generatedHandleAttempts; attempt++ {
		user.Username = util.GenerateHandle(user.Email)
		if _, err = ac.db.CreateUser(ctx, user); err == nil {
			return nil
		}
		if !appDb.IsDupKeyErr(err) || !strings.Contains(appDb.GetDupKey(err), "username") {
			break
		}
	}
	return registerConflict(err)
}

func registerConflict(err error) *util.HTTPError {
	if !appDb.IsDupKeyErr(err) {
		return util.BuildDbHTTPErr(err)
	}
	metrics.RecordAuthAttempt("register", "conflict")
	if strings.Contains(appDb.GetDupKey(err), "username") {
		return util.Conflict("username is already taken")
	}
	return util.Conflict("an account with this email already exists")
}

func (ac *AuthController) Login(ctx context.Context, req *LoginReq) (*AuthResult, *util.HTTPError) {
	user, err := ac.db.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		metrics.RecordAuthAttempt("login", "invalid_credentials")
		return nil, util.Unauthorized(util.CodeInvalidCreds, "invalid email or password")
	}
	if user.IsBanned {
		metrics.RecordAuthAttempt("login", "banned")
		return nil, bannedHTTPErr()
	}
	metrics.RecordAuthAttempt("login", "success")
	return ac.issue(user)
}

// Refresh rotates the pair: the presented refresh token is revoked before a
// new one is handed out, so it can be used once.
func (ac *AuthController) Refresh(ctx context.Context, rawRefresh string) (*AuthResult, *util.HTTPError) {
	claims, httpErr := ac.parseRefresh(ctx, rawRefresh)
	if httpErr != nil {
		metrics.RecordAuthAttempt("refresh", "invalid_token")
		return nil, httpErr
	}
	revoked, err := ac.tokens.Revoke(ctx, claims)
	if err != nil {
		return nil, util.InternalHTTPErr("could not rotate token", err)
	}
	if !revoked {
		metrics.RecordAuthAttempt("refresh", "invalid_token")
		return nil, util.Unauthorized(util.CodeInvalidToken, "refresh token has been revoked")
	}

	user, err := ac.db.GetUser(ctx, claims.UserId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if user == nil {
		return nil, util.Unauthorized(util.CodeInvalidToken, "user no longer exists")
	}
	if user.IsBanned {
		return nil, bannedHTTPErr()
	}
	metrics.RecordAuthAttempt("refresh", "success")
	return ac.issue(user)
}

// Logout is idempotent: unknown, expired or already revoked tokens succeed.
func (ac *AuthController) Logout(ctx context.Context, rawRefresh string) *util.HTTPError {
	claims, httpErr := ac.parseRefresh(ctx, rawRefresh)
	if httpErr != nil {
		return nil
	}
	if _, err := ac.tokens.Revoke(ctx, claims); err != nil {
		return util.InternalHTTPErr("could not revoke token", err)
	}
	return nil
}

func (ac *AuthController) parseRefresh(ctx context.Context, raw string) (*services.Claims, *util.HTTPError) {
	claims, err := ac.tokens.ParseRefresh(ctx, raw)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, services.ErrTokenRevoked):
		return nil, util.Unauthorized(util.CodeInvalidToken, "refresh token has been revoked")
	case errors.Is(err, services.ErrInvalidToken):
		return nil, util.Unauthorized(util.CodeInvalidToken, "invalid or expired refresh token")
	}
	return nil, util.InternalHTTPErr("could not verify token", err)
}

func (ac *AuthController) issue(user *model.User) (*AuthResult, *util.HTTPError) {
	pair, err := ac.tokens.IssuePair(user)
	if err != nil {
		return nil, util.InternalHTTPErr("could not issue tokens", err)
	}
	displayable := *user
	displayable.Avatar = util.AvatarOr(user.Avatar, user.Username)
	return &AuthResult{User: &displayable, TokenPair: pair}, nil
}

func bannedHTTPErr() *util.HTTPError {
	return util.NewHTTPError(http.StatusForbidden, util.CodeAccountBanned, "account is banned")
}
