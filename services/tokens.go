package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/civicconnect/civicconnect-be/config"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"

	tokenIssuer = "civicconnect"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

type Claims struct {
	UserId    int64      `json:"uid"`
	Role      model.Role `json:"role,omitempty"`
	TokenType TokenType  `json:"typ"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type TokenService struct {
	cfg     config.JWTConfig
	revoked Cache
	now     func() time.Time
}

func NewTokenService(cfg config.JWTConfig, revoked Cache) *TokenService {
	return &TokenService{cfg: cfg, revoked: revoked, now: time.Now}
}

// IssuePair signs a fresh access and refresh token for user.
func (ts *TokenService) IssuePair(user *model.User) (*TokenPair, error) {
	access, err := ts.sign(user, TokenTypeAccess, ts.cfg.AccessTTL, ts.cfg.AccessSecret)
	if err != nil {
		return nil, err
	}
	refresh, err := ts.sign(user, TokenTypeRefresh, ts.cfg.RefreshTTL, ts.cfg.RefreshSecret)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(ts.cfg.AccessTTL / time.Second),
	}, nil
}

func (ts *TokenService) sign(user *model.User, tokenType TokenType, ttl time.Duration, secret string) (string, error) {
	now := ts.now()
	claims := &Claims{
		UserId:    user.Id,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(user.Id, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (ts *TokenService) parse(raw string, tokenType TokenType, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(ts.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType || claims.UserId <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (ts *TokenService) ParseAccess(raw string) (*Claims, error) {
	return ts.parse(raw, TokenTypeAccess, ts.cfg.AccessSecret)
}

// ParseRefresh also rejects refresh tokens that were revoked by logout or
// rotation.
func (ts *TokenService) ParseRefresh(ctx context.Context, raw string) (*Claims, error) {
	claims, err := ts.parse(raw, TokenTypeRefresh, ts.cfg.RefreshSecret)
	if err != nil {
		return nil, err
	}
	revoked, err := ts.revoked.Exists(ctx, revokedKey(claims.ID))
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke blocks the token's jti until the token would have expired anyway.
// It reports false when the token was already revoked.
func (ts *TokenService) Revoke(ctx context.Context, claims *Claims) (bool, error) {
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Sub(ts.now()); remaining > 0 {
			ttl = remaining
		}
	}
	return ts.revoked.SetNX(ctx, revokedKey(claims.ID), RedisTrue, ttl)
}

func revokedKey(jti string) string {
	return "revoked:" + jti
}
