package services

import (
	"context"
	"testing"
	"time"

	"github.com/civicconnect/civicconnect-be/config"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(clock *fakeClock) *TokenService {
	cache := NewMemoryCache()
	cache.now = clock.Now
	ts := NewTokenService(config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, cache)
	ts.now = clock.Now
	return ts
}

func TestIssueAndParse(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	ts := newTestTokenService(clock)
	user := &model.User{Id: 7, Role: model.RoleAdmin}

	pair, err := ts.IssuePair(user)
	require.NoError(t, err)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	claims, err := ts.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserId)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)

	refreshClaims, err := ts.ParseRefresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshClaims.ID)
	assert.NotEqual(t, claims.ID, refreshClaims.ID)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	ts := newTestTokenService(clock)
	pair, err := ts.IssuePair(&model.User{Id: 1, Role: model.RoleUser})
	require.NoError(t, err)

	_, err = ts.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = ts.ParseRefresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = ts.ParseAccess("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenExpires(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	ts := newTestTokenService(clock)
	pair, err := ts.IssuePair(&model.User{Id: 1, Role: model.RoleUser})
	require.NoError(t, err)

	clock.Advance(16 * time.Minute)
	_, err = ts.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeRefreshToken(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	ts := newTestTokenService(clock)
	ctx := context.Background()
	pair, err := ts.IssuePair(&model.User{Id: 1, Role: model.RoleUser})
	require.NoError(t, err)

	claims, err := ts.ParseRefresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	revoked, err := ts.Revoke(ctx, claims)
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = ts.Revoke(ctx, claims)
	require.NoError(t, err)
	assert.False(t, revoked)

	_, err = ts.ParseRefresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
