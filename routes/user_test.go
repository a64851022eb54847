package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileRes struct {
	Id              int64  `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	ConnectionCount int64  `json:"connectionCount"`
	IsConnected     bool   `json:"isConnected"`
}

func userPath(id int64, suffix string) string {
	return "/api/users/" + strconv.FormatInt(id, 10) + suffix
}

func TestProfileShowsConnectionState(t *testing.T) {
	ts := newTestServer(t, nil)
	_, adaToken := ts.login(t, "ada", model.RoleUser)
	bob, _ := ts.login(t, "bob", model.RoleUser)

	getProfile := func() profileRes {
		w, env := ts.do(t, http.MethodGet, userPath(bob.Id, ""), adaToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var profile profileRes
		require.NoError(t, json.Unmarshal(env.Data, &profile))
		return profile
	}

	profile := getProfile()
	assert.Equal(t, "bob", profile.Username)
	assert.Empty(t, profile.Email)
	assert.False(t, profile.IsConnected)

	w, _ := ts.do(t, http.MethodPost, userPath(bob.Id, "/connect"), adaToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	profile = getProfile()
	assert.True(t, profile.IsConnected)
	assert.Equal(t, int64(1), profile.ConnectionCount)

	w, _ = ts.do(t, http.MethodDelete, userPath(bob.Id, "/connect"), adaToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, getProfile().IsConnected)

	w, _ = ts.do(t, http.MethodGet, userPath(999, ""), adaToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBannedProfileIsHiddenFromUsers(t *testing.T) {
	ts := newTestServer(t, nil)
	_, adaToken := ts.login(t, "ada", model.RoleUser)
	_, adminToken := ts.login(t, "root", model.RoleAdmin)
	banned, _ := ts.login(t, "spammer", model.RoleUser)
	isBanned := true
	require.NoError(t, ts.db.UpdateUser(context.Background(), banned.Id, &appDb.UpdateUser{IsBanned: &isBanned}))

	w, env := ts.do(t, http.MethodGet, userPath(banned.Id, ""), adaToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	w, env = ts.do(t, http.MethodGet, userPath(banned.Id, ""), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile profileRes
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "spammer@example.com", profile.Email)
}

func TestSuggestionsSkipSelfAndConnections(t *testing.T) {
	ts := newTestServer(t, nil)
	ada, adaToken := ts.login(t, "ada", model.RoleUser)
	bob, _ := ts.login(t, "bob", model.RoleUser)
	ts.login(t, "cara", model.RoleUser)
	ts.login(t, "dave", model.RoleUser)
	require.NoError(t, ts.db.Connect(context.Background(), ada.Id, bob.Id))

	suggestions := func(query string) []string {
		w, env := ts.do(t, http.MethodGet, "/api/users/suggestions"+query, adaToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var users []model.UserSummary
		require.NoError(t, json.Unmarshal(env.Data, &users))
		names := make([]string, len(users))
		for i, user := range users {
			names[i] = user.Username
		}
		return names
	}

	assert.Equal(t, []string{"dave", "cara"}, suggestions(""))
	assert.Equal(t, []string{"dave"}, suggestions("?limit=1"))
	assert.Equal(t, []string{"dave", "cara"}, suggestions("?limit=abc"))
}
