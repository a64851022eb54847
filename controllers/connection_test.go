package controllers

import (
	"context"
	"net/http"
	"testing"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	db := newTestDB()
	cc := NewConnectionController(db, NewNotifier(db))
	ada, bob := createUser(t, db, "ada"), createUser(t, db, "bob")
	ctx := context.Background()

	requireHTTPErr(t, cc.Connect(ctx, ada, ada.Id), http.StatusBadRequest, "")
	requireHTTPErr(t, cc.Connect(ctx, ada, 999), http.StatusNotFound, util.CodeNotFound)

	require.Nil(t, cc.Connect(ctx, ada, bob.Id))
	requireHTTPErr(t, cc.Connect(ctx, bob, ada.Id), http.StatusConflict, util.CodeConflict)

	notifications := notificationsFor(t, db, bob)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotificationConnection, notifications[0].Type)
	assert.Equal(t, model.TargetUser, notifications[0].TargetType)
	assert.Equal(t, ada.Id, notifications[0].TargetId)

	profile, err := db.GetProfile(ctx, bob.Id, ada.Id)
	require.NoError(t, err)
	assert.True(t, profile.IsConnected)
	assert.Equal(t, int64(1), profile.ConnectionCount)

	require.Nil(t, cc.Disconnect(ctx, bob, ada.Id))
	requireHTTPErr(t, cc.Disconnect(ctx, ada, bob.Id), http.StatusNotFound, util.CodeNotFound)
}

func TestConnectToBannedUser(t *testing.T) {
	db := newTestDB()
	cc := NewConnectionController(db, NewNotifier(db))
	ada, banned := createUser(t, db, "ada"), createUser(t, db, "banned")
	isBanned := true
	require.NoError(t, db.UpdateUser(context.Background(), banned.Id, &appDb.UpdateUser{IsBanned: &isBanned}))

	requireHTTPErr(t, cc.Connect(context.Background(), ada, banned.Id), http.StatusNotFound, util.CodeNotFound)
}
