package controllers

import (
	"context"
	"testing"
	"time"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/db/memdb"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/stretchr/testify/require"
)

var defaultTestPage = appDb.Page{Page: 1, Limit: 20}

func newTestDB() *memdb.MemDB {
	db := memdb.New()
	clock := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	db.SetClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
	return db
}

func createUser(t *testing.T, db *memdb.MemDB, username string) *model.User {
	t.Helper()
	user := &model.User{Email: username + "@example.com", Username: username, Name: username}
	_, err := db.CreateUser(context.Background(), user)
	require.NoError(t, err)
	return user
}

func notificationsFor(t *testing.T, db *memdb.MemDB, user *model.User) []*model.Notification {
	t.Helper()
	notifications, _, err := db.GetNotifications(context.Background(), user.Id, false, appDb.Page{Page: 1, Limit: 100})
	require.NoError(t, err)
	return notifications
}

func notificationTypes(notifications []*model.Notification) []model.NotificationType {
	types := make([]model.NotificationType, len(notifications))
	for i, notification := range notifications {
		types[i] = notification.Type
	}
	return types
}

func requireHTTPErr(t *testing.T, httpErr *util.HTTPError, status int, code string) {
	t.Helper()
	require.NotNil(t, httpErr)
	require.Equal(t, status, httpErr.Status, httpErr.Message)
	if code != "" {
		require.Equal(t, code, httpErr.Code)
	}
}
