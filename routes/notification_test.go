package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/civicconnect/civicconnect-be/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) notify(t *testing.T, recipient *model.User, count int) []*model.Notification {
	t.Helper()
	notifications := make([]*model.Notification, count)
	for i := range notifications {
		notifications[i] = &model.Notification{
			RecipientId: recipient.Id,
			Type:        model.NotificationConnection,
			Message:     "someone connected with you",
			TargetType:  model.TargetUser,
			TargetId:    recipient.Id,
		}
	}
	require.NoError(t, ts.db.CreateNotifications(context.Background(), notifications))
	return notifications
}

func unreadCount(t *testing.T, ts *testServer, token string) int64 {
	t.Helper()
	w, env := ts.do(t, http.MethodGet, "/api/notifications/unread-count", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Count int64 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	return res.Count
}

func TestMarkNotificationReadIsIdempotent(t *testing.T) {
	ts := newTestServer(t, nil)
	ada, adaToken := ts.login(t, "ada", model.RoleUser)
	notifications := ts.notify(t, ada, 2)
	path := "/api/notifications/" + strconv.FormatInt(notifications[0].Id, 10) + "/read"

	for i := 0; i < 2; i++ {
		w, _ := ts.do(t, http.MethodPut, path, adaToken, nil)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	assert.Equal(t, int64(1), unreadCount(t, ts, adaToken))

	w, env := ts.do(t, http.MethodGet, "/api/notifications?unreadOnly=true", adaToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []model.Notification `json:"items"`
		Total int64                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, notifications[1].Id, page.Items[0].Id)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	ts := newTestServer(t, nil)
	ada, adaToken := ts.login(t, "ada", model.RoleUser)
	ts.notify(t, ada, 3)

	var updated []int64
	for i := 0; i < 2; i++ {
		w, env := ts.do(t, http.MethodPut, "/api/notifications/read-all", adaToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var res struct {
			Updated int64 `json:"updated"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &res))
		updated = append(updated, res.Updated)
	}
	assert.Equal(t, []int64{3, 0}, updated)
	assert.Zero(t, unreadCount(t, ts, adaToken))
}

func TestNotificationsOfOtherUsersAreHidden(t *testing.T) {
	ts := newTestServer(t, nil)
	ada, adaToken := ts.login(t, "ada", model.RoleUser)
	_, bobToken := ts.login(t, "bob", model.RoleUser)
	notification := ts.notify(t, ada, 1)[0]
	base := "/api/notifications/" + strconv.FormatInt(notification.Id, 10)

	w, env := ts.do(t, http.MethodPut, base+"/read", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	w, _ = ts.do(t, http.MethodDelete, base, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, int64(1), unreadCount(t, ts, adaToken))

	w, env = ts.do(t, http.MethodDelete, base, adaToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":`+strconv.FormatInt(notification.Id, 10)+`}`, string(env.Data))
	assert.Zero(t, unreadCount(t, ts, adaToken))

	w, _ = ts.do(t, http.MethodDelete, base, adaToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = ts.do(t, http.MethodPut, "/api/notifications/abc/read", adaToken, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
