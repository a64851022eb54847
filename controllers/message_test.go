package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationFlow(t *testing.T) {
	db := newTestDB()
	mc := NewMessageController(db, NewNotifier(db))
	ada, bob, eve := createUser(t, db, "ada"), createUser(t, db, "bob"), createUser(t, db, "eve")
	ctx := context.Background()

	_, httpErr := mc.StartConversation(ctx, ada, ada.Id)
	requireHTTPErr(t, httpErr, http.StatusBadRequest, "")

	started, httpErr := mc.StartConversation(ctx, ada, bob.Id)
	require.Nil(t, httpErr)
	assert.Equal(t, bob.Id, started.Participant.Id)
	again, httpErr := mc.StartConversation(ctx, bob, ada.Id)
	require.Nil(t, httpErr)
	assert.Equal(t, started.Conversation.Id, again.Conversation.Id)
	conversationId := started.Conversation.Id

	_, httpErr = mc.SendMessage(ctx, ada, conversationId, &SendMessageReq{Content: "  "})
	requireHTTPErr(t, httpErr, http.StatusBadRequest, "")
	message, httpErr := mc.SendMessage(ctx, ada, conversationId, &SendMessageReq{Content: "hi bob"})
	require.Nil(t, httpErr)
	assert.Equal(t, "hi bob", message.Content)

	notifications := notificationsFor(t, db, bob)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotificationMessage, notifications[0].Type)
	assert.Equal(t, model.TargetConversation, notifications[0].TargetType)

	_, _, httpErr = mc.GetMessages(ctx, eve, conversationId, defaultTestPage)
	requireHTTPErr(t, httpErr, http.StatusNotFound, util.CodeNotFound)
	_, httpErr = mc.SendMessage(ctx, eve, conversationId, &SendMessageReq{Content: "let me in"})
	requireHTTPErr(t, httpErr, http.StatusNotFound, util.CodeNotFound)

	messages, total, httpErr := mc.GetMessages(ctx, bob, conversationId, defaultTestPage)
	require.Nil(t, httpErr)
	assert.Equal(t, int64(1), total)
	require.Len(t, messages, 1)

	updated, httpErr := mc.MarkRead(ctx, bob, conversationId)
	require.Nil(t, httpErr)
	assert.Equal(t, int64(1), updated)
	updated, httpErr = mc.MarkRead(ctx, bob, conversationId)
	require.Nil(t, httpErr)
	assert.Zero(t, updated)
}
