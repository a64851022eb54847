package controllers

import (
	"context"
	"fmt"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/util"
)

type MessageControllerDatabase interface {
	appDb.UserDatabase
	appDb.MessageDatabase
}

type SendMessageReq struct {
	Content string `json:"content" binding:"required,min=1,max=5000"`
}

type MessageController struct {
	db       MessageControllerDatabase
	notifier *Notifier
}

func NewMessageController(db MessageControllerDatabase, notifier *Notifier) *MessageController {
	return &MessageController{db: db, notifier: notifier}
}

func (mc *MessageController) StartConversation(ctx context.Context, user *model.User, participantId int64) (*model.ConversationSummary, *util.HTTPError) {
	if participantId == user.Id {
		return nil, util.BadRequest("cannot start a conversation with yourself")
	}
	other, err := mc.db.GetUser(ctx, participantId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if other == nil || other.IsBanned {
		return nil, util.NotFound("user")
	}
	conversation, err := mc.db.GetOrCreateConversation(ctx, user.Id, participantId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	participant := other.Summary()
	participant.Avatar = util.AvatarOr(participant.Avatar, participant.Username)
	return &model.ConversationSummary{
		Conversation: conversation,
		Participant:  participant,
	}, nil
}

// conversationFor hides conversations the user is not part of behind a 404.
func (mc *MessageController) conversationFor(ctx context.Context, user *model.User, conversationId int64) (*model.Conversation, *util.HTTPError) {
	conversation, err := mc.db.GetConversation(ctx, conversationId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if conversation == nil || !conversation.HasParticipant(user.Id) {
		return nil, util.NotFound("conversation")
	}
	return conversation, nil
}

func (mc *MessageController) GetMessages(ctx context.Context, user *model.User, conversationId int64, page appDb.Page) ([]*model.Message, int64, *util.HTTPError) {
	if _, httpErr := mc.conversationFor(ctx, user, conversationId); httpErr != nil {
		return nil, 0, httpErr
	}
	messages, total, err := mc.db.GetMessages(ctx, conversationId, page)
	if err != nil {
		return nil, 0, util.BuildDbHTTPErr(err)
	}
	return messages, total, nil
}

func (mc *MessageController) SendMessage(ctx context.Context, user *model.User, conversationId int64, req *SendMessageReq) (*model.Message, *util.HTTPError) {
	conversation, httpErr := mc.conversationFor(ctx, user, conversationId)
	if httpErr != nil {
		return nil, httpErr
	}
	content := util.SanitizeText(req.Content)
	if content == "" {
		return nil, util.BadRequest("message cannot be empty")
	}
	message := &model.Message{
		ConversationId: conversationId,
		SenderId:       user.Id,
		Content:        content,
	}
	if _, err := mc.db.SendMessage(ctx, message); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	logNotifyErr(ctx, mc.notifier.Notify(ctx, actorNotification(user, conversation.OtherParticipant(user.Id),
		model.NotificationMessage, fmt.Sprintf("%s sent you a message", user.Name), model.TargetConversation, conversationId)))
	return message, nil
}

func (mc *MessageController) MarkRead(ctx context.Context, user *model.User, conversationId int64) (int64, *util.HTTPError) {
	if _, httpErr := mc.conversationFor(ctx, user, conversationId); httpErr != nil {
		return 0, httpErr
	}
	updated, err := mc.db.MarkConversationRead(ctx, conversationId, user.Id)
	if err != nil {
		return 0, util.BuildDbHTTPErr(err)
	}
	return updated, nil
}
