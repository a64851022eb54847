package sqldb

import (
	"context"
	"database/sql"
	"time"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/pkg/errors"
	"github.com/upper/db/v4"
)

type MessageDB struct {
	store
}

func getMessageDB(s store) *MessageDB {
	return &MessageDB{s}
}

func (mdb *MessageDB) GetOrCreateConversation(ctx context.Context, userId int64, otherId int64) (*model.Conversation, error) {
	userAId, userBId := model.OrderedPair(userId, otherId)
	conversation, err := mdb.getConversationWhere(ctx, "user_a_id = ? AND user_b_id = ?", userAId, userBId)
	if err != nil || conversation != nil {
		return conversation, err
	}

	now := time.Now().UTC()
	id, err := insertId(ctx, mdb.sess, mdb.dialect, "conversation",
		[]string{"user_a_id", "user_b_id", "last_message_at", "created_at"},
		userAId, userBId, now, now)
	if err != nil {
		if appDb.IsDupKeyErr(err) {
			// lost the race to the other participant
			return mdb.getConversationWhere(ctx, "user_a_id = ? AND user_b_id = ?", userAId, userBId)
		}
		return nil, errors.Wrap(err, "inserting conversation")
	}
	return &model.Conversation{
		Id:            id,
		UserAId:       userAId,
		UserBId:       userBId,
		LastMessageAt: now,
		CreatedAt:     now,
	}, nil
}

func (mdb *MessageDB) GetConversation(ctx context.Context, id int64) (*model.Conversation, error) {
	return mdb.getConversationWhere(ctx, "id = ?", id)
}

func (mdb *MessageDB) getConversationWhere(ctx context.Context, conds ...interface{}) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := mdb.sess.SQL().
		SelectFrom("conversation").
		Where(conds...).
		IteratorContext(ctx).
		One(&conversation); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

func (mdb *MessageDB) GetConversations(ctx context.Context, userId int64) ([]*model.ConversationSummary, error) {
	var conversations []*model.Conversation
	if err := mdb.sess.SQL().
		SelectFrom("conversation").
		Where("user_a_id = ? OR user_b_id = ?", userId, userId).
		OrderBy("last_message_at DESC", "id DESC").
		IteratorContext(ctx).
		All(&conversations); err != nil {
		return nil, errors.Wrap(err, "listing conversations")
	}
	summaries := make([]*model.ConversationSummary, len(conversations))
	if len(conversations) == 0 {
		return summaries, nil
	}

	conversationIds := make([]int64, len(conversations))
	participantIds := make([]int64, len(conversations))
	for i, conversation := range conversations {
		conversationIds[i] = conversation.Id
		participantIds[i] = conversation.OtherParticipant(userId)
	}

	var participants []*model.UserSummary
	if err := mdb.sess.SQL().
		Select(userSummaryColumns...).
		From("person").
		Where("id IN ?", participantIds).
		IteratorContext(ctx).
		All(&participants); err != nil {
		return nil, err
	}
	participantById := make(map[int64]*model.UserSummary, len(participants))
	for _, participant := range withAvatars(participants) {
		participantById[participant.Id] = participant
	}

	var lastMessages []*model.Message
	if err := mdb.sess.SQL().
		SelectFrom("message").
		Where("id IN (SELECT MAX(id) FROM message WHERE conversation_id IN ? GROUP BY conversation_id)", conversationIds).
		IteratorContext(ctx).
		All(&lastMessages); err != nil {
		return nil, err
	}
	lastByConversation := make(map[int64]*model.Message, len(lastMessages))
	for _, message := range lastMessages {
		lastByConversation[message.ConversationId] = message
	}

	var unread []struct {
		ConversationId int64 `db:"conversation_id"`
		Total          int64 `db:"total"`
	}
	if err := mdb.sess.SQL().
		Select("conversation_id", db.Raw("COUNT(*) AS total")).
		From("message").
		Where("conversation_id IN ? AND sender_id <> ? AND is_read = ?", conversationIds, userId, false).
		GroupBy("conversation_id").
		IteratorContext(ctx).
		All(&unread); err != nil {
		return nil, err
	}
	unreadByConversation := make(map[int64]int64, len(unread))
	for _, row := range unread {
		unreadByConversation[row.ConversationId] = row.Total
	}

	for i, conversation := range conversations {
		summaries[i] = &model.ConversationSummary{
			Conversation: conversation,
			Participant:  participantById[participantIds[i]],
			LastMessage:  lastByConversation[conversation.Id],
			UnreadCount:  unreadByConversation[conversation.Id],
		}
	}
	return summaries, nil
}

// GetMessages pages newest first and returns each page in chronological order.
func (mdb *MessageDB) GetMessages(ctx context.Context, conversationId int64, page appDb.Page) ([]*model.Message, int64, error) {
	total, err := count(ctx, mdb.sess.SQL().
		Select(db.Raw("COUNT(*) AS total")).
		From("message").
		Where("conversation_id = ?", conversationId))
	if err != nil {
		return nil, 0, err
	}
	messages := []*model.Message{}
	if err := mdb.sess.SQL().
		SelectFrom("message").
		Where("conversation_id = ?", conversationId).
		OrderBy("created_at DESC", "id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		IteratorContext(ctx).
		All(&messages); err != nil {
		return nil, 0, errors.Wrap(err, "listing messages")
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, total, nil
}

func (mdb *MessageDB) SendMessage(ctx context.Context, message *model.Message) (int64, error) {
	now := time.Now().UTC()
	err := mdb.sess.TxContext(ctx, func(sess db.Session) error {
		id, err := insertId(ctx, sess, mdb.dialect, "message",
			[]string{"conversation_id", "sender_id", "content", "is_read", "created_at"},
			message.ConversationId, message.SenderId, message.Content, false, now)
		if err != nil {
			return errors.Wrap(err, "inserting message")
		}
		message.Id, message.CreatedAt, message.IsRead = id, now, false
		_, err = sess.SQL().
			Update("conversation").
			Set("last_message_at", now).
			Where("id = ?", message.ConversationId).
			ExecContext(ctx)
		return err
	}, &sql.TxOptions{})
	return message.Id, err
}

func (mdb *MessageDB) MarkConversationRead(ctx context.Context, conversationId int64, readerId int64) (int64, error) {
	res, err := mdb.sess.SQL().
		Update("message").
		Set("is_read", true).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationId, readerId, false).
		ExecContext(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
