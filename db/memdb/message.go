package memdb

import (
	"context"
	"sort"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
)

func (m *MemDB) GetOrCreateConversation(_ context.Context, userId int64, otherId int64) (*model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userAId, userBId := model.OrderedPair(userId, otherId)
	for _, conversation := range m.conversations {
		if conversation.UserAId == userAId && conversation.UserBId == userBId {
			copied := *conversation
			return &copied, nil
		}
	}
	now := m.now()
	conversation := &model.Conversation{
		Id:            m.id("conversation"),
		UserAId:       userAId,
		UserBId:       userBId,
		LastMessageAt: now,
		CreatedAt:     now,
	}
	m.conversations[conversation.Id] = conversation
	copied := *conversation
	return &copied, nil
}

func (m *MemDB) GetConversation(_ context.Context, id int64) (*model.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conversation, ok := m.conversations[id]
	if !ok {
		return nil, nil
	}
	copied := *conversation
	return &copied, nil
}

func (m *MemDB) GetConversations(_ context.Context, userId int64) ([]*model.ConversationSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	summaries := []*model.ConversationSummary{}
	for _, conversation := range m.conversations {
		if !conversation.HasParticipant(userId) {
			continue
		}
		copied := *conversation
		summary := &model.ConversationSummary{
			Conversation: &copied,
			Participant:  m.summary(conversation.OtherParticipant(userId)),
		}
		for _, message := range m.messages {
			if message.ConversationId != conversation.Id {
				continue
			}
			if summary.LastMessage == nil || message.Id > summary.LastMessage.Id {
				last := *message
				summary.LastMessage = &last
			}
			if message.SenderId != userId && !message.IsRead {
				summary.UnreadCount++
			}
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return newestFirst(summaries[i].LastMessageAt, summaries[i].Id, summaries[j].LastMessageAt, summaries[j].Id)
	})
	return summaries, nil
}

// GetMessages pages newest first and returns each page oldest first.
func (m *MemDB) GetMessages(_ context.Context, conversationId int64, page appDb.Page) ([]*model.Message, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*model.Message
	for _, message := range m.messages {
		if message.ConversationId == conversationId {
			copied := *message
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return newestFirst(matched[i].CreatedAt, matched[i].Id, matched[j].CreatedAt, matched[j].Id)
	})
	items, total := paginate(matched, page)
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, total, nil
}

func (m *MemDB) SendMessage(_ context.Context, message *model.Message) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conversation, ok := m.conversations[message.ConversationId]
	if !ok {
		return 0, appDb.ErrNotFound
	}
	now := m.now()
	message.Id, message.CreatedAt, message.IsRead = m.id("message"), now, false
	stored := *message
	m.messages[message.Id] = &stored
	conversation.LastMessageAt = now
	return message.Id, nil
}

func (m *MemDB) MarkConversationRead(_ context.Context, conversationId int64, readerId int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated int64
	for _, message := range m.messages {
		if message.ConversationId == conversationId && message.SenderId != readerId && !message.IsRead {
			message.IsRead = true
			updated++
		}
	}
	return updated, nil
}
