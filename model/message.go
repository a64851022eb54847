package model

import "time"

// Conversation is a 1:1 thread. UserAId is always the smaller id.
type Conversation struct {
	Id            int64     `db:"id,omitempty" json:"id"`
	UserAId       int64     `db:"user_a_id" json:"-"`
	UserBId       int64     `db:"user_b_id" json:"-"`
	LastMessageAt time.Time `db:"last_message_at" json:"lastMessageAt"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

func (c *Conversation) HasParticipant(userId int64) bool {
	return c.UserAId == userId || c.UserBId == userId
}

// OtherParticipant assumes userId is a participant.
func (c *Conversation) OtherParticipant(userId int64) int64 {
	if c.UserAId == userId {
		return c.UserBId
	}
	return c.UserAId
}

// OrderedPair returns the two ids as stored on a conversation row.
func OrderedPair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}

type Message struct {
	Id             int64     `db:"id,omitempty" json:"id"`
	ConversationId int64     `db:"conversation_id" json:"conversationId"`
	SenderId       int64     `db:"sender_id" json:"senderId"`
	Content        string    `db:"content" json:"content"`
	IsRead         bool      `db:"is_read" json:"isRead"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

type ConversationSummary struct {
	*Conversation
	Participant *UserSummary `json:"participant"`
	LastMessage *Message     `json:"lastMessage"`
	UnreadCount int64        `json:"unreadCount"`
}
