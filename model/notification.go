package model

import "time"

type NotificationType string

const (
	NotificationMention        NotificationType = "MENTION"
	NotificationComment        NotificationType = "COMMENT"
	NotificationReply          NotificationType = "REPLY"
	NotificationReaction       NotificationType = "REACTION"
	NotificationConnection     NotificationType = "CONNECTION"
	NotificationMessage        NotificationType = "MESSAGE"
	NotificationAnnouncement   NotificationType = "ANNOUNCEMENT"
	NotificationJobApplication NotificationType = "JOB_APPLICATION"
	NotificationEventRSVP      NotificationType = "EVENT_RSVP"
)

type TargetType string

const (
	TargetPost         TargetType = "POST"
	TargetComment      TargetType = "COMMENT"
	TargetUser         TargetType = "USER"
	TargetConversation TargetType = "CONVERSATION"
	TargetAnnouncement TargetType = "ANNOUNCEMENT"
	TargetJob          TargetType = "JOB"
	TargetEvent        TargetType = "EVENT"
)

type Notification struct {
	Id          int64            `db:"id,omitempty" json:"id"`
	RecipientId int64            `db:"recipient_id" json:"recipientId"`
	ActorId     *int64           `db:"actor_id" json:"actorId"`
	Type        NotificationType `db:"type" json:"type"`
	Message     string           `db:"message" json:"message"`
	TargetType  TargetType       `db:"target_type" json:"targetType"`
	TargetId    int64            `db:"target_id" json:"targetId"`
	IsRead      bool             `db:"is_read" json:"isRead"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
	Actor       *UserSummary     `db:"-" json:"actor,omitempty"`
}
