package controllers

import (
	"context"
	"fmt"
	"strings"

	"github.com/civicconnect/civicconnect-be/logger"
	"github.com/civicconnect/civicconnect-be/metrics"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type NotifierDatabase interface {
	CreateNotifications(ctx context.Context, notifications []*model.Notification) error
	GetUsersByUsernames(ctx context.Context, usernames []string) ([]*model.User, error)
}

// Notifier writes notification rows. Nobody is notified about their own
// actions.
type Notifier struct {
	db NotifierDatabase
}

func NewNotifier(db NotifierDatabase) *Notifier {
	return &Notifier{db: db}
}

func (n *Notifier) Notify(ctx context.Context, notifications ...*model.Notification) error {
	kept := make([]*model.Notification, 0, len(notifications))
	for _, notification := range notifications {
		if notification == nil {
			continue
		}
		if notification.ActorId != nil && *notification.ActorId == notification.RecipientId {
			continue
		}
		kept = append(kept, notification)
	}
	if len(kept) == 0 {
		return nil
	}
	if err := n.db.CreateNotifications(ctx, kept); err != nil {
		return errors.Wrap(err, "creating notifications")
	}
	counts := make(map[model.NotificationType]int)
	for _, notification := range kept {
		counts[notification.Type]++
	}
	for notificationType, count := range counts {
		metrics.RecordNotifications(string(notificationType), count)
	}
	return nil
}

// NotifyMentions sends one MENTION per handle that resolves to a user other
// than the actor, in the order the handles were written. It returns how
// many were sent.
func (n *Notifier) NotifyMentions(ctx context.Context, actor *model.User, handles []string, targetType model.TargetType, targetId int64) (int, error) {
	if len(handles) == 0 {
		return 0, nil
	}
	users, err := n.db.GetUsersByUsernames(ctx, handles)
	if err != nil {
		return 0, errors.Wrap(err, "resolving mentions")
	}
	byHandle := make(map[string]*model.User, len(users))
	for _, user := range users {
		byHandle[strings.ToLower(user.Username)] = user
	}

	actorId := actor.Id
	seen := make(map[int64]bool)
	var notifications []*model.Notification
	for _, handle := range handles {
		user, ok := byHandle[strings.ToLower(handle)]
		if !ok || user.Id == actor.Id || seen[user.Id] {
			continue
		}
		seen[user.Id] = true
		notifications = append(notifications, &model.Notification{
			RecipientId: user.Id,
			ActorId:     &actorId,
			Type:        model.NotificationMention,
			Message:     fmt.Sprintf("%s mentioned you", actor.Name),
			TargetType:  targetType,
			TargetId:    targetId,
		})
	}
	if err := n.Notify(ctx, notifications...); err != nil {
		return 0, err
	}
	return len(notifications), nil
}

// logNotifyErr records a failed notification. The write that triggered it
// has already committed, so the request still succeeds.
func logNotifyErr(ctx context.Context, err error) {
	if err != nil {
		logger.FromContext(ctx).Warn("notification not delivered", zap.Error(err))
	}
}

func actorNotification(actor *model.User, recipientId int64, notificationType model.NotificationType, message string, targetType model.TargetType, targetId int64) *model.Notification {
	actorId := actor.Id
	return &model.Notification{
		RecipientId: recipientId,
		ActorId:     &actorId,
		Type:        notificationType,
		Message:     message,
		TargetType:  targetType,
		TargetId:    targetId,
	}
}
