package memdb

import (
	"context"
	"sort"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
)

func (m *MemDB) CreateNotifications(_ context.Context, notifications []*model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for _, notification := range notifications {
		stored := *notification
		stored.Id, stored.CreatedAt, stored.IsRead = m.id("notification"), now, false
		stored.Actor = nil
		notification.Id, notification.CreatedAt = stored.Id, now
		m.notifications[stored.Id] = &stored
	}
	return nil
}

// deleteNotificationsWhere removes matching rows. Callers hold mu.
func (m *MemDB) deleteNotificationsWhere(match func(n *model.Notification) bool) {
	for id, notification := range m.notifications {
		if match(notification) {
			delete(m.notifications, id)
		}
	}
}

func (m *MemDB) GetNotifications(_ context.Context, userId int64, unreadOnly bool, page appDb.Page) ([]*model.Notification, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*model.Notification
	for _, notification := range m.notifications {
		if notification.RecipientId != userId || (unreadOnly && notification.IsRead) {
			continue
		}
		copied := *notification
		if copied.ActorId != nil {
			copied.Actor = m.summary(*copied.ActorId)
		}
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		return newestFirst(matched[i].CreatedAt, matched[i].Id, matched[j].CreatedAt, matched[j].Id)
	})
	items, total := paginate(matched, page)
	return items, total, nil
}

func (m *MemDB) CountUnread(_ context.Context, userId int64) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total int64
	for _, notification := range m.notifications {
		if notification.RecipientId == userId && !notification.IsRead {
			total++
		}
	}
	return total, nil
}

// owned returns the user's notification. Callers hold mu.
func (m *MemDB) owned(userId int64, id int64) (*model.Notification, error) {
	notification, ok := m.notifications[id]
	if !ok || notification.RecipientId != userId {
		return nil, appDb.ErrNotFound
	}
	return notification, nil
}

func (m *MemDB) MarkRead(_ context.Context, userId int64, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	notification, err := m.owned(userId, id)
	if err != nil {
		return err
	}
	notification.IsRead = true
	return nil
}

func (m *MemDB) MarkAllRead(_ context.Context, userId int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated int64
	for _, notification := range m.notifications {
		if notification.RecipientId == userId && !notification.IsRead {
			notification.IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (m *MemDB) DeleteNotification(_ context.Context, userId int64, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.owned(userId, id); err != nil {
		return err
	}
	delete(m.notifications, id)
	return nil
}

func (m *MemDB) FanOutAnnouncement(_ context.Context, announcement *model.Announcement) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	actorId := announcement.AuthorId
	var created int64
	for _, user := range m.users {
		if user.IsBanned || user.Id == announcement.AuthorId {
			continue
		}
		id := m.id("notification")
		m.notifications[id] = &model.Notification{
			Id:          id,
			RecipientId: user.Id,
			ActorId:     &actorId,
			Type:        model.NotificationAnnouncement,
			Message:     announcement.Title,
			TargetType:  model.TargetAnnouncement,
			TargetId:    announcement.Id,
			CreatedAt:   now,
		}
		created++
	}
	return created, nil
}
