package memdb

import (
	"context"
	"sort"
	"time"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
)

func (m *MemDB) CreateAnnouncement(_ context.Context, announcement *model.Announcement) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	announcement.Id, announcement.CreatedAt, announcement.UpdatedAt = m.id("announcement"), now, now
	stored := *announcement
	m.announcements[announcement.Id] = &stored
	return announcement.Id, nil
}

func (m *MemDB) GetAnnouncement(_ context.Context, id int64) (*model.Announcement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	announcement, ok := m.announcements[id]
	if !ok {
		return nil, nil
	}
	copied := *announcement
	return &copied, nil
}

func (m *MemDB) GetActiveAnnouncements(_ context.Context, now time.Time, urgentOnly bool) ([]*model.Announcement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	active := []*model.Announcement{}
	for _, announcement := range m.announcements {
		if !announcement.LiveAt(now) || (urgentOnly && !announcement.IsUrgent) {
			continue
		}
		copied := *announcement
		active = append(active, &copied)
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].IsUrgent != active[j].IsUrgent {
			return active[i].IsUrgent
		}
		return newestFirst(active[i].CreatedAt, active[i].Id, active[j].CreatedAt, active[j].Id)
	})
	return active, nil
}

func (m *MemDB) UpdateAnnouncement(_ context.Context, announcement *model.Announcement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.announcements[announcement.Id]
	if !ok {
		return appDb.ErrNotFound
	}
	announcement.AuthorId, announcement.CreatedAt, announcement.UpdatedAt = existing.AuthorId, existing.CreatedAt, m.now()
	stored := *announcement
	m.announcements[announcement.Id] = &stored
	return nil
}

func (m *MemDB) DeleteAnnouncement(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.announcements[id]; !ok {
		return appDb.ErrNotFound
	}
	delete(m.announcements, id)
	return nil
}
