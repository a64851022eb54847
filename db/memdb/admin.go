package memdb

import (
	"context"
	"sort"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
)

func (m *MemDB) GetStats(_ context.Context) (*model.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &model.Stats{
		Users:    int64(len(m.users)),
		Posts:    int64(len(m.posts)),
		Comments: int64(len(m.comments)),
		Jobs:     int64(len(m.jobs)),
		Events:   int64(len(m.events)),
		Schemes:  int64(len(m.schemes)),
	}
	for _, report := range m.reports {
		if report.Status == model.ReportPending {
			stats.PendingReports++
		}
	}
	return stats, nil
}

func (m *MemDB) ListUsers(_ context.Context, q string, page appDb.Page) ([]*model.User, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*model.User
	for _, user := range m.users {
		if q != "" && !contains(user.Username, q) && !contains(user.Name, q) && !contains(user.Email, q) {
			continue
		}
		copied := *user
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		return newestFirst(matched[i].CreatedAt, matched[i].Id, matched[j].CreatedAt, matched[j].Id)
	})
	items, total := paginate(matched, page)
	return items, total, nil
}
