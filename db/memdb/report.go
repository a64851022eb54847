package memdb

import (
	"context"
	"fmt"
	"sort"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
)

func (m *MemDB) CreateReport(_ context.Context, report *model.Report) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.reports {
		if existing.ReporterId == report.ReporterId && existing.TargetType == report.TargetType && existing.TargetId == report.TargetId {
			return 0, &appDb.DupKeyError{Key: "report_once_idx"}
		}
	}
	report.Id, report.Status, report.CreatedAt = m.id("report"), model.ReportPending, m.now()
	stored := *report
	m.reports[report.Id] = &stored
	return report.Id, nil
}

func (m *MemDB) GetReport(_ context.Context, id int64) (*model.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	report, ok := m.reports[id]
	if !ok {
		return nil, nil
	}
	copied := *report
	return &copied, nil
}

func (m *MemDB) GetReports(_ context.Context, status model.ReportStatus, page appDb.Page) ([]*model.Report, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*model.Report
	for _, report := range m.reports {
		if status != "" && report.Status != status {
			continue
		}
		copied := *report
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		return newestFirst(matched[i].CreatedAt, matched[i].Id, matched[j].CreatedAt, matched[j].Id)
	})
	items, total := paginate(matched, page)
	return items, total, nil
}

func (m *MemDB) UpdateReportStatus(_ context.Context, id int64, status model.ReportStatus, resolverId int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	report, ok := m.reports[id]
	if !ok {
		return appDb.ErrNotFound
	}
	report.Status = status
	if status == model.ReportPending {
		report.ResolvedBy, report.ResolvedAt = nil, nil
		return nil
	}
	now := m.now()
	resolver := resolverId
	report.ResolvedBy, report.ResolvedAt = &resolver, &now
	return nil
}

func (m *MemDB) GetTargetOwner(_ context.Context, targetType model.TargetType, targetId int64) (int64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch targetType {
	case model.TargetPost:
		if post, ok := m.posts[targetId]; ok {
			return post.authorId, true, nil
		}
	case model.TargetComment:
		if comment, ok := m.comments[targetId]; ok {
			return comment.authorId, true, nil
		}
	case model.TargetUser:
		if _, ok := m.users[targetId]; ok {
			return targetId, true, nil
		}
	default:
		return 0, false, fmt.Errorf("unreportable target type %q", targetType)
	}
	return 0, false, nil
}
