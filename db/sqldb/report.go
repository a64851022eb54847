package sqldb

import (
	"context"
	"time"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/pkg/errors"
	"github.com/upper/db/v4"
)

type ReportDB struct {
	store
}

func getReportDB(s store) *ReportDB {
	return &ReportDB{s}
}

func (rdb *ReportDB) CreateReport(ctx context.Context, report *model.Report) (int64, error) {
	now := time.Now().UTC()
	id, err := insertId(ctx, rdb.sess, rdb.dialect, "report",
		[]string{"reporter_id", "target_type", "target_id", "reason", "details", "status", "created_at"},
		report.ReporterId, report.TargetType, report.TargetId, report.Reason, report.Details, model.ReportPending, now)
	if err != nil {
		return 0, errors.Wrap(err, "inserting report")
	}
	report.Id, report.Status, report.CreatedAt = id, model.ReportPending, now
	return id, nil
}

func (rdb *ReportDB) GetReport(ctx context.Context, id int64) (*model.Report, error) {
	var report model.Report
	if err := rdb.sess.SQL().
		SelectFrom("report").
		Where("id = ?", id).
		IteratorContext(ctx).
		One(&report); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// GetReports lists reports newest first; an empty status lists all.
func (rdb *ReportDB) GetReports(ctx context.Context, status model.ReportStatus, page appDb.Page) ([]*model.Report, int64, error) {
	var where []interface{}
	if status != "" {
		where = []interface{}{"status = ?", status}
	}
	total, err := count(ctx, rdb.sess.SQL().
		Select(db.Raw("COUNT(*) AS total")).
		From("report").
		Where(where...))
	if err != nil {
		return nil, 0, err
	}
	reports := []*model.Report{}
	if err := rdb.sess.SQL().
		SelectFrom("report").
		Where(where...).
		OrderBy("created_at DESC", "id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		IteratorContext(ctx).
		All(&reports); err != nil {
		return nil, 0, errors.Wrap(err, "listing reports")
	}
	return reports, total, nil
}

func (rdb *ReportDB) UpdateReportStatus(ctx context.Context, id int64, status model.ReportStatus, resolverId int64) error {
	set := map[string]interface{}{
		"status":      status,
		"resolved_by": nil,
		"resolved_at": nil,
	}
	if status != model.ReportPending {
		set["resolved_by"] = resolverId
		set["resolved_at"] = time.Now().UTC()
	}
	return updateById(ctx, rdb.sess, "report", id, set)
}

var reportTargetQueries = map[model.TargetType]string{
	model.TargetPost:    "SELECT author_id FROM post WHERE id = ?",
	model.TargetComment: "SELECT author_id FROM comment WHERE id = ?",
	model.TargetUser:    "SELECT id FROM person WHERE id = ?",
}

func (rdb *ReportDB) GetTargetOwner(ctx context.Context, targetType model.TargetType, targetId int64) (int64, bool, error) {
	query, ok := reportTargetQueries[targetType]
	if !ok {
		return 0, false, errors.Errorf("unreportable target type %q", targetType)
	}
	row, err := rdb.sess.SQL().QueryRowContext(ctx, query, targetId)
	if err != nil {
		return 0, false, err
	}
	var ownerId int64
	if err := row.Scan(&ownerId); err != nil {
		if isNoRows(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return ownerId, true, nil
}
