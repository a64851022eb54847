package sqldb

import (
	"context"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/pkg/errors"
	"github.com/upper/db/v4"
)

type AdminDB struct {
	store
}

func getAdminDB(s store) *AdminDB {
	return &AdminDB{s}
}

func (adb *AdminDB) GetStats(ctx context.Context) (*model.Stats, error) {
	stats := &model.Stats{}
	counters := []struct {
		dest  *int64
		table string
		where []interface{}
	}{
		{&stats.Users, "person", nil},
		{&stats.Posts, "post", nil},
		{&stats.Comments, "comment", nil},
		{&stats.Jobs, "job", nil},
		{&stats.Events, "event", nil},
		{&stats.Schemes, "scheme", nil},
		{&stats.PendingReports, "report", []interface{}{"status = ?", model.ReportPending}},
	}
	for _, counter := range counters {
		total, err := count(ctx, adb.sess.SQL().
			Select(db.Raw("COUNT(*) AS total")).
			From(counter.table).
			Where(counter.where...))
		if err != nil {
			return nil, errors.Wrapf(err, "counting %s", counter.table)
		}
		*counter.dest = total
	}
	return stats, nil
}

func (adb *AdminDB) ListUsers(ctx context.Context, q string, page appDb.Page) ([]*model.User, int64, error) {
	var where []interface{}
	if q != "" {
		pattern := likePattern(q)
		where = []interface{}{"(LOWER(username) LIKE ? OR LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", pattern, pattern, pattern}
	}
	total, err := count(ctx, adb.sess.SQL().
		Select(db.Raw("COUNT(*) AS total")).
		From("person").
		Where(where...))
	if err != nil {
		return nil, 0, err
	}
	users := []*model.User{}
	if err := adb.sess.SQL().
		SelectFrom("person").
		Where(where...).
		OrderBy("created_at DESC", "id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		IteratorContext(ctx).
		All(&users); err != nil {
		return nil, 0, errors.Wrap(err, "listing users")
	}
	return users, total, nil
}
