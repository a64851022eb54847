package sqldb

import (
	"context"
	"database/sql"
	"time"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/pkg/errors"
	"github.com/upper/db/v4"
)

// ListingDB covers schemes, jobs and events.
type ListingDB struct {
	store
}

func getListingDB(s store) *ListingDB {
	return &ListingDB{s}
}

type filter func(sel db.Selector) db.Selector

// listPage runs the count and the page query over the same filters.
func (ldb *ListingDB) listPage(ctx context.Context, table string, apply filter, page appDb.Page, dest interface{}, orderBy ...interface{}) (int64, error) {
	total, err := count(ctx, apply(ldb.sess.SQL().
		Select(db.Raw("COUNT(*) AS total")).
		From(table)))
	if err != nil {
		return 0, err
	}
	if err := apply(ldb.sess.SQL().SelectFrom(table)).
		OrderBy(orderBy...).
		Limit(page.Limit).
		Offset(page.Offset()).
		IteratorContext(ctx).
		All(dest); err != nil {
		return 0, errors.Wrapf(err, "listing %s", table)
	}
	return total, nil
}

func (ldb *ListingDB) getOne(ctx context.Context, table string, id int64, dest interface{}) (bool, error) {
	if err := ldb.sess.SQL().
		SelectFrom(table).
		Where("id = ?", id).
		IteratorContext(ctx).
		One(dest); err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (ldb *ListingDB) CreateScheme(ctx context.Context, scheme *model.Scheme) (int64, error) {
	now := time.Now().UTC()
	id, err := insertId(ctx, ldb.sess, ldb.dialect, "scheme",
		[]string{"title", "description", "category", "department", "eligibility", "benefits", "application_url", "deadline", "created_by", "created_at", "updated_at"},
		scheme.Title, scheme.Description, scheme.Category, scheme.Department, scheme.Eligibility, scheme.Benefits,
		scheme.ApplicationUrl, scheme.Deadline, scheme.CreatedBy, now, now)
	if err != nil {
		return 0, errors.Wrap(err, "inserting scheme")
	}
	scheme.Id, scheme.CreatedAt, scheme.UpdatedAt = id, now, now
	return id, nil
}

func (ldb *ListingDB) GetScheme(ctx context.Context, id int64) (*model.Scheme, error) {
	var scheme model.Scheme
	if found, err := ldb.getOne(ctx, "scheme", id, &scheme); err != nil || !found {
		return nil, err
	}
	return &scheme, nil
}

func (ldb *ListingDB) ListSchemes(ctx context.Context, query *appDb.ListingQuery) ([]*model.Scheme, int64, error) {
	apply := func(sel db.Selector) db.Selector {
		if query.Q != "" {
			pattern := likePattern(query.Q)
			sel = sel.And("(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(department) LIKE ?)", pattern, pattern, pattern)
		}
		if query.Category != "" {
			sel = sel.And("LOWER(category) = LOWER(?)", query.Category)
		}
		return sel
	}
	schemes := []*model.Scheme{}
	total, err := ldb.listPage(ctx, "scheme", apply, query.Page, &schemes, "created_at DESC", "id DESC")
	return schemes, total, err
}

func (ldb *ListingDB) UpdateScheme(ctx context.Context, scheme *model.Scheme) error {
	scheme.UpdatedAt = time.Now().UTC()
	return updateById(ctx, ldb.sess, "scheme", scheme.Id, map[string]interface{}{
		"title":           scheme.Title,
		"description":     scheme.Description,
		"category":        scheme.Category,
		"department":      scheme.Department,
		"eligibility":     scheme.Eligibility,
		"benefits":        scheme.Benefits,
		"application_url": scheme.ApplicationUrl,
		"deadline":        scheme.Deadline,
		"updated_at":      scheme.UpdatedAt,
	})
}

func (ldb *ListingDB) DeleteScheme(ctx context.Context, id int64) error {
	return deleteById(ctx, ldb.sess, "scheme", id)
}

func (ldb *ListingDB) CreateJob(ctx context.Context, job *model.Job) (int64, error) {
	now := time.Now().UTC()
	id, err := insertId(ctx, ldb.sess, ldb.dialect, "job",
		[]string{"title", "company", "location", "job_type", "description", "salary_range", "apply_url", "posted_by", "is_active", "created_at", "updated_at"},
		job.Title, job.Company, job.Location, job.JobType, job.Description, job.SalaryRange, job.ApplyUrl,
		job.PostedBy, job.IsActive, now, now)
	if err != nil {
		return 0, errors.Wrap(err, "inserting job")
	}
	job.Id, job.CreatedAt, job.UpdatedAt = id, now, now
	return id, nil
}

func (ldb *ListingDB) GetJob(ctx context.Context, id int64) (*model.Job, error) {
	var job model.Job
	if found, err := ldb.getOne(ctx, "job", id, &job); err != nil || !found {
		return nil, err
	}
	return &job, nil
}

func (ldb *ListingDB) ListJobs(ctx context.Context, query *appDb.JobsQuery) ([]*model.Job, int64, error) {
	apply := func(sel db.Selector) db.Selector {
		if query.Q != "" {
			pattern := likePattern(query.Q)
			sel = sel.And("(LOWER(title) LIKE ? OR LOWER(company) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern, pattern)
		}
		if query.JobType != "" {
			sel = sel.And("job_type = ?", query.JobType)
		}
		if query.Location != "" {
			sel = sel.And("LOWER(location) LIKE ?", likePattern(query.Location))
		}
		if query.ActiveOnly {
			sel = sel.And("is_active = ?", true)
		}
		return sel
	}
	jobs := []*model.Job{}
	total, err := ldb.listPage(ctx, "job", apply, query.Page, &jobs, "created_at DESC", "id DESC")
	return jobs, total, err
}

func (ldb *ListingDB) UpdateJob(ctx context.Context, job *model.Job) error {
	job.UpdatedAt = time.Now().UTC()
	return updateById(ctx, ldb.sess, "job", job.Id, map[string]interface{}{
		"title":        job.Title,
		"company":      job.Company,
		"location":     job.Location,
		"job_type":     job.JobType,
		"description":  job.Description,
		"salary_range": job.SalaryRange,
		"apply_url":    job.ApplyUrl,
		"is_active":    job.IsActive,
		"updated_at":   job.UpdatedAt,
	})
}

func (ldb *ListingDB) DeleteJob(ctx context.Context, id int64) error {
	return deleteById(ctx, ldb.sess, "job", id)
}

func (ldb *ListingDB) ApplyToJob(ctx context.Context, application *model.JobApplication) error {
	application.CreatedAt = time.Now().UTC()
	_, err := ldb.sess.SQL().
		InsertInto("job_application").
		Columns("job_id", "applicant_id", "cover_letter", "created_at").
		Values(application.JobId, application.ApplicantId, application.CoverLetter, application.CreatedAt).
		ExecContext(ctx)
	return err
}

type flattenedApplication struct {
	model.JobApplication `db:",inline"`
	flattenedAuthor      `db:",inline"`
}

func (ldb *ListingDB) GetApplications(ctx context.Context, jobId int64, page appDb.Page) ([]*model.JobApplication, int64, error) {
	total, err := count(ctx, ldb.sess.SQL().
		Select(db.Raw("COUNT(*) AS total")).
		From("job_application").
		Where("job_id = ?", jobId))
	if err != nil {
		return nil, 0, err
	}
	var rows []flattenedApplication
	if err := ldb.sess.SQL().
		Select(append([]interface{}{"a.job_id", "a.applicant_id", "a.cover_letter", "a.created_at"}, authorColumns...)...).
		From("job_application AS a").
		Join("person AS u").On("a.applicant_id = u.id").
		Where("a.job_id = ?", jobId).
		OrderBy("a.created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		IteratorContext(ctx).
		All(&rows); err != nil {
		return nil, 0, errors.Wrap(err, "listing applications")
	}
	applications := make([]*model.JobApplication, len(rows))
	for i := range rows {
		application := rows[i].JobApplication
		application.Applicant = rows[i].flattenedAuthor.summary()
		applications[i] = &application
	}
	return applications, total, nil
}

func (ldb *ListingDB) CreateEvent(ctx context.Context, event *model.Event) (int64, error) {
	now := time.Now().UTC()
	id, err := insertId(ctx, ldb.sess, ldb.dialect, "event",
		[]string{"title", "description", "location", "is_online", "starts_at", "ends_at", "organizer_id", "attendee_count", "created_at", "updated_at"},
		event.Title, event.Description, event.Location, event.IsOnline, event.StartsAt.UTC(), event.EndsAt,
		event.OrganizerId, 0, now, now)
	if err != nil {
		return 0, errors.Wrap(err, "inserting event")
	}
	event.Id, event.CreatedAt, event.UpdatedAt = id, now, now
	return id, nil
}

func (ldb *ListingDB) GetEvent(ctx context.Context, id int64, viewerId int64) (*model.Event, error) {
	var event model.Event
	if found, err := ldb.getOne(ctx, "event", id, &event); err != nil || !found {
		return nil, err
	}
	if err := ldb.markAttending(ctx, viewerId, []*model.Event{&event}); err != nil {
		return nil, err
	}
	return &event, nil
}

func (ldb *ListingDB) ListEvents(ctx context.Context, query *appDb.EventsQuery) ([]*model.Event, int64, error) {
	apply := func(sel db.Selector) db.Selector {
		if query.Q != "" {
			pattern := likePattern(query.Q)
			sel = sel.And("(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?)", pattern, pattern, pattern)
		}
		if query.UpcomingOnly {
			sel = sel.And("starts_at >= ?", query.Now.UTC())
		}
		return sel
	}
	events := []*model.Event{}
	total, err := ldb.listPage(ctx, "event", apply, query.Page, &events, "starts_at", "id")
	if err != nil {
		return nil, 0, err
	}
	return events, total, ldb.markAttending(ctx, query.ViewerId, events)
}

func (ldb *ListingDB) markAttending(ctx context.Context, viewerId int64, events []*model.Event) error {
	if viewerId == 0 || len(events) == 0 {
		return nil
	}
	byId := make(map[int64]*model.Event, len(events))
	ids := make([]int64, len(events))
	for i, event := range events {
		byId[event.Id] = event
		ids[i] = event.Id
	}
	var rows []struct {
		EventId int64 `db:"event_id"`
	}
	if err := ldb.sess.SQL().
		Select("event_id").
		From("event_attendee").
		Where("user_id = ? AND event_id IN ?", viewerId, ids).
		IteratorContext(ctx).
		All(&rows); err != nil {
		return err
	}
	for _, row := range rows {
		byId[row.EventId].IsAttending = true
	}
	return nil
}

func (ldb *ListingDB) UpdateEvent(ctx context.Context, event *model.Event) error {
	event.UpdatedAt = time.Now().UTC()
	return updateById(ctx, ldb.sess, "event", event.Id, map[string]interface{}{
		"title":       event.Title,
		"description": event.Description,
		"location":    event.Location,
		"is_online":   event.IsOnline,
		"starts_at":   event.StartsAt.UTC(),
		"ends_at":     event.EndsAt,
		"updated_at":  event.UpdatedAt,
	})
}

func (ldb *ListingDB) DeleteEvent(ctx context.Context, id int64) error {
	return deleteById(ctx, ldb.sess, "event", id)
}

func (ldb *ListingDB) Attend(ctx context.Context, eventId int64, userId int64) error {
	return ldb.sess.TxContext(ctx, func(sess db.Session) error {
		if _, err := sess.SQL().
			InsertInto("event_attendee").
			Columns("event_id", "user_id", "created_at").
			Values(eventId, userId, time.Now().UTC()).
			ExecContext(ctx); err != nil {
			return err
		}
		_, err := sess.SQL().
			Update("event").
			Set("attendee_count = attendee_count + ?", 1).
			Where("id = ?", eventId).
			ExecContext(ctx)
		return err
	}, &sql.TxOptions{})
}

func (ldb *ListingDB) Unattend(ctx context.Context, eventId int64, userId int64) (bool, error) {
	var removed bool
	err := ldb.sess.TxContext(ctx, func(sess db.Session) error {
		res, err := sess.SQL().
			DeleteFrom("event_attendee").
			Where("event_id = ? AND user_id = ?", eventId, userId).
			ExecContext(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil || n == 0 {
			return err
		}
		removed = true
		_, err = sess.SQL().
			Update("event").
			Set("attendee_count = attendee_count - ?", n).
			Where("id = ? AND attendee_count >= ?", eventId, n).
			ExecContext(ctx)
		return err
	}, &sql.TxOptions{})
	return removed, err
}
