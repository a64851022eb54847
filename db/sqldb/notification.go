package sqldb

import (
	"context"
	"time"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/db/dao"
	"github.com/civicconnect/civicconnect-be/metrics"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/pkg/errors"
	"github.com/upper/db/v4"
)

type NotificationDB struct {
	store
}

func getNotificationDB(s store) *NotificationDB {
	return &NotificationDB{s}
}

const notificationBatchSize = 100

func (ndb *NotificationDB) CreateNotifications(ctx context.Context, notifications []*model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	now := time.Now().UTC()
	batchInserter := ndb.sess.WithContext(ctx).SQL().
		InsertInto("notification").
		Columns("recipient_id", "actor_id", "type", "message", "target_type", "target_id", "is_read", "created_at").
		Batch(notificationBatchSize)
	go func() {
		defer batchInserter.Done()
		for _, n := range notifications {
			n.CreatedAt = now
			batchInserter.Values(n.RecipientId, dao.FromPtr(n.ActorId), n.Type, n.Message, n.TargetType, n.TargetId, false, now)
		}
	}()
	return errors.Wrap(batchInserter.Wait(), "inserting notifications")
}

type flattenedNotification struct {
	Id          int64                  `db:"id"`
	RecipientId int64                  `db:"recipient_id"`
	ActorId     dao.NullInt64          `db:"actor_id"`
	Type        model.NotificationType `db:"type"`
	Message     string                 `db:"message"`
	TargetType  model.TargetType       `db:"target_type"`
	TargetId    int64                  `db:"target_id"`
	IsRead      bool                   `db:"is_read"`
	CreatedAt   time.Time              `db:"created_at"`
	ActorName   dao.NullString         `db:"actor_name"`
	ActorHandle dao.NullString         `db:"actor_username"`
	ActorAvatar dao.NullString         `db:"actor_avatar"`
}

func (ndb *NotificationDB) GetNotifications(ctx context.Context, userId int64, unreadOnly bool, page appDb.Page) ([]*model.Notification, int64, error) {
	where := []interface{}{"n.recipient_id = ?", userId}
	if unreadOnly {
		where = []interface{}{"n.recipient_id = ? AND n.is_read = ?", userId, false}
	}

	total, err := count(ctx, ndb.sess.SQL().
		Select(db.Raw("COUNT(*) AS total")).
		From("notification AS n").
		Where(where...))
	if err != nil {
		return nil, 0, err
	}

	var rows []flattenedNotification
	if err := ndb.sess.SQL().
		Select("n.*", "u.name AS actor_name", "u.username AS actor_username", "u.avatar AS actor_avatar").
		From("notification AS n").
		LeftJoin("person AS u").On("n.actor_id = u.id").
		Where(where...).
		OrderBy("n.created_at DESC", "n.id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		IteratorContext(ctx).
		All(&rows); err != nil {
		return nil, 0, errors.Wrap(err, "listing notifications")
	}

	notifications := make([]*model.Notification, len(rows))
	for i, row := range rows {
		notification := &model.Notification{
			Id:          row.Id,
			RecipientId: row.RecipientId,
			ActorId:     row.ActorId.AsPtr(),
			Type:        row.Type,
			Message:     row.Message,
			TargetType:  row.TargetType,
			TargetId:    row.TargetId,
			IsRead:      row.IsRead,
			CreatedAt:   row.CreatedAt,
		}
		if notification.ActorId != nil && row.ActorHandle.Valid {
			actor := flattenedAuthor{
				AuthorId:       *notification.ActorId,
				AuthorUsername: row.ActorHandle.OrEmpty(),
				AuthorName:     row.ActorName.OrEmpty(),
				AuthorAvatar:   row.ActorAvatar.OrEmpty(),
			}
			notification.Actor = actor.summary()
		}
		notifications[i] = notification
	}
	return notifications, total, nil
}

func (ndb *NotificationDB) CountUnread(ctx context.Context, userId int64) (int64, error) {
	return count(ctx, ndb.sess.SQL().
		Select(db.Raw("COUNT(*) AS total")).
		From("notification").
		Where("recipient_id = ? AND is_read = ?", userId, false))
}

// MarkRead is idempotent; it only fails when the notification is not the
// user's.
func (ndb *NotificationDB) MarkRead(ctx context.Context, userId int64, id int64) error {
	if err := ndb.ensureOwned(ctx, userId, id); err != nil {
		return err
	}
	_, err := ndb.sess.SQL().
		Update("notification").
		Set("is_read", true).
		Where("id = ? AND recipient_id = ?", id, userId).
		ExecContext(ctx)
	return err
}

func (ndb *NotificationDB) MarkAllRead(ctx context.Context, userId int64) (int64, error) {
	res, err := ndb.sess.SQL().
		Update("notification").
		Set("is_read", true).
		Where("recipient_id = ? AND is_read = ?", userId, false).
		ExecContext(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (ndb *NotificationDB) DeleteNotification(ctx context.Context, userId int64, id int64) error {
	res, err := ndb.sess.SQL().
		DeleteFrom("notification").
		Where("id = ? AND recipient_id = ?", id, userId).
		ExecContext(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return appDb.ErrNotFound
	}
	return nil
}

func (ndb *NotificationDB) ensureOwned(ctx context.Context, userId int64, id int64) error {
	total, err := count(ctx, ndb.sess.SQL().
		Select(db.Raw("COUNT(*) AS total")).
		From("notification").
		Where("id = ? AND recipient_id = ?", id, userId))
	if err != nil {
		return err
	}
	if total == 0 {
		return appDb.ErrNotFound
	}
	return nil
}

// FanOutAnnouncement writes one row per recipient with a single
// INSERT ... SELECT.
func (ndb *NotificationDB) FanOutAnnouncement(ctx context.Context, announcement *model.Announcement) (int64, error) {
	defer metrics.TrackDBOperation("announcement_fan_out")(time.Now())
	res, err := ndb.sess.SQL().ExecContext(ctx, `
INSERT INTO notification (recipient_id, actor_id, type, message, target_type, target_id, is_read, created_at)
	SELECT id, ?, ?, ?, ?, ?, ?, ?
	FROM person
	WHERE is_banned = ? AND id <> ?
`,
		announcement.AuthorId, model.NotificationAnnouncement, announcement.Title,
		model.TargetAnnouncement, announcement.Id, false, time.Now().UTC(),
		false, announcement.AuthorId)
	if err != nil {
		return 0, errors.Wrap(err, "fanning out announcement")
	}
	return res.RowsAffected()
}
