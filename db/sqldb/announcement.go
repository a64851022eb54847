package sqldb

import (
	"context"
	"time"

	"github.com/civicconnect/civicconnect-be/model"
	"github.com/pkg/errors"
)

type AnnouncementDB struct {
	store
}

func getAnnouncementDB(s store) *AnnouncementDB {
	return &AnnouncementDB{s}
}

func (adb *AnnouncementDB) CreateAnnouncement(ctx context.Context, announcement *model.Announcement) (int64, error) {
	now := time.Now().UTC()
	id, err := insertId(ctx, adb.sess, adb.dialect, "announcement",
		[]string{"author_id", "title", "content", "is_urgent", "is_active", "expires_at", "created_at", "updated_at"},
		announcement.AuthorId, announcement.Title, announcement.Content, announcement.IsUrgent,
		announcement.IsActive, announcement.ExpiresAt, now, now)
	if err != nil {
		return 0, errors.Wrap(err, "inserting announcement")
	}
	announcement.Id, announcement.CreatedAt, announcement.UpdatedAt = id, now, now
	return id, nil
}

func (adb *AnnouncementDB) GetAnnouncement(ctx context.Context, id int64) (*model.Announcement, error) {
	var announcement model.Announcement
	if err := adb.sess.SQL().
		SelectFrom("announcement").
		Where("id = ?", id).
		IteratorContext(ctx).
		One(&announcement); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &announcement, nil
}

func (adb *AnnouncementDB) GetActiveAnnouncements(ctx context.Context, now time.Time, urgentOnly bool) ([]*model.Announcement, error) {
	selector := adb.sess.SQL().
		SelectFrom("announcement").
		Where("is_active = ?", true).
		And("(expires_at IS NULL OR expires_at > ?)", now.UTC())
	if urgentOnly {
		selector = selector.And("is_urgent = ?", true)
	}
	announcements := []*model.Announcement{}
	if err := selector.
		OrderBy("is_urgent DESC", "created_at DESC", "id DESC").
		IteratorContext(ctx).
		All(&announcements); err != nil {
		return nil, errors.Wrap(err, "listing announcements")
	}
	return announcements, nil
}

func (adb *AnnouncementDB) UpdateAnnouncement(ctx context.Context, announcement *model.Announcement) error {
	announcement.UpdatedAt = time.Now().UTC()
	return updateById(ctx, adb.sess, "announcement", announcement.Id, map[string]interface{}{
		"title":      announcement.Title,
		"content":    announcement.Content,
		"is_urgent":  announcement.IsUrgent,
		"is_active":  announcement.IsActive,
		"expires_at": announcement.ExpiresAt,
		"updated_at": announcement.UpdatedAt,
	})
}

func (adb *AnnouncementDB) DeleteAnnouncement(ctx context.Context, id int64) error {
	return deleteById(ctx, adb.sess, "announcement", id)
}
