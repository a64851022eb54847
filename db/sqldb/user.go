package sqldb

import (
	"context"
	"strings"
	"time"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/pkg/errors"
	"github.com/upper/db/v4"
)

type UserDB struct {
	store
}

func getUserDB(s store) *UserDB {
	return &UserDB{s}
}

var personInsertColumns = []string{
	"email", "username", "password_hash", "name", "headline", "bio", "location",
	"avatar", "cover_image", "role", "is_banned", "created_at", "updated_at",
}

func (udb *UserDB) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	now := time.Now().UTC()
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	id, err := insertId(ctx, udb.sess, udb.dialect, "person", personInsertColumns,
		user.Email, user.Username, user.PasswordHash, user.Name, user.Headline, user.Bio, user.Location,
		user.Avatar, user.CoverImage, user.Role, user.IsBanned, now, now)
	if err != nil {
		return 0, errors.Wrap(err, "inserting person")
	}
	user.Id, user.CreatedAt, user.UpdatedAt = id, now, now
	return id, nil
}

func (udb *UserDB) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return udb.getUserWhere(ctx, "id = ?", id)
}

func (udb *UserDB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return udb.getUserWhere(ctx, "email = ?", strings.ToLower(email))
}

func (udb *UserDB) getUserWhere(ctx context.Context, cond string, arg interface{}) (*model.User, error) {
	var user model.User
	if err := udb.sess.SQL().
		SelectFrom("person").
		Where(cond, arg).
		IteratorContext(ctx).
		One(&user); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (udb *UserDB) GetUsersByUsernames(ctx context.Context, usernames []string) ([]*model.User, error) {
	if len(usernames) == 0 {
		return []*model.User{}, nil
	}
	lowered := make([]string, len(usernames))
	for i, username := range usernames {
		lowered[i] = strings.ToLower(username)
	}
	var users []*model.User
	if err := udb.sess.SQL().
		SelectFrom("person").
		Where("LOWER(username) IN ?", lowered).
		And("is_banned = ?", false).
		IteratorContext(ctx).
		All(&users); err != nil {
		return nil, err
	}
	return users, nil
}

func (udb *UserDB) UpdateUser(ctx context.Context, id int64, update *appDb.UpdateUser) error {
	set := map[string]interface{}{"updated_at": time.Now().UTC()}
	if update.Username != nil {
		set["username"] = *update.Username
	}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Headline != nil {
		set["headline"] = *update.Headline
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.Location != nil {
		set["location"] = *update.Location
	}
	if update.Avatar != nil {
		set["avatar"] = *update.Avatar
	}
	if update.CoverImage != nil {
		set["cover_image"] = *update.CoverImage
	}
	if update.Role != nil {
		set["role"] = *update.Role
	}
	if update.IsBanned != nil {
		set["is_banned"] = *update.IsBanned
	}
	res, err := udb.sess.SQL().
		Update("person").
		Set(set).
		Where("id = ?", id).
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

func (udb *UserDB) GetProfile(ctx context.Context, id int64, viewerId int64) (*model.Profile, error) {
	user, err := udb.GetUser(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	profile := &model.Profile{User: user}
	profile.Avatar = util.AvatarOr(user.Avatar, user.Username)

	if profile.ConnectionCount, err = count(ctx, udb.sess.SQL().
		Select(db.Raw("COUNT(*) AS total")).
		From("connection").
		Where("user_id = ?", id)); err != nil {
		return nil, err
	}
	if profile.PostCount, err = count(ctx, udb.sess.SQL().
		Select(db.Raw("COUNT(*) AS total")).
		From("post").
		Where("author_id = ?", id)); err != nil {
		return nil, err
	}
	if viewerId != 0 && viewerId != id {
		if profile.IsConnected, err = isConnected(ctx, udb.sess, viewerId, id); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

var userSummaryColumns = []interface{}{"id", "username", "name", "headline", "avatar"}

func (udb *UserDB) GetSuggestions(ctx context.Context, userId int64, limit int) ([]*model.UserSummary, error) {
	var users []*model.UserSummary
	if err := udb.sess.SQL().
		Select(userSummaryColumns...).
		From("person").
		Where("id <> ?", userId).
		And("is_banned = ?", false).
		And("id NOT IN (SELECT connected_user_id FROM connection WHERE user_id = ?)", userId).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		IteratorContext(ctx).
		All(&users); err != nil {
		return nil, err
	}
	return withAvatars(users), nil
}

func (udb *UserDB) SearchUsers(ctx context.Context, q string, limit int) ([]*model.UserSummary, error) {
	pattern := likePattern(q)
	var users []*model.UserSummary
	if err := udb.sess.SQL().
		Select(userSummaryColumns...).
		From("person").
		Where("(LOWER(username) LIKE ? OR LOWER(name) LIKE ? OR LOWER(headline) LIKE ?)", pattern, pattern, pattern).
		And("is_banned = ?", false).
		OrderBy("name", "id").
		Limit(limit).
		IteratorContext(ctx).
		All(&users); err != nil {
		return nil, err
	}
	return withAvatars(users), nil
}

func withAvatars(users []*model.UserSummary) []*model.UserSummary {
	if users == nil {
		return []*model.UserSummary{}
	}
	for _, user := range users {
		user.Avatar = util.AvatarOr(user.Avatar, user.Username)
	}
	return users
}

// flattenedAuthor is the person columns joined as "u" onto posts, comments
// and notifications.
type flattenedAuthor struct {
	AuthorId       int64  `db:"author_id"`
	AuthorUsername string `db:"author_username"`
	AuthorName     string `db:"author_name"`
	AuthorHeadline string `db:"author_headline"`
	AuthorAvatar   string `db:"author_avatar"`
}

var authorColumns = []interface{}{
	"u.id AS author_id",
	"u.username AS author_username",
	"u.name AS author_name",
	"u.headline AS author_headline",
	"u.avatar AS author_avatar",
}

func (fa *flattenedAuthor) summary() *model.UserSummary {
	return &model.UserSummary{
		Id:       fa.AuthorId,
		Username: fa.AuthorUsername,
		Name:     fa.AuthorName,
		Headline: fa.AuthorHeadline,
		Avatar:   util.AvatarOr(fa.AuthorAvatar, fa.AuthorUsername),
	}
}
