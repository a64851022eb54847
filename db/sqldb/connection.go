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

type ConnectionDB struct {
	store
}

func getConnectionDB(s store) *ConnectionDB {
	return &ConnectionDB{s}
}

func (cdb *ConnectionDB) Connect(ctx context.Context, userId int64, otherId int64) error {
	now := time.Now().UTC()
	return cdb.sess.TxContext(ctx, func(sess db.Session) error {
		batchInserter := sess.SQL().
			InsertInto("connection").
			Columns("user_id", "connected_user_id", "created_at").
			Batch(2)
		batchInserter.Values(userId, otherId, now)
		batchInserter.Values(otherId, userId, now)
		batchInserter.Done()
		return batchInserter.Wait()
	}, &sql.TxOptions{})
}

func (cdb *ConnectionDB) Disconnect(ctx context.Context, userId int64, otherId int64) (bool, error) {
	var removed int64
	err := cdb.sess.TxContext(ctx, func(sess db.Session) error {
		res, err := sess.SQL().
			DeleteFrom("connection").
			Where("(user_id = ? AND connected_user_id = ?) OR (user_id = ? AND connected_user_id = ?)",
				userId, otherId, otherId, userId).
			ExecContext(ctx)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	}, &sql.TxOptions{})
	return removed > 0, err
}

func (cdb *ConnectionDB) IsConnected(ctx context.Context, userId int64, otherId int64) (bool, error) {
	return isConnected(ctx, cdb.sess, userId, otherId)
}

func isConnected(ctx context.Context, sess db.Session, userId int64, otherId int64) (bool, error) {
	total, err := count(ctx, sess.SQL().
		Select(db.Raw("COUNT(*) AS total")).
		From("connection").
		Where("user_id = ? AND connected_user_id = ?", userId, otherId))
	return total > 0, err
}

type flattenedConnectedUser struct {
	Id          int64     `db:"id"`
	Username    string    `db:"username"`
	Name        string    `db:"name"`
	Headline    string    `db:"headline"`
	Avatar      string    `db:"avatar"`
	ConnectedAt time.Time `db:"connected_at"`
}

func (cdb *ConnectionDB) GetConnections(ctx context.Context, userId int64, page appDb.Page) ([]*model.ConnectedUser, int64, error) {
	total, err := count(ctx, cdb.sess.SQL().
		Select(db.Raw("COUNT(*) AS total")).
		From("connection").
		Where("user_id = ?", userId))
	if err != nil {
		return nil, 0, err
	}

	var rows []flattenedConnectedUser
	if err := cdb.sess.SQL().
		Select("u.id", "u.username", "u.name", "u.headline", "u.avatar", "c.created_at AS connected_at").
		From("connection AS c").
		Join("person AS u").On("c.connected_user_id = u.id").
		Where("c.user_id = ?", userId).
		OrderBy("c.created_at DESC", "u.id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		IteratorContext(ctx).
		All(&rows); err != nil {
		return nil, 0, errors.Wrap(err, "listing connections")
	}

	connections := make([]*model.ConnectedUser, len(rows))
	for i, row := range rows {
		summary := &model.UserSummary{Id: row.Id, Username: row.Username, Name: row.Name, Headline: row.Headline, Avatar: row.Avatar}
		connections[i] = &model.ConnectedUser{
			UserSummary: withAvatars([]*model.UserSummary{summary})[0],
			ConnectedAt: row.ConnectedAt,
		}
	}
	return connections, total, nil
}

func (cdb *ConnectionDB) GetConnectionIds(ctx context.Context, userId int64) ([]int64, error) {
	var rows []struct {
		Id int64 `db:"connected_user_id"`
	}
	if err := cdb.sess.SQL().
		Select("connected_user_id").
		From("connection").
		Where("user_id = ?", userId).
		IteratorContext(ctx).
		All(&rows); err != nil {
		return nil, err
	}
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.Id
	}
	return ids, nil
}
