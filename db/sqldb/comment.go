package sqldb

import (
	"context"
	"database/sql"
	"time"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/db/dao"
	"github.com/civicconnect/civicconnect-be/metrics"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/pkg/errors"
	"github.com/upper/db/v4"
)

type CommentDB struct {
	store
}

func getCommentDB(s store) *CommentDB {
	return &CommentDB{s}
}

func (cdb *CommentDB) CreateComment(ctx context.Context, req *appDb.CreateComment) (int64, error) {
	var commentId int64
	err := cdb.sess.TxContext(ctx, func(sess db.Session) error {
		now := time.Now().UTC()
		var err error
		commentId, err = insertId(ctx, sess, cdb.dialect, "comment",
			[]string{"post_id", "author_id", "parent_id", "reply_to_id", "depth", "content", "created_at", "updated_at"},
			req.PostId, req.AuthorId, dao.FromPtr(req.ParentId), dao.FromPtr(req.ReplyToId), req.Depth, req.Content, now, now)
		if err != nil {
			return errors.Wrap(err, "inserting comment")
		}
		_, err = sess.SQL().
			Update("post").
			Set("comment_count = comment_count + ?", 1).
			Where("id = ?", req.PostId).
			ExecContext(ctx)
		return err
	}, &sql.TxOptions{})
	return commentId, err
}

type flattenedComment struct {
	flattenedAuthor `db:",inline"`
	Id              int64         `db:"id"`
	PostId          int64         `db:"post_id"`
	ParentId        dao.NullInt64 `db:"parent_id"`
	ReplyToId       dao.NullInt64 `db:"reply_to_id"`
	Depth           int           `db:"depth"`
	Content         string        `db:"content"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

var commentColumns = append([]interface{}{
	"c.id",
	"c.post_id",
	"c.parent_id",
	"c.reply_to_id",
	"c.depth",
	"c.content",
	"c.created_at",
	"c.updated_at",
}, authorColumns...)

func (cdb *CommentDB) selectComments() db.Selector {
	return cdb.sess.SQL().
		Select(commentColumns...).
		From("comment AS c").
		Join("person AS u").On("c.author_id = u.id")
}

func (cdb *CommentDB) GetCommentById(ctx context.Context, id int64) (*model.Comment, error) {
	var comment flattenedComment
	if err := cdb.selectComments().
		Where("c.id = ?", id).
		IteratorContext(ctx).
		One(&comment); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return buildCommentFromFlattened(&comment), nil
}

// GetComments returns every comment on the post in creation order.
func (cdb *CommentDB) GetComments(ctx context.Context, postId int64) ([]*model.Comment, error) {
	var flattenedComments []flattenedComment
	if err := cdb.selectComments().
		Where("c.post_id = ?", postId).
		OrderBy("c.created_at", "c.id").
		IteratorContext(ctx).
		All(&flattenedComments); err != nil {
		return nil, err
	}
	comments := make([]*model.Comment, len(flattenedComments))
	for i := range flattenedComments {
		comments[i] = buildCommentFromFlattened(&flattenedComments[i])
	}
	return comments, nil
}

func buildCommentFromFlattened(comment *flattenedComment) *model.Comment {
	return &model.Comment{
		Id:        comment.Id,
		PostId:    comment.PostId,
		Author:    comment.flattenedAuthor.summary(),
		ParentId:  comment.ParentId.AsPtr(),
		ReplyToId: comment.ReplyToId.AsPtr(),
		Depth:     comment.Depth,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

func (cdb *CommentDB) DeleteComment(ctx context.Context, id int64) (int64, error) {
	defer metrics.TrackDBOperation("comment_delete")(time.Now())
	var deleted int64
	err := cdb.sess.TxContext(ctx, func(sess db.Session) error {
		var root struct {
			PostId int64 `db:"post_id"`
		}
		if err := sess.SQL().
			Select("post_id").
			From("comment").
			Where("id = ?", id).
			IteratorContext(ctx).
			One(&root); err != nil {
			if isNoRows(err) {
				return appDb.ErrNotFound
			}
			return err
		}

		ids, err := collectSubtree(ctx, sess, id)
		if err != nil {
			return err
		}
		res, err := sess.SQL().
			DeleteFrom("comment").
			Where("id IN ?", ids).
			ExecContext(ctx)
		if err != nil {
			return err
		}
		if deleted, err = res.RowsAffected(); err != nil {
			return err
		}
		if _, err := sess.SQL().
			Update("post").
			Set("comment_count = comment_count - ?", deleted).
			Where("id = ? AND comment_count >= ?", root.PostId, deleted).
			ExecContext(ctx); err != nil {
			return err
		}
		_, err = sess.SQL().
			DeleteFrom("notification").
			Where("target_type = ? AND target_id IN ?", model.TargetComment, ids).
			ExecContext(ctx)
		return err
	}, &sql.TxOptions{})
	return deleted, err
}

// collectSubtree walks parent_id links level by level from rootId.
func collectSubtree(ctx context.Context, sess db.Session, rootId int64) ([]int64, error) {
	ids := []int64{rootId}
	frontier := []int64{rootId}
	for len(frontier) > 0 {
		var children []struct {
			Id int64 `db:"id"`
		}
		if err := sess.SQL().
			Select("id").
			From("comment").
			Where("parent_id IN ?", frontier).
			IteratorContext(ctx).
			All(&children); err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, child := range children {
			ids = append(ids, child.Id)
			frontier = append(frontier, child.Id)
		}
	}
	return ids, nil
}
