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

type PostDB struct {
	store
}

func getPostDB(s store) *PostDB {
	return &PostDB{s}
}

func (pdb *PostDB) CreatePost(ctx context.Context, post *appDb.CreatePost) (int64, error) {
	now := time.Now().UTC()
	id, err := insertId(ctx, pdb.sess, pdb.dialect, "post",
		[]string{"author_id", "content", "image_url", "created_at", "updated_at"},
		post.AuthorId, post.Content, post.ImageUrl, now, now)
	return id, errors.Wrap(err, "inserting post")
}

type flattenedPost struct {
	flattenedAuthor `db:",inline"`
	Id              int64          `db:"id"`
	Content         string         `db:"content"`
	ImageUrl        string         `db:"image_url"`
	ReactionCount   int            `db:"reaction_count"`
	CommentCount    int            `db:"comment_count"`
	UserReaction    dao.NullString `db:"user_reaction"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

var postColumns = append([]interface{}{
	"p.id",
	"p.content",
	"p.image_url",
	"p.reaction_count",
	"p.comment_count",
	"p.created_at",
	"p.updated_at",
	"r.type AS user_reaction",
}, authorColumns...)

func (pdb *PostDB) selectPosts(reactionsOf int64) db.Selector {
	return pdb.sess.SQL().
		Select(postColumns...).
		From("post AS p").
		Join("person AS u").On("p.author_id = u.id").
		LeftJoin("post_reaction AS r").On("r.post_id = p.id AND r.user_id = ?", reactionsOf)
}

func (pdb *PostDB) GetPostById(ctx context.Context, id int64, opts *appDb.PostQueryOpts) (*model.Post, error) {
	var post flattenedPost
	if err := pdb.selectPosts(reactionsOf(opts)).
		Where("p.id = ?", id).
		IteratorContext(ctx).
		One(&post); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return buildPostFromFlattened(&post), nil
}

func (pdb *PostDB) GetPosts(ctx context.Context, query *appDb.PostsListQuery) ([]*model.Post, error) {
	if query.AuthorIds != nil && len(query.AuthorIds) == 0 {
		return []*model.Post{}, nil
	}
	selector := pdb.selectPosts(reactionsOf(query.PostQueryOpts)).
		Where("u.is_banned = ?", false)
	if query.From != nil {
		selector = selector.And("(p.created_at < ? OR (p.created_at = ? AND p.id < ?))", *query.From, *query.From, query.LastId)
	}
	if query.AuthorIds != nil {
		selector = selector.And("p.author_id IN ?", query.AuthorIds)
	}
	selector = selector.
		OrderBy("p.created_at DESC", "p.id DESC").
		Limit(query.Limit)
	if query.Offset > 0 {
		selector = selector.Offset(query.Offset)
	}

	var flattenedPosts []flattenedPost
	if err := selector.IteratorContext(ctx).All(&flattenedPosts); err != nil {
		return nil, errors.Wrap(err, "listing posts")
	}
	return buildPostsFromFlattened(flattenedPosts), nil
}

func (pdb *PostDB) SearchPosts(ctx context.Context, q string, limit int, viewerId int64) ([]*model.Post, error) {
	var flattenedPosts []flattenedPost
	if err := pdb.selectPosts(viewerId).
		Where("LOWER(p.content) LIKE ?", likePattern(q)).
		And("u.is_banned = ?", false).
		OrderBy("p.created_at DESC", "p.id DESC").
		Limit(limit).
		IteratorContext(ctx).
		All(&flattenedPosts); err != nil {
		return nil, err
	}
	return buildPostsFromFlattened(flattenedPosts), nil
}

func (pdb *PostDB) CountPostsByAuthor(ctx context.Context, authorId int64) (int64, error) {
	return count(ctx, pdb.sess.SQL().
		Select(db.Raw("COUNT(*) AS total")).
		From("post").
		Where("author_id = ?", authorId))
}

func reactionsOf(opts *appDb.PostQueryOpts) int64 {
	if opts == nil {
		return 0
	}
	return opts.ReactionsOf
}

func buildPostsFromFlattened(flattenedPosts []flattenedPost) []*model.Post {
	posts := make([]*model.Post, len(flattenedPosts))
	for i := range flattenedPosts {
		posts[i] = buildPostFromFlattened(&flattenedPosts[i])
	}
	return posts
}

func buildPostFromFlattened(post *flattenedPost) *model.Post {
	var reaction *model.ReactionType
	if post.UserReaction.Valid {
		rt := model.ReactionType(post.UserReaction.String)
		reaction = &rt
	}
	return &model.Post{
		Id:            post.Id,
		Author:        post.flattenedAuthor.summary(),
		Content:       post.Content,
		ImageUrl:      post.ImageUrl,
		ReactionCount: post.ReactionCount,
		CommentCount:  post.CommentCount,
		UserReaction:  reaction,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}
}

func (pdb *PostDB) UpdatePost(ctx context.Context, id int64, content string, imageUrl string) error {
	res, err := pdb.sess.SQL().
		Update("post").
		Set(map[string]interface{}{
			"content":    content,
			"image_url":  imageUrl,
			"updated_at": time.Now().UTC(),
		}).
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

// DeletePost removes the post; reactions and comments go with it through
// ON DELETE CASCADE. Notifications pointing at it are removed too.
func (pdb *PostDB) DeletePost(ctx context.Context, id int64) error {
	return pdb.sess.TxContext(ctx, func(sess db.Session) error {
		// comment rows are still there until the post delete cascades
		if _, err := sess.SQL().
			DeleteFrom("notification").
			Where("target_type = ? AND target_id IN (SELECT id FROM comment WHERE post_id = ?)", model.TargetComment, id).
			ExecContext(ctx); err != nil {
			return err
		}
		res, err := sess.SQL().
			DeleteFrom("post").
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
		_, err = sess.SQL().
			DeleteFrom("notification").
			Where("target_type = ? AND target_id = ?", model.TargetPost, id).
			ExecContext(ctx)
		return err
	}, &sql.TxOptions{})
}

// React upserts the user's reaction. FOR UPDATE cannot lock a row that does
// not exist yet, so a concurrent first reaction can win the insert; the
// retry then finds its row and takes the update path.
func (pdb *PostDB) React(ctx context.Context, userId int64, postId int64, reaction model.ReactionType) (bool, error) {
	defer metrics.TrackDBOperation("post_react")(time.Now())
	created, err := pdb.react(ctx, userId, postId, reaction)
	if appDb.IsDupKeyErr(err) {
		created, err = pdb.react(ctx, userId, postId, reaction)
	}
	return created, err
}

func (pdb *PostDB) react(ctx context.Context, userId int64, postId int64, reaction model.ReactionType) (bool, error) {
	var created bool
	err := pdb.sess.TxContext(ctx, func(sess db.Session) error {
		created = false
		row, err := sess.SQL().QueryRowContext(ctx, `SELECT type FROM post_reaction
																WHERE post_id = ? AND user_id = ?
															FOR UPDATE`,
			postId, userId)
		if err != nil {
			return err
		}
		var previous model.ReactionType
		if err := row.Scan(&previous); err != nil {
			if !isNoRows(err) {
				return err
			}
		}

		if previous == reaction {
			return nil
		}
		if previous != "" {
			// switching reaction type leaves the counter alone
			_, err := sess.SQL().
				Update("post_reaction").
				Set("type", reaction).
				Where("post_id = ? AND user_id = ?", postId, userId).
				ExecContext(ctx)
			return err
		}

		if _, err := sess.SQL().
			InsertInto("post_reaction").
			Columns("post_id", "user_id", "type", "created_at").
			Values(postId, userId, reaction, time.Now().UTC()).
			ExecContext(ctx); err != nil {
			return err
		}
		created = true
		_, err = sess.SQL().
			Update("post").
			Set("reaction_count = reaction_count + ?", 1).
			Where("id = ?", postId).
			ExecContext(ctx)
		return err
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	return created, err
}

func (pdb *PostDB) Unreact(ctx context.Context, userId int64, postId int64) error {
	return pdb.sess.TxContext(ctx, func(sess db.Session) error {
		res, err := sess.SQL().
			DeleteFrom("post_reaction").
			Where("post_id = ? AND user_id = ?", postId, userId).
			ExecContext(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil || n == 0 {
			return err
		}
		_, err = sess.SQL().
			Update("post").
			Set("reaction_count = reaction_count - ?", n).
			Where("id = ? AND reaction_count >= ?", postId, n).
			ExecContext(ctx)
		return err
	}, &sql.TxOptions{})
}
