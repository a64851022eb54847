package memdb

import (
	"context"
	"sort"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
)

func (m *MemDB) CreatePost(_ context.Context, req *appDb.CreatePost) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[req.AuthorId]; !ok {
		return 0, appDb.ErrNotFound
	}
	now := m.now()
	row := &postRow{
		id:        m.id("post"),
		authorId:  req.AuthorId,
		content:   req.Content,
		imageUrl:  req.ImageUrl,
		createdAt: now,
		updatedAt: now,
	}
	m.posts[row.id] = row
	return row.id, nil
}

// post builds the response shape. Callers hold mu.
func (m *MemDB) post(row *postRow, reactionsOf int64) *model.Post {
	post := &model.Post{
		Id:            row.id,
		Author:        m.summary(row.authorId),
		Content:       row.content,
		ImageUrl:      row.imageUrl,
		ReactionCount: row.reactionCount,
		CommentCount:  row.commentCount,
		CreatedAt:     row.createdAt,
		UpdatedAt:     row.updatedAt,
	}
	if reactionsOf != 0 {
		if reaction, ok := m.reactions[pair{row.id, reactionsOf}]; ok {
			reactionType := reaction.Type
			post.UserReaction = &reactionType
		}
	}
	return post
}

func reactionsOf(opts *appDb.PostQueryOpts) int64 {
	if opts == nil {
		return 0
	}
	return opts.ReactionsOf
}

func (m *MemDB) GetPostById(_ context.Context, id int64, opts *appDb.PostQueryOpts) (*model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	return m.post(row, reactionsOf(opts)), nil
}

// visibleRows are posts whose author is not banned, newest first.
func (m *MemDB) visibleRows(keep func(row *postRow) bool) []*postRow {
	var rows []*postRow
	for _, row := range m.posts {
		if author, ok := m.users[row.authorId]; !ok || author.IsBanned {
			continue
		}
		if keep(row) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return newestFirst(rows[i].createdAt, rows[i].id, rows[j].createdAt, rows[j].id)
	})
	return rows
}

func (m *MemDB) GetPosts(_ context.Context, query *appDb.PostsListQuery) ([]*model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var authors map[int64]bool
	if query.AuthorIds != nil {
		authors = make(map[int64]bool, len(query.AuthorIds))
		for _, id := range query.AuthorIds {
			authors[id] = true
		}
	}
	rows := m.visibleRows(func(row *postRow) bool {
		if authors != nil && !authors[row.authorId] {
			return false
		}
		if query.From != nil {
			if row.createdAt.After(*query.From) {
				return false
			}
			if row.createdAt.Equal(*query.From) && row.id >= query.LastId {
				return false
			}
		}
		return true
	})
	if query.Offset > 0 {
		if query.Offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[query.Offset:]
		}
	}
	if query.Limit > 0 && len(rows) > query.Limit {
		rows = rows[:query.Limit]
	}
	posts := make([]*model.Post, len(rows))
	for i, row := range rows {
		posts[i] = m.post(row, reactionsOf(query.PostQueryOpts))
	}
	return posts, nil
}

func (m *MemDB) SearchPosts(_ context.Context, q string, limit int, viewerId int64) ([]*model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.visibleRows(func(row *postRow) bool {
		return contains(row.content, q)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	posts := make([]*model.Post, len(rows))
	for i, row := range rows {
		posts[i] = m.post(row, viewerId)
	}
	return posts, nil
}

func (m *MemDB) CountPostsByAuthor(_ context.Context, authorId int64) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total int64
	for _, row := range m.posts {
		if row.authorId == authorId {
			total++
		}
	}
	return total, nil
}

func (m *MemDB) UpdatePost(_ context.Context, id int64, content string, imageUrl string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.posts[id]
	if !ok {
		return appDb.ErrNotFound
	}
	row.content, row.imageUrl, row.updatedAt = content, imageUrl, m.now()
	return nil
}

func (m *MemDB) DeletePost(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return appDb.ErrNotFound
	}
	delete(m.posts, id)
	for key := range m.reactions {
		if key[0] == id {
			delete(m.reactions, key)
		}
	}
	commentIds := map[int64]bool{}
	for commentId, comment := range m.comments {
		if comment.PostId == id {
			commentIds[commentId] = true
			delete(m.comments, commentId)
		}
	}
	m.deleteNotificationsWhere(func(n *model.Notification) bool {
		return (n.TargetType == model.TargetPost && n.TargetId == id) ||
			(n.TargetType == model.TargetComment && commentIds[n.TargetId])
	})
	return nil
}

func (m *MemDB) React(_ context.Context, userId int64, postId int64, reaction model.ReactionType) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.posts[postId]
	if !ok {
		return false, appDb.ErrNotFound
	}
	key := pair{postId, userId}
	if existing, ok := m.reactions[key]; ok {
		existing.Type = reaction
		return false, nil
	}
	m.reactions[key] = &model.Reaction{PostId: postId, UserId: userId, Type: reaction, CreatedAt: m.now()}
	row.reactionCount++
	return true, nil
}

func (m *MemDB) Unreact(_ context.Context, userId int64, postId int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pair{postId, userId}
	if _, ok := m.reactions[key]; !ok {
		return nil
	}
	delete(m.reactions, key)
	if row, ok := m.posts[postId]; ok && row.reactionCount > 0 {
		row.reactionCount--
	}
	return nil
}

func (m *MemDB) CreateComment(_ context.Context, req *appDb.CreateComment) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.posts[req.PostId]
	if !ok {
		return 0, appDb.ErrNotFound
	}
	now := m.now()
	comment := &commentRow{
		Comment: model.Comment{
			Id:        m.id("comment"),
			PostId:    req.PostId,
			ParentId:  req.ParentId,
			ReplyToId: req.ReplyToId,
			Depth:     req.Depth,
			Content:   req.Content,
			CreatedAt: now,
			UpdatedAt: now,
		},
		authorId: req.AuthorId,
	}
	m.comments[comment.Id] = comment
	row.commentCount++
	return comment.Id, nil
}

func (m *MemDB) comment(row *commentRow) *model.Comment {
	comment := row.Comment
	comment.Author = m.summary(row.authorId)
	return &comment
}

func (m *MemDB) GetCommentById(_ context.Context, id int64) (*model.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.comments[id]
	if !ok {
		return nil, nil
	}
	return m.comment(row), nil
}

func (m *MemDB) GetComments(_ context.Context, postId int64) ([]*model.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	comments := []*model.Comment{}
	for _, row := range m.comments {
		if row.PostId == postId {
			comments = append(comments, m.comment(row))
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return newestFirst(comments[j].CreatedAt, comments[j].Id, comments[i].CreatedAt, comments[i].Id)
	})
	return comments, nil
}

func (m *MemDB) DeleteComment(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	root, ok := m.comments[id]
	if !ok {
		return 0, appDb.ErrNotFound
	}
	doomed := map[int64]bool{id: true}
	for frontier := []int64{id}; len(frontier) > 0; {
		var next []int64
		for _, row := range m.comments {
			if row.ParentId != nil && !doomed[row.Id] {
				for _, parentId := range frontier {
					if *row.ParentId == parentId {
						doomed[row.Id] = true
						next = append(next, row.Id)
						break
					}
				}
			}
		}
		frontier = next
	}
	for commentId := range doomed {
		delete(m.comments, commentId)
	}
	if post, ok := m.posts[root.PostId]; ok {
		post.commentCount -= len(doomed)
		if post.commentCount < 0 {
			post.commentCount = 0
		}
	}
	m.deleteNotificationsWhere(func(n *model.Notification) bool {
		return n.TargetType == model.TargetComment && doomed[n.TargetId]
	})
	return int64(len(doomed)), nil
}
