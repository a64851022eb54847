package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/civicconnect/civicconnect-be/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostController(t *testing.T) (*PostController, *model.User, *model.User) {
	t.Helper()
	db := newTestDB()
	return NewPostController(db, NewNotifier(db)), createUser(t, db, "author"), createUser(t, db, "reader")
}

func TestCreatePostSanitizesAndMentions(t *testing.T) {
	db := newTestDB()
	pc := NewPostController(db, NewNotifier(db))
	author, ada := createUser(t, db, "author"), createUser(t, db, "ada")

	post, httpErr := pc.CreatePost(context.Background(), author, &CreatePostReq{
		Content: `hello @ada <script>alert(1)</script> mail me at x@ada.org`,
	})
	require.Nil(t, httpErr)
	assert.NotContains(t, post.Content, "<script>")

	notifications := notificationsFor(t, db, ada)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotificationMention, notifications[0].Type)
	assert.Equal(t, post.Id, notifications[0].TargetId)

	encoded, httpErr := pc.CreatePost(context.Background(), author, &CreatePostReq{
		Content: `look &lt;img src=x onerror=alert(1)&gt; here`,
	})
	require.Nil(t, httpErr)
	assert.NotContains(t, encoded.Content, "<img")
	assert.NotContains(t, encoded.Content, "onerror")
	assert.Equal(t, "look  here", encoded.Content)
}

func TestCreatePostRejectsEmptyAfterSanitizing(t *testing.T) {
	pc, author, _ := newPostController(t)
	_, httpErr := pc.CreatePost(context.Background(), author, &CreatePostReq{Content: "<script></script>"})
	requireHTTPErr(t, httpErr, http.StatusBadRequest, "")
}

func TestUpdatePostOnlyNotifiesNewMentions(t *testing.T) {
	db := newTestDB()
	pc := NewPostController(db, NewNotifier(db))
	author, ada, bob := createUser(t, db, "author"), createUser(t, db, "ada"), createUser(t, db, "bob")
	ctx := context.Background()

	post, httpErr := pc.CreatePost(ctx, author, &CreatePostReq{Content: "hi @ada"})
	require.Nil(t, httpErr)
	_, httpErr = pc.UpdatePost(ctx, author, post.Id, &UpdatePostReq{Content: "hi @ada and @bob"})
	require.Nil(t, httpErr)

	assert.Len(t, notificationsFor(t, db, ada), 1)
	assert.Len(t, notificationsFor(t, db, bob), 1)

	_, httpErr = pc.UpdatePost(ctx, bob, post.Id, &UpdatePostReq{Content: "hijacked"})
	requireHTTPErr(t, httpErr, http.StatusForbidden, "FORBIDDEN")
}

func TestReactNotifiesOnFirstReactionOnly(t *testing.T) {
	db := newTestDB()
	pc := NewPostController(db, NewNotifier(db))
	author, reader := createUser(t, db, "author"), createUser(t, db, "reader")
	ctx := context.Background()
	post, httpErr := pc.CreatePost(ctx, author, &CreatePostReq{Content: "news"})
	require.Nil(t, httpErr)

	reacted, httpErr := pc.React(ctx, reader, post.Id, model.ReactionLike)
	require.Nil(t, httpErr)
	assert.Equal(t, 1, reacted.ReactionCount)
	reacted, httpErr = pc.React(ctx, reader, post.Id, model.ReactionSupport)
	require.Nil(t, httpErr)
	assert.Equal(t, 1, reacted.ReactionCount)
	require.NotNil(t, reacted.UserReaction)
	assert.Equal(t, model.ReactionSupport, *reacted.UserReaction)

	notifications := notificationsFor(t, db, author)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotificationReaction, notifications[0].Type)

	_, httpErr = pc.React(ctx, reader, post.Id, model.ReactionType("LOVE"))
	requireHTTPErr(t, httpErr, http.StatusBadRequest, "")

	unreacted, httpErr := pc.Unreact(ctx, reader, post.Id)
	require.Nil(t, httpErr)
	assert.Equal(t, 0, unreacted.ReactionCount)
	_, httpErr = pc.Unreact(ctx, reader, post.Id)
	assert.Nil(t, httpErr)
}

func TestCreateCommentCapsDepth(t *testing.T) {
	pc, author, reader := newPostController(t)
	ctx := context.Background()
	post, httpErr := pc.CreatePost(ctx, author, &CreatePostReq{Content: "thread"})
	require.Nil(t, httpErr)

	root, httpErr := pc.CreateComment(ctx, reader, post.Id, &CreateCommentReq{Content: "root"})
	require.Nil(t, httpErr)
	assert.Equal(t, 0, root.Depth)
	child, httpErr := pc.CreateComment(ctx, author, post.Id, &CreateCommentReq{Content: "child", ParentId: &root.Id})
	require.Nil(t, httpErr)
	assert.Equal(t, 1, child.Depth)
	grandchild, httpErr := pc.CreateComment(ctx, reader, post.Id, &CreateCommentReq{Content: "grandchild", ParentId: &child.Id})
	require.Nil(t, httpErr)
	assert.Equal(t, 2, grandchild.Depth)

	capped, httpErr := pc.CreateComment(ctx, author, post.Id, &CreateCommentReq{Content: "capped", ParentId: &grandchild.Id})
	require.Nil(t, httpErr)
	assert.Equal(t, 2, capped.Depth)
	require.NotNil(t, capped.ParentId)
	assert.Equal(t, child.Id, *capped.ParentId)
	require.NotNil(t, capped.ReplyToId)
	assert.Equal(t, grandchild.Id, *capped.ReplyToId)

	forest, httpErr := pc.GetComments(ctx, reader, post.Id)
	require.Nil(t, httpErr)
	require.Len(t, forest, 1)
	require.Len(t, forest[0].Children, 1)
	assert.Len(t, forest[0].Children[0].Children, 2)
}

func TestCreateCommentNotifications(t *testing.T) {
	db := newTestDB()
	pc := NewPostController(db, NewNotifier(db))
	author, ada, bob := createUser(t, db, "author"), createUser(t, db, "ada"), createUser(t, db, "bob")
	ctx := context.Background()
	post, httpErr := pc.CreatePost(ctx, author, &CreatePostReq{Content: "thread"})
	require.Nil(t, httpErr)

	top, httpErr := pc.CreateComment(ctx, ada, post.Id, &CreateCommentReq{Content: "first"})
	require.Nil(t, httpErr)
	assert.Equal(t, []model.NotificationType{model.NotificationComment}, notificationTypes(notificationsFor(t, db, author)))

	reply, httpErr := pc.CreateComment(ctx, bob, post.Id, &CreateCommentReq{Content: "agreed", ParentId: &top.Id})
	require.Nil(t, httpErr)
	adas := notificationsFor(t, db, ada)
	require.Len(t, adas, 1)
	assert.Equal(t, model.NotificationReply, adas[0].Type)
	assert.Equal(t, model.TargetComment, adas[0].TargetType)
	assert.Equal(t, reply.Id, adas[0].TargetId)
	assert.Len(t, notificationsFor(t, db, author), 2)

	// replying to the post author sends one REPLY, not a COMMENT as well
	authorComment, httpErr := pc.CreateComment(ctx, author, post.Id, &CreateCommentReq{Content: "thanks"})
	require.Nil(t, httpErr)
	_, httpErr = pc.CreateComment(ctx, bob, post.Id, &CreateCommentReq{Content: "welcome", ParentId: &authorComment.Id})
	require.Nil(t, httpErr)
	assert.Equal(t, []model.NotificationType{model.NotificationReply, model.NotificationComment, model.NotificationComment},
		notificationTypes(notificationsFor(t, db, author)))
}

func TestCreateCommentParentMustBelongToPost(t *testing.T) {
	pc, author, reader := newPostController(t)
	ctx := context.Background()
	first, httpErr := pc.CreatePost(ctx, author, &CreatePostReq{Content: "one"})
	require.Nil(t, httpErr)
	second, httpErr := pc.CreatePost(ctx, author, &CreatePostReq{Content: "two"})
	require.Nil(t, httpErr)
	comment, httpErr := pc.CreateComment(ctx, reader, first.Id, &CreateCommentReq{Content: "on first"})
	require.Nil(t, httpErr)

	_, httpErr = pc.CreateComment(ctx, reader, second.Id, &CreateCommentReq{Content: "wrong post", ParentId: &comment.Id})
	requireHTTPErr(t, httpErr, http.StatusNotFound, "NOT_FOUND")
}

func TestDeleteCommentPermissions(t *testing.T) {
	db := newTestDB()
	pc := NewPostController(db, NewNotifier(db))
	author, reader := createUser(t, db, "author"), createUser(t, db, "reader")
	admin := createUser(t, db, "admin")
	admin.Role = model.RoleAdmin
	ctx := context.Background()
	post, httpErr := pc.CreatePost(ctx, author, &CreatePostReq{Content: "thread"})
	require.Nil(t, httpErr)
	root, httpErr := pc.CreateComment(ctx, reader, post.Id, &CreateCommentReq{Content: "root"})
	require.Nil(t, httpErr)
	_, httpErr = pc.CreateComment(ctx, author, post.Id, &CreateCommentReq{Content: "reply", ParentId: &root.Id})
	require.Nil(t, httpErr)

	_, httpErr = pc.DeleteComment(ctx, author, post.Id, root.Id)
	requireHTTPErr(t, httpErr, http.StatusForbidden, "FORBIDDEN")

	deleted, httpErr := pc.DeleteComment(ctx, admin, 0, root.Id)
	require.Nil(t, httpErr)
	assert.Equal(t, int64(2), deleted)

	refreshed, httpErr := pc.GetPost(ctx, reader, post.Id)
	require.Nil(t, httpErr)
	assert.Equal(t, 0, refreshed.CommentCount)
}
