package controllers

import (
	"context"
	"fmt"

	"github.com/civicconnect/civicconnect-be/app"
	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/util"
)

type PostControllerDatabase interface {
	appDb.PostDatabase
	appDb.CommentDatabase
}

type CreatePostReq struct {
	Content  string `json:"content" binding:"required,min=1,max=5000"`
	ImageUrl string `json:"imageUrl" binding:"omitempty,url,max=2048"`
}

type UpdatePostReq struct {
	Content  string  `json:"content" binding:"required,min=1,max=5000"`
	ImageUrl *string `json:"imageUrl" binding:"omitempty,max=2048"`
}

type CreateCommentReq struct {
	Content  string `json:"content" binding:"required,min=1,max=2000"`
	ParentId *int64 `json:"parentId" binding:"omitempty,gt=0"`
}

type PostController struct {
	db       PostControllerDatabase
	notifier *Notifier
}

func NewPostController(db PostControllerDatabase, notifier *Notifier) *PostController {
	return &PostController{db: db, notifier: notifier}
}

func (pc *PostController) CreatePost(ctx context.Context, user *model.User, req *CreatePostReq) (*model.Post, *util.HTTPError) {
	content := util.SanitizeText(req.Content)
	if content == "" {
		return nil, util.BadRequest("post content cannot be empty")
	}
	id, err := pc.db.CreatePost(ctx, &appDb.CreatePost{
		AuthorId: user.Id,
		Content:  content,
		ImageUrl: req.ImageUrl,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	_, err = pc.notifier.NotifyMentions(ctx, user, app.ParseMentions(content), model.TargetPost, id)
	logNotifyErr(ctx, err)
	return pc.GetPost(ctx, user, id)
}

func (pc *PostController) GetPost(ctx context.Context, viewer *model.User, id int64) (*model.Post, *util.HTTPError) {
	post, err := pc.db.GetPostById(ctx, id, &appDb.PostQueryOpts{ReactionsOf: viewer.Id})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if post == nil {
		return nil, util.NotFound("post")
	}
	return post, nil
}

// UpdatePost notifies only handles that were not already mentioned.
func (pc *PostController) UpdatePost(ctx context.Context, user *model.User, id int64, req *UpdatePostReq) (*model.Post, *util.HTTPError) {
	post, httpErr := pc.GetPost(ctx, user, id)
	if httpErr != nil {
		return nil, httpErr
	}
	if post.AuthorId() != user.Id {
		return nil, util.Forbidden("only the author can edit this post")
	}
	content := util.SanitizeText(req.Content)
	if content == "" {
		return nil, util.BadRequest("post content cannot be empty")
	}
	imageUrl := post.ImageUrl
	if req.ImageUrl != nil {
		imageUrl = *req.ImageUrl
	}
	if err := pc.db.UpdatePost(ctx, id, content, imageUrl); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	_, err := pc.notifier.NotifyMentions(ctx, user, app.NewMentions(post.Content, content), model.TargetPost, id)
	logNotifyErr(ctx, err)
	return pc.GetPost(ctx, user, id)
}

func (pc *PostController) DeletePost(ctx context.Context, user *model.User, id int64) *util.HTTPError {
	post, httpErr := pc.GetPost(ctx, user, id)
	if httpErr != nil {
		return httpErr
	}
	if !user.CanModify(post.AuthorId()) {
		return util.Forbidden("not allowed to delete this post")
	}
	if err := pc.db.DeletePost(ctx, id); err != nil {
		return util.BuildDbHTTPErr(err)
	}
	return nil
}

func (pc *PostController) React(ctx context.Context, user *model.User, postId int64, reaction model.ReactionType) (*model.Post, *util.HTTPError) {
	if !reaction.Valid() {
		return nil, util.BadRequest(fmt.Sprintf("unknown reaction type %q", reaction))
	}
	post, httpErr := pc.GetPost(ctx, user, postId)
	if httpErr != nil {
		return nil, httpErr
	}
	created, err := pc.db.React(ctx, user.Id, postId, reaction)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if created {
		logNotifyErr(ctx, pc.notifier.Notify(ctx, actorNotification(user, post.AuthorId(),
			model.NotificationReaction, fmt.Sprintf("%s reacted to your post", user.Name), model.TargetPost, postId)))
	}
	return pc.GetPost(ctx, user, postId)
}

// Unreact succeeds whether or not a reaction existed.
func (pc *PostController) Unreact(ctx context.Context, user *model.User, postId int64) (*model.Post, *util.HTTPError) {
	if _, httpErr := pc.GetPost(ctx, user, postId); httpErr != nil {
		return nil, httpErr
	}
	if err := pc.db.Unreact(ctx, user.Id, postId); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return pc.GetPost(ctx, user, postId)
}

func (pc *PostController) GetComments(ctx context.Context, user *model.User, postId int64) ([]*model.CommentTree, *util.HTTPError) {
	if _, httpErr := pc.GetPost(ctx, user, postId); httpErr != nil {
		return nil, httpErr
	}
	comments, err := pc.db.GetComments(ctx, postId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return app.BuildCommentForest(comments), nil
}

// CreateComment stores the comment at its capped depth, then notifies the
// post author (COMMENT), the author of the comment replied to (REPLY) and
// any mentioned users.
func (pc *PostController) CreateComment(ctx context.Context, user *model.User, postId int64, req *CreateCommentReq) (*model.Comment, *util.HTTPError) {
	post, httpErr := pc.GetPost(ctx, user, postId)
	if httpErr != nil {
		return nil, httpErr
	}
	content := util.SanitizeText(req.Content)
	if content == "" {
		return nil, util.BadRequest("comment content cannot be empty")
	}

	var target *model.Comment
	if req.ParentId != nil {
		var err error
		if target, err = pc.db.GetCommentById(ctx, *req.ParentId); err != nil {
			return nil, util.BuildDbHTTPErr(err)
		}
		if target == nil || target.PostId != postId {
			return nil, util.NotFound("parent comment")
		}
	}
	placement := app.PlaceReply(target)
	id, err := pc.db.CreateComment(ctx, &appDb.CreateComment{
		PostId:    postId,
		AuthorId:  user.Id,
		ParentId:  placement.ParentId,
		ReplyToId: placement.ReplyToId,
		Depth:     placement.Depth,
		Content:   content,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}

	notifications := []*model.Notification{}
	replyRecipient := int64(0)
	if target != nil {
		replyRecipient = target.AuthorId()
		notifications = append(notifications, actorNotification(user, replyRecipient,
			model.NotificationReply, fmt.Sprintf("%s replied to your comment", user.Name), model.TargetComment, id))
	}
	if post.AuthorId() != replyRecipient {
		notifications = append(notifications, actorNotification(user, post.AuthorId(),
			model.NotificationComment, fmt.Sprintf("%s commented on your post", user.Name), model.TargetComment, id))
	}
	logNotifyErr(ctx, pc.notifier.Notify(ctx, notifications...))
	_, err = pc.notifier.NotifyMentions(ctx, user, app.ParseMentions(content), model.TargetComment, id)
	logNotifyErr(ctx, err)

	comment, err := pc.db.GetCommentById(ctx, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if comment == nil {
		return nil, util.NotFound("comment")
	}
	return comment, nil
}

// DeleteComment removes the comment and every reply below it.
func (pc *PostController) DeleteComment(ctx context.Context, user *model.User, postId int64, commentId int64) (int64, *util.HTTPError) {
	comment, err := pc.db.GetCommentById(ctx, commentId)
	if err != nil {
		return 0, util.BuildDbHTTPErr(err)
	}
	if comment == nil || (postId != 0 && comment.PostId != postId) {
		return 0, util.NotFound("comment")
	}
	if !user.CanModify(comment.AuthorId()) {
		return 0, util.Forbidden("not allowed to delete this comment")
	}
	deleted, err := pc.db.DeleteComment(ctx, commentId)
	if err != nil {
		return 0, util.BuildDbHTTPErr(err)
	}
	return deleted, nil
}
