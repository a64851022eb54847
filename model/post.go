package model

import (
	"time"
)

type ReactionType string

const (
	ReactionLike       ReactionType = "LIKE"
	ReactionCelebrate  ReactionType = "CELEBRATE"
	ReactionSupport    ReactionType = "SUPPORT"
	ReactionInsightful ReactionType = "INSIGHTFUL"
)

func (rt ReactionType) Valid() bool {
	switch rt {
	case ReactionLike, ReactionCelebrate, ReactionSupport, ReactionInsightful:
		return true
	}
	return false
}

type Reaction struct {
	PostId    int64        `db:"post_id" json:"postId"`
	UserId    int64        `db:"user_id" json:"userId"`
	Type      ReactionType `db:"type" json:"type"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
}

type Post struct {
	Id            int64         `json:"id"`
	Author        *UserSummary  `json:"author"`
	Content       string        `json:"content"`
	ImageUrl      string        `json:"imageUrl"`
	ReactionCount int           `json:"reactionCount"`
	CommentCount  int           `json:"commentCount"`
	UserReaction  *ReactionType `json:"userReaction"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (p *Post) AuthorId() int64 {
	if p.Author == nil {
		return 0
	}
	return p.Author.Id
}

// MaxCommentDepth is the deepest a stored comment can be; top-level
// comments have depth 0.
const MaxCommentDepth = 2

type Comment struct {
	Id        int64        `json:"id"`
	PostId    int64        `json:"postId"`
	Author    *UserSummary `json:"author"`
	ParentId  *int64       `json:"parentId"`
	ReplyToId *int64       `json:"replyToId"`
	Depth     int          `json:"depth"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (c *Comment) AuthorId() int64 {
	if c.Author == nil {
		return 0
	}
	return c.Author.Id
}

type CommentTree struct {
	*Comment
	Children []*CommentTree `json:"children"`
}
