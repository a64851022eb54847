package app

import "github.com/civicconnect/civicconnect-be/model"

// ReplyPlacement is where a new comment is stored.
type ReplyPlacement struct {
	ParentId  *int64
	ReplyToId *int64
	Depth     int
}

// PlaceReply decides where a reply to target goes. Replies that would be
// deeper than model.MaxCommentDepth are attached to target's parent so they
// become siblings of target; ReplyToId still names target. A nil target is
// a top-level comment.
func PlaceReply(target *model.Comment) ReplyPlacement {
	if target == nil {
		return ReplyPlacement{}
	}
	replyToId := target.Id
	if target.Depth+1 <= model.MaxCommentDepth {
		parentId := target.Id
		return ReplyPlacement{ParentId: &parentId, ReplyToId: &replyToId, Depth: target.Depth + 1}
	}
	placement := ReplyPlacement{ParentId: target.ParentId, ReplyToId: &replyToId, Depth: model.MaxCommentDepth}
	if target.ParentId == nil {
		placement.Depth = 0
	}
	return placement
}

// BuildCommentForest nests comments under their parents, keeping the input
// order among siblings. Comments whose parent is missing are promoted to
// roots.
func BuildCommentForest(comments []*model.Comment) []*model.CommentTree {
	present := make(map[int64]bool, len(comments))
	for _, comment := range comments {
		present[comment.Id] = true
	}
	adj := make(map[int64][]*model.Comment)
	for _, comment := range comments {
		var parentId int64
		if comment.ParentId != nil && present[*comment.ParentId] {
			parentId = *comment.ParentId
		}
		adj[parentId] = append(adj[parentId], comment)
	}
	return buildCommentForestFromAdjList(adj, 0)
}

func buildCommentForestFromAdjList(adj map[int64][]*model.Comment, rootId int64) []*model.CommentTree {
	comments, ok := adj[rootId]
	if !ok {
		return []*model.CommentTree{}
	}
	forest := make([]*model.CommentTree, len(comments))
	for i, comment := range comments {
		forest[i] = &model.CommentTree{
			Comment:  comment,
			Children: buildCommentForestFromAdjList(adj, comment.Id),
		}
	}
	return forest
}
