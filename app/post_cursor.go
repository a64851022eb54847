package app

import (
	"context"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
)

type PostCursorOpts struct {
	Limit int
}

type PostCursor interface {
	Posts(ctx context.Context, db appDb.PostDatabase, user *model.User, opts *PostCursorOpts) (posts []*model.Post, next PostCursor, err error)
}

// FeedScope picks whose posts a feed shows.
type FeedScope string

const (
	FeedScopeAll     FeedScope = "all"
	FeedScopeNetwork FeedScope = "network"
)

func (fs FeedScope) Valid() bool {
	return fs == FeedScopeAll || fs == FeedScopeNetwork
}
