package app

import (
	"context"
	"fmt"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
)

// FeedDatabase is what building a feed needs from the store.
type FeedDatabase interface {
	appDb.PostDatabase
	GetConnectionIds(ctx context.Context, userId int64) ([]int64, error)
}

type FeedPage struct {
	Posts      []*model.Post `json:"posts"`
	NextCursor string        `json:"nextCursor,omitempty"`
	HasMore    bool          `json:"hasMore"`
}

func GetFeedForUser(
	ctx context.Context,
	db FeedDatabase,
	user *model.User,
	scope FeedScope,
	rawCursor string,
	limit int,
) (*FeedPage, error) {
	cursor, err := DecodeMostRecentCursor(rawCursor)
	if err != nil {
		return nil, err
	}

	switch scope {
	case FeedScopeAll, "":
	case FeedScopeNetwork:
		authorIds, err := getNetworkAuthorIds(ctx, db, user)
		if err != nil {
			return nil, err
		}
		cursor = cursor.WithAuthors(authorIds)
	default:
		return nil, fmt.Errorf("unsupported feed scope %v", scope)
	}

	posts, next, err := cursor.Posts(ctx, db, user, &PostCursorOpts{Limit: limit})
	if err != nil {
		return nil, err
	}
	page := &FeedPage{Posts: posts}
	if next != nil {
		page.HasMore = true
		page.NextCursor = next.(*MostRecentCursor).Encode()
	}
	return page, nil
}

// getNetworkAuthorIds is the user plus everyone they are connected to.
func getNetworkAuthorIds(ctx context.Context, db FeedDatabase, user *model.User) ([]int64, error) {
	if user == nil {
		return nil, fmt.Errorf("must be logged in to fetch a network feed")
	}
	connectionIds, err := db.GetConnectionIds(ctx, user.Id)
	if err != nil {
		return nil, err
	}
	return append([]int64{user.Id}, connectionIds...), nil
}
