package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
)

var ErrMalformedCursor = errors.New("malformed cursor")

// MostRecentCursor pages posts newest first by (created_at, id). The zero
// value starts at the newest post.
type MostRecentCursor struct {
	LastDate  *time.Time `json:"lastDate,omitempty"`
	LastId    int64      `json:"lastId,omitempty"`
	authorIds []int64
}

// DecodeMostRecentCursor parses the opaque cursor handed to clients. An
// empty string is the first page.
func DecodeMostRecentCursor(raw string) (*MostRecentCursor, error) {
	if raw == "" {
		return &MostRecentCursor{}, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, ErrMalformedCursor
	}
	var cursor MostRecentCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, ErrMalformedCursor
	}
	if cursor.LastDate == nil || cursor.LastId <= 0 {
		return nil, ErrMalformedCursor
	}
	return &cursor, nil
}

func (mrc *MostRecentCursor) Encode() string {
	data, _ := json.Marshal(mrc)
	return base64.RawURLEncoding.EncodeToString(data)
}

// WithAuthors restricts the cursor to posts by authorIds; nil means everyone.
func (mrc *MostRecentCursor) WithAuthors(authorIds []int64) *MostRecentCursor {
	newCursor := *mrc
	newCursor.authorIds = authorIds
	return &newCursor
}

func (mrc *MostRecentCursor) Posts(ctx context.Context, db appDb.PostDatabase, user *model.User, cursorOpts *PostCursorOpts) ([]*model.Post, PostCursor, error) {
	var reactionsOf int64
	if user != nil {
		reactionsOf = user.Id
	}
	// one extra row tells us whether there is a next page
	posts, err := db.GetPosts(ctx, &appDb.PostsListQuery{
		From:      mrc.LastDate,
		LastId:    mrc.LastId,
		AuthorIds: mrc.authorIds,
		Limit:     cursorOpts.Limit + 1,
		PostQueryOpts: &appDb.PostQueryOpts{
			ReactionsOf: reactionsOf,
		},
	})
	if err != nil {
		return nil, nil, err
	}
	if len(posts) <= cursorOpts.Limit {
		return posts, nil, nil
	}
	posts = posts[:cursorOpts.Limit]
	return posts, mrc.buildCursorForNextPage(posts), nil
}

func (mrc *MostRecentCursor) buildCursorForNextPage(previousPosts []*model.Post) *MostRecentCursor {
	last := previousPosts[len(previousPosts)-1]
	lastDate := last.CreatedAt
	return &MostRecentCursor{
		LastDate:  &lastDate,
		LastId:    last.Id,
		authorIds: mrc.authorIds,
	}
}
