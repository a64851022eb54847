package app

import (
	"context"
	"sort"
	"testing"
	"time"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFeedDB implements FeedDatabase over an in-memory slice.
type fakeFeedDB struct {
	appDb.PostDatabase
	posts       []*model.Post
	connections map[int64][]int64
	lastQuery   *appDb.PostsListQuery
}

func (f *fakeFeedDB) GetPosts(_ context.Context, query *appDb.PostsListQuery) ([]*model.Post, error) {
	f.lastQuery = query
	authors := map[int64]bool{}
	for _, id := range query.AuthorIds {
		authors[id] = true
	}
	sorted := append([]*model.Post{}, f.posts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].Id > sorted[j].Id
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	var out []*model.Post
	for _, post := range sorted {
		if query.AuthorIds != nil && !authors[post.AuthorId()] {
			continue
		}
		if query.From != nil {
			older := post.CreatedAt.Before(*query.From) ||
				(post.CreatedAt.Equal(*query.From) && post.Id < query.LastId)
			if !older {
				continue
			}
		}
		out = append(out, post)
		if len(out) == query.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeFeedDB) GetConnectionIds(_ context.Context, userId int64) ([]int64, error) {
	return f.connections[userId], nil
}

func newFakeFeedDB() *fakeFeedDB {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	db := &fakeFeedDB{connections: map[int64][]int64{1: {2}}}
	for i := int64(1); i <= 5; i++ {
		db.posts = append(db.posts, &model.Post{
			Id:        i,
			Author:    &model.UserSummary{Id: i%3 + 1},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	// same timestamp as post 5, tie broken by id
	db.posts = append(db.posts, &model.Post{Id: 6, Author: &model.UserSummary{Id: 3}, CreatedAt: db.posts[4].CreatedAt})
	return db
}

func TestGetFeedForUserPagesThroughEverything(t *testing.T) {
	db := newFakeFeedDB()
	user := &model.User{Id: 1}

	var seen []int64
	cursor := ""
	for pages := 0; pages < 10; pages++ {
		page, err := GetFeedForUser(context.Background(), db, user, FeedScopeAll, cursor, 4)
		require.NoError(t, err)
		for _, post := range page.Posts {
			seen = append(seen, post.Id)
		}
		if !page.HasMore {
			assert.Empty(t, page.NextCursor)
			break
		}
		cursor = page.NextCursor
	}
	assert.Equal(t, []int64{6, 5, 4, 3, 2, 1}, seen)
	assert.Equal(t, int64(1), db.lastQuery.ReactionsOf)
}

func TestGetFeedForUserNetworkScope(t *testing.T) {
	db := newFakeFeedDB()
	page, err := GetFeedForUser(context.Background(), db, &model.User{Id: 1}, FeedScopeNetwork, "", 20)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2}, db.lastQuery.AuthorIds)
	for _, post := range page.Posts {
		assert.Contains(t, []int64{1, 2}, post.AuthorId())
	}
	assert.False(t, page.HasMore)
}

func TestGetFeedForUserRejectsBadInput(t *testing.T) {
	db := newFakeFeedDB()
	_, err := GetFeedForUser(context.Background(), db, &model.User{Id: 1}, FeedScopeAll, "not-a-cursor!", 20)
	assert.ErrorIs(t, err, ErrMalformedCursor)

	_, err = GetFeedForUser(context.Background(), db, &model.User{Id: 1}, FeedScope("popular"), "", 20)
	assert.Error(t, err)
}

func TestMostRecentCursorRoundTrip(t *testing.T) {
	lastDate := time.Date(2024, 3, 1, 12, 0, 0, 123456000, time.UTC)
	encoded := (&MostRecentCursor{LastDate: &lastDate, LastId: 42}).Encode()

	decoded, err := DecodeMostRecentCursor(encoded)
	require.NoError(t, err)
	assert.True(t, lastDate.Equal(*decoded.LastDate))
	assert.Equal(t, int64(42), decoded.LastId)

	_, err = DecodeMostRecentCursor("e30") // {}
	assert.ErrorIs(t, err, ErrMalformedCursor)
}
