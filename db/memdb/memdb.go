// Package memdb is an in-memory db.Database. It backs handler tests and
// DATABASE_URL=memory:// runs; data is lost when the process exits.
package memdb

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/util"
)

const Scheme = "memory"

type pair [2]int64

type postRow struct {
	id            int64
	authorId      int64
	content       string
	imageUrl      string
	reactionCount int
	commentCount  int
	createdAt     time.Time
	updatedAt     time.Time
}

type commentRow struct {
	model.Comment
	authorId int64
}

type MemDB struct {
	mu     sync.RWMutex
	nextId map[string]int64
	now    func() time.Time

	users         map[int64]*model.User
	connections   map[pair]time.Time
	posts         map[int64]*postRow
	reactions     map[pair]*model.Reaction
	comments      map[int64]*commentRow
	notifications map[int64]*model.Notification
	schemes       map[int64]*model.Scheme
	jobs          map[int64]*model.Job
	applications  map[pair]*model.JobApplication
	events        map[int64]*model.Event
	attendees     map[pair]time.Time
	conversations map[int64]*model.Conversation
	messages      map[int64]*model.Message
	reports       map[int64]*model.Report
	announcements map[int64]*model.Announcement
}

var _ appDb.Database = (*MemDB)(nil)

func New() *MemDB {
	return &MemDB{
		nextId:        make(map[string]int64),
		now:           func() time.Time { return time.Now().UTC() },
		users:         make(map[int64]*model.User),
		connections:   make(map[pair]time.Time),
		posts:         make(map[int64]*postRow),
		reactions:     make(map[pair]*model.Reaction),
		comments:      make(map[int64]*commentRow),
		notifications: make(map[int64]*model.Notification),
		schemes:       make(map[int64]*model.Scheme),
		jobs:          make(map[int64]*model.Job),
		applications:  make(map[pair]*model.JobApplication),
		events:        make(map[int64]*model.Event),
		attendees:     make(map[pair]time.Time),
		conversations: make(map[int64]*model.Conversation),
		messages:      make(map[int64]*model.Message),
		reports:       make(map[int64]*model.Report),
		announcements: make(map[int64]*model.Announcement),
	}
}

// SetClock replaces the timestamp source. Successive calls within a test
// should return increasing times.
func (m *MemDB) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemDB) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemDB) Close() error {
	return nil
}

// id hands out the next id for table. Callers hold mu.
func (m *MemDB) id(table string) int64 {
	m.nextId[table]++
	return m.nextId[table]
}

func (m *MemDB) summary(userId int64) *model.UserSummary {
	user, ok := m.users[userId]
	if !ok {
		return nil
	}
	summary := user.Summary()
	summary.Avatar = util.AvatarOr(summary.Avatar, summary.Username)
	return summary
}

func contains(haystack string, q string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(q))
}

// paginate returns the page of items plus the total before paging.
func paginate[T any](items []T, page appDb.Page) ([]T, int64) {
	total := int64(len(items))
	start := page.Offset()
	if start >= len(items) {
		return []T{}, total
	}
	end := len(items)
	if page.Limit > 0 && start+page.Limit < end {
		end = start + page.Limit
	}
	return items[start:end], total
}

// newestFirst orders by created time then id, both descending.
func newestFirst(aTime time.Time, aId int64, bTime time.Time, bId int64) bool {
	if !aTime.Equal(bTime) {
		return aTime.After(bTime)
	}
	return aId > bId
}

func sortInt64s(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
