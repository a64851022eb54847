package memdb

import (
	"context"
	"sort"
	"strings"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/util"
)

func (m *MemDB) CreateUser(_ context.Context, user *model.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(user.Email)
	for _, existing := range m.users {
		if existing.Email == email {
			return 0, &appDb.DupKeyError{Key: "person_email_idx"}
		}
		if strings.EqualFold(existing.Username, user.Username) {
			return 0, &appDb.DupKeyError{Key: "person_username_idx"}
		}
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	now := m.now()
	user.Id, user.Email, user.CreatedAt, user.UpdatedAt = m.id("person"), email, now, now
	stored := *user
	m.users[user.Id] = &stored
	return user.Id, nil
}

func (m *MemDB) GetUser(_ context.Context, id int64) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (m *MemDB) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Email == strings.ToLower(email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MemDB) GetUsersByUsernames(_ context.Context, usernames []string) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[string]bool, len(usernames))
	for _, username := range usernames {
		wanted[strings.ToLower(username)] = true
	}
	users := []*model.User{}
	for _, user := range m.users {
		if wanted[strings.ToLower(user.Username)] && !user.IsBanned {
			copied := *user
			users = append(users, &copied)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Id < users[j].Id })
	return users, nil
}

func (m *MemDB) UpdateUser(_ context.Context, id int64, update *appDb.UpdateUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return appDb.ErrNotFound
	}
	if update.Username != nil {
		for _, existing := range m.users {
			if existing.Id != id && strings.EqualFold(existing.Username, *update.Username) {
				return &appDb.DupKeyError{Key: "person_username_idx"}
			}
		}
		user.Username = *update.Username
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Headline != nil {
		user.Headline = *update.Headline
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.Location != nil {
		user.Location = *update.Location
	}
	if update.Avatar != nil {
		user.Avatar = *update.Avatar
	}
	if update.CoverImage != nil {
		user.CoverImage = *update.CoverImage
	}
	if update.Role != nil {
		user.Role = *update.Role
	}
	if update.IsBanned != nil {
		user.IsBanned = *update.IsBanned
	}
	user.UpdatedAt = m.now()
	return nil
}

func (m *MemDB) GetProfile(_ context.Context, id int64, viewerId int64) (*model.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	copied.Avatar = util.AvatarOr(user.Avatar, user.Username)
	profile := &model.Profile{User: &copied}
	for key := range m.connections {
		if key[0] == id {
			profile.ConnectionCount++
		}
	}
	for _, post := range m.posts {
		if post.authorId == id {
			profile.PostCount++
		}
	}
	if viewerId != 0 && viewerId != id {
		_, profile.IsConnected = m.connections[pair{viewerId, id}]
	}
	return profile, nil
}

func (m *MemDB) GetSuggestions(_ context.Context, userId int64, limit int) ([]*model.UserSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var candidates []*model.User
	for _, user := range m.users {
		if user.Id == userId || user.IsBanned {
			continue
		}
		if _, connected := m.connections[pair{userId, user.Id}]; connected {
			continue
		}
		candidates = append(candidates, user)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return newestFirst(candidates[i].CreatedAt, candidates[i].Id, candidates[j].CreatedAt, candidates[j].Id)
	})
	summaries := []*model.UserSummary{}
	for i := 0; i < len(candidates) && i < limit; i++ {
		summaries = append(summaries, m.summary(candidates[i].Id))
	}
	return summaries, nil
}

func (m *MemDB) SearchUsers(_ context.Context, q string, limit int) ([]*model.UserSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matches []*model.User
	for _, user := range m.users {
		if user.IsBanned {
			continue
		}
		if contains(user.Username, q) || contains(user.Name, q) || contains(user.Headline, q) {
			matches = append(matches, user)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Name != matches[j].Name {
			return matches[i].Name < matches[j].Name
		}
		return matches[i].Id < matches[j].Id
	})
	summaries := []*model.UserSummary{}
	for i := 0; i < len(matches) && i < limit; i++ {
		summaries = append(summaries, m.summary(matches[i].Id))
	}
	return summaries, nil
}

func (m *MemDB) GetConnections(_ context.Context, userId int64, page appDb.Page) ([]*model.ConnectedUser, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var connected []*model.ConnectedUser
	for key, connectedAt := range m.connections {
		if key[0] != userId {
			continue
		}
		if summary := m.summary(key[1]); summary != nil {
			connected = append(connected, &model.ConnectedUser{UserSummary: summary, ConnectedAt: connectedAt})
		}
	}
	sort.Slice(connected, func(i, j int) bool {
		return newestFirst(connected[i].ConnectedAt, connected[i].Id, connected[j].ConnectedAt, connected[j].Id)
	})
	items, total := paginate(connected, page)
	return items, total, nil
}

func (m *MemDB) Connect(_ context.Context, userId int64, otherId int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.connections[pair{userId, otherId}]; ok {
		return &appDb.DupKeyError{Key: "connection_pkey"}
	}
	now := m.now()
	m.connections[pair{userId, otherId}] = now
	m.connections[pair{otherId, userId}] = now
	return nil
}

func (m *MemDB) Disconnect(_ context.Context, userId int64, otherId int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, forward := m.connections[pair{userId, otherId}]
	_, backward := m.connections[pair{otherId, userId}]
	delete(m.connections, pair{userId, otherId})
	delete(m.connections, pair{otherId, userId})
	return forward || backward, nil
}

func (m *MemDB) IsConnected(_ context.Context, userId int64, otherId int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.connections[pair{userId, otherId}]
	return ok, nil
}

func (m *MemDB) GetConnectionIds(_ context.Context, userId int64) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := []int64{}
	for key := range m.connections {
		if key[0] == userId {
			ids = append(ids, key[1])
		}
	}
	sortInt64s(ids)
	return ids, nil
}
