package model

import "time"

type Announcement struct {
	Id        int64      `db:"id,omitempty" json:"id"`
	AuthorId  int64      `db:"author_id" json:"authorId"`
	Title     string     `db:"title" json:"title"`
	Content   string     `db:"content" json:"content"`
	IsUrgent  bool       `db:"is_urgent" json:"isUrgent"`
	IsActive  bool       `db:"is_active" json:"isActive"`
	ExpiresAt *time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}

// LiveAt reports whether the announcement should be shown at t.
func (a *Announcement) LiveAt(t time.Time) bool {
	return a.IsActive && (a.ExpiresAt == nil || a.ExpiresAt.After(t))
}

type Stats struct {
	Users          int64 `json:"users"`
	Posts          int64 `json:"posts"`
	Comments       int64 `json:"comments"`
	Jobs           int64 `json:"jobs"`
	Events         int64 `json:"events"`
	Schemes        int64 `json:"schemes"`
	PendingReports int64 `json:"pendingReports"`
}
