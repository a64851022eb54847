package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a row of the person table.
type User struct {
	Id           int64     `db:"id,omitempty" json:"id"`
	Email        string    `db:"email" json:"email,omitempty"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Headline     string    `db:"headline" json:"headline"`
	Bio          string    `db:"bio" json:"bio"`
	Location     string    `db:"location" json:"location"`
	Avatar       string    `db:"avatar" json:"avatar"`
	CoverImage   string    `db:"cover_image" json:"coverImage"`
	Role         Role      `db:"role" json:"role"`
	IsBanned     bool      `db:"is_banned" json:"isBanned"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CanModify reports whether u may edit or delete something owned by ownerId.
func (u *User) CanModify(ownerId int64) bool {
	return u != nil && (u.Id == ownerId || u.IsAdmin())
}

// MakeDisplayableFor returns a copy with private fields cleared unless the
// viewer is the user or an admin.
func (u *User) MakeDisplayableFor(viewer *User) *User {
	if u == nil {
		return nil
	}
	if viewer != nil && (viewer.Id == u.Id || viewer.IsAdmin()) {
		return u
	}
	displayable := *u
	displayable.Email = ""
	return &displayable
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{
		Id:       u.Id,
		Username: u.Username,
		Name:     u.Name,
		Headline: u.Headline,
		Avatar:   u.Avatar,
	}
}

// UserSummary is the author block embedded in posts, comments and messages.
type UserSummary struct {
	Id       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Name     string `db:"name" json:"name"`
	Headline string `db:"headline" json:"headline"`
	Avatar   string `db:"avatar" json:"avatar"`
}

type Profile struct {
	*User
	ConnectionCount int64 `json:"connectionCount"`
	PostCount       int64 `json:"postCount"`
	IsConnected     bool  `json:"isConnected"`
}
