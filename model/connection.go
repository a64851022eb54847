package model

import "time"

// Connection is one direction of a relationship. Connected users always
// have both the (a,b) and (b,a) rows.
type Connection struct {
	UserId          int64     `db:"user_id" json:"userId"`
	ConnectedUserId int64     `db:"connected_user_id" json:"connectedUserId"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

type ConnectedUser struct {
	*UserSummary
	ConnectedAt time.Time `json:"connectedAt"`
}
