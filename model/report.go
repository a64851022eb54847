package model

import "time"

type ReportStatus string

const (
	ReportPending   ReportStatus = "PENDING"
	ReportResolved  ReportStatus = "RESOLVED"
	ReportDismissed ReportStatus = "DISMISSED"
)

func (rs ReportStatus) Valid() bool {
	return rs == ReportPending || rs == ReportResolved || rs == ReportDismissed
}

type Report struct {
	Id         int64        `db:"id,omitempty" json:"id"`
	ReporterId int64        `db:"reporter_id" json:"reporterId"`
	TargetType TargetType   `db:"target_type" json:"targetType"`
	TargetId   int64        `db:"target_id" json:"targetId"`
	Reason     string       `db:"reason" json:"reason"`
	Details    string       `db:"details" json:"details"`
	Status     ReportStatus `db:"status" json:"status"`
	ResolvedBy *int64       `db:"resolved_by" json:"resolvedBy"`
	ResolvedAt *time.Time   `db:"resolved_at" json:"resolvedAt"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
}

// Reportable reports whether content of this type can be reported.
func (tt TargetType) Reportable() bool {
	return tt == TargetPost || tt == TargetComment || tt == TargetUser
}
