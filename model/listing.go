package model

import "time"

// Scheme is a government assistance program listing.
type Scheme struct {
	Id             int64      `db:"id,omitempty" json:"id"`
	Title          string     `db:"title" json:"title"`
	Description    string     `db:"description" json:"description"`
	Category       string     `db:"category" json:"category"`
	Department     string     `db:"department" json:"department"`
	Eligibility    string     `db:"eligibility" json:"eligibility"`
	Benefits       string     `db:"benefits" json:"benefits"`
	ApplicationUrl string     `db:"application_url" json:"applicationUrl"`
	Deadline       *time.Time `db:"deadline" json:"deadline"`
	CreatedBy      int64      `db:"created_by" json:"createdBy"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

type JobType string

const (
	JobTypeFullTime   JobType = "FULL_TIME"
	JobTypePartTime   JobType = "PART_TIME"
	JobTypeContract   JobType = "CONTRACT"
	JobTypeInternship JobType = "INTERNSHIP"
	JobTypeVolunteer  JobType = "VOLUNTEER"
)

func (jt JobType) Valid() bool {
	switch jt {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeVolunteer:
		return true
	}
	return false
}

type Job struct {
	Id          int64     `db:"id,omitempty" json:"id"`
	Title       string    `db:"title" json:"title"`
	Company     string    `db:"company" json:"company"`
	Location    string    `db:"location" json:"location"`
	JobType     JobType   `db:"job_type" json:"jobType"`
	Description string    `db:"description" json:"description"`
	SalaryRange string    `db:"salary_range" json:"salaryRange"`
	ApplyUrl    string    `db:"apply_url" json:"applyUrl"`
	PostedBy    int64     `db:"posted_by" json:"postedBy"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type JobApplication struct {
	JobId       int64        `db:"job_id" json:"jobId"`
	ApplicantId int64        `db:"applicant_id" json:"applicantId"`
	CoverLetter string       `db:"cover_letter" json:"coverLetter"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	Applicant   *UserSummary `db:"-" json:"applicant,omitempty"`
}

type Event struct {
	Id            int64      `db:"id,omitempty" json:"id"`
	Title         string     `db:"title" json:"title"`
	Description   string     `db:"description" json:"description"`
	Location      string     `db:"location" json:"location"`
	IsOnline      bool       `db:"is_online" json:"isOnline"`
	StartsAt      time.Time  `db:"starts_at" json:"startsAt"`
	EndsAt        *time.Time `db:"ends_at" json:"endsAt"`
	OrganizerId   int64      `db:"organizer_id" json:"organizerId"`
	AttendeeCount int        `db:"attendee_count" json:"attendeeCount"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
	IsAttending   bool       `db:"-" json:"isAttending"`
}
