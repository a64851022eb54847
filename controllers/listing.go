package controllers

import (
	"context"
	"fmt"
	"time"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/util"
)

type ListingControllerDatabase interface {
	appDb.SchemeDatabase
	appDb.JobDatabase
	appDb.EventDatabase
}

type SchemeReq struct {
	Title          string     `json:"title" binding:"required,min=3,max=200"`
	Description    string     `json:"description" binding:"required,max=10000"`
	Category       string     `json:"category" binding:"required,max=100"`
	Department     string     `json:"department" binding:"max=200"`
	Eligibility    string     `json:"eligibility" binding:"max=5000"`
	Benefits       string     `json:"benefits" binding:"max=5000"`
	ApplicationUrl string     `json:"applicationUrl" binding:"omitempty,url,max=2048"`
	Deadline       *time.Time `json:"deadline"`
}

type JobReq struct {
	Title       string        `json:"title" binding:"required,min=3,max=200"`
	Company     string        `json:"company" binding:"required,max=200"`
	Location    string        `json:"location" binding:"max=200"`
	JobType     model.JobType `json:"jobType" binding:"required"`
	Description string        `json:"description" binding:"required,max=10000"`
	SalaryRange string        `json:"salaryRange" binding:"max=100"`
	ApplyUrl    string        `json:"applyUrl" binding:"omitempty,url,max=2048"`
	IsActive    *bool         `json:"isActive"`
}

type ApplyReq struct {
	CoverLetter string `json:"coverLetter" binding:"max=5000"`
}

type EventReq struct {
	Title       string     `json:"title" binding:"required,min=3,max=200"`
	Description string     `json:"description" binding:"required,max=10000"`
	Location    string     `json:"location" binding:"max=200"`
	IsOnline    bool       `json:"isOnline"`
	StartsAt    time.Time  `json:"startsAt" binding:"required"`
	EndsAt      *time.Time `json:"endsAt"`
}

type ListingController struct {
	db       ListingControllerDatabase
	notifier *Notifier
}

func NewListingController(db ListingControllerDatabase, notifier *Notifier) *ListingController {
	return &ListingController{db: db, notifier: notifier}
}

func (req *SchemeReq) apply(scheme *model.Scheme) {
	scheme.Title = util.SanitizeText(req.Title)
	scheme.Description = util.XSSSanitize(req.Description)
	scheme.Category = util.SanitizeText(req.Category)
	scheme.Department = util.SanitizeText(req.Department)
	scheme.Eligibility = util.XSSSanitize(req.Eligibility)
	scheme.Benefits = util.XSSSanitize(req.Benefits)
	scheme.ApplicationUrl = req.ApplicationUrl
	scheme.Deadline = utcPtr(req.Deadline)
}

func (lc *ListingController) CreateScheme(ctx context.Context, user *model.User, req *SchemeReq) (*model.Scheme, *util.HTTPError) {
	scheme := &model.Scheme{CreatedBy: user.Id}
	req.apply(scheme)
	if _, err := lc.db.CreateScheme(ctx, scheme); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return scheme, nil
}

func (lc *ListingController) UpdateScheme(ctx context.Context, id int64, req *SchemeReq) (*model.Scheme, *util.HTTPError) {
	scheme, err := lc.db.GetScheme(ctx, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if scheme == nil {
		return nil, util.NotFound("scheme")
	}
	req.apply(scheme)
	if err := lc.db.UpdateScheme(ctx, scheme); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return scheme, nil
}

func (req *JobReq) apply(job *model.Job) {
	job.Title = util.SanitizeText(req.Title)
	job.Company = util.SanitizeText(req.Company)
	job.Location = util.SanitizeText(req.Location)
	job.JobType = req.JobType
	job.Description = util.XSSSanitize(req.Description)
	job.SalaryRange = util.SanitizeText(req.SalaryRange)
	job.ApplyUrl = req.ApplyUrl
	if req.IsActive != nil {
		job.IsActive = *req.IsActive
	}
}

func (lc *ListingController) CreateJob(ctx context.Context, user *model.User, req *JobReq) (*model.Job, *util.HTTPError) {
	if !req.JobType.Valid() {
		return nil, util.BadRequest(fmt.Sprintf("unknown job type %q", req.JobType))
	}
	job := &model.Job{PostedBy: user.Id, IsActive: true}
	req.apply(job)
	if _, err := lc.db.CreateJob(ctx, job); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return job, nil
}

func (lc *ListingController) getJob(ctx context.Context, id int64) (*model.Job, *util.HTTPError) {
	job, err := lc.db.GetJob(ctx, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if job == nil {
		return nil, util.NotFound("job")
	}
	return job, nil
}

func (lc *ListingController) UpdateJob(ctx context.Context, user *model.User, id int64, req *JobReq) (*model.Job, *util.HTTPError) {
	if !req.JobType.Valid() {
		return nil, util.BadRequest(fmt.Sprintf("unknown job type %q", req.JobType))
	}
	job, httpErr := lc.getJob(ctx, id)
	if httpErr != nil {
		return nil, httpErr
	}
	if !user.CanModify(job.PostedBy) {
		return nil, util.Forbidden("only the poster can edit this job")
	}
	req.apply(job)
	if err := lc.db.UpdateJob(ctx, job); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return job, nil
}

func (lc *ListingController) DeleteJob(ctx context.Context, user *model.User, id int64) *util.HTTPError {
	job, httpErr := lc.getJob(ctx, id)
	if httpErr != nil {
		return httpErr
	}
	if !user.CanModify(job.PostedBy) {
		return util.Forbidden("only the poster can delete this job")
	}
	if err := lc.db.DeleteJob(ctx, id); err != nil {
		return util.BuildDbHTTPErr(err)
	}
	return nil
}

func (lc *ListingController) ApplyToJob(ctx context.Context, user *model.User, jobId int64, req *ApplyReq) (*model.JobApplication, *util.HTTPError) {
	job, httpErr := lc.getJob(ctx, jobId)
	if httpErr != nil {
		return nil, httpErr
	}
	if job.PostedBy == user.Id {
		return nil, util.BadRequest("cannot apply to your own job")
	}
	if !job.IsActive {
		return nil, util.BadRequest("job is no longer accepting applications")
	}
	application := &model.JobApplication{
		JobId:       jobId,
		ApplicantId: user.Id,
		CoverLetter: util.SanitizeText(req.CoverLetter),
	}
	if err := lc.db.ApplyToJob(ctx, application); err != nil {
		if appDb.IsDupKeyErr(err) {
			return nil, util.Conflict("already applied to this job")
		}
		return nil, util.BuildDbHTTPErr(err)
	}
	logNotifyErr(ctx, lc.notifier.Notify(ctx, actorNotification(user, job.PostedBy,
		model.NotificationJobApplication, fmt.Sprintf("%s applied to %s", user.Name, job.Title), model.TargetJob, jobId)))
	return application, nil
}

func (lc *ListingController) GetApplications(ctx context.Context, user *model.User, jobId int64, page appDb.Page) ([]*model.JobApplication, int64, *util.HTTPError) {
	job, httpErr := lc.getJob(ctx, jobId)
	if httpErr != nil {
		return nil, 0, httpErr
	}
	if !user.CanModify(job.PostedBy) {
		return nil, 0, util.Forbidden("only the poster can see applications")
	}
	applications, total, err := lc.db.GetApplications(ctx, jobId, page)
	if err != nil {
		return nil, 0, util.BuildDbHTTPErr(err)
	}
	return applications, total, nil
}

func (req *EventReq) apply(event *model.Event) *util.HTTPError {
	if req.EndsAt != nil && !req.EndsAt.After(req.StartsAt) {
		return util.BadRequest("endsAt must be after startsAt")
	}
	event.Title = util.SanitizeText(req.Title)
	event.Description = util.XSSSanitize(req.Description)
	event.Location = util.SanitizeText(req.Location)
	event.IsOnline = req.IsOnline
	event.StartsAt = req.StartsAt.UTC()
	event.EndsAt = utcPtr(req.EndsAt)
	return nil
}

func (lc *ListingController) CreateEvent(ctx context.Context, user *model.User, req *EventReq) (*model.Event, *util.HTTPError) {
	event := &model.Event{OrganizerId: user.Id}
	if httpErr := req.apply(event); httpErr != nil {
		return nil, httpErr
	}
	if _, err := lc.db.CreateEvent(ctx, event); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return event, nil
}

func (lc *ListingController) GetEvent(ctx context.Context, user *model.User, id int64) (*model.Event, *util.HTTPError) {
	event, err := lc.db.GetEvent(ctx, id, user.Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if event == nil {
		return nil, util.NotFound("event")
	}
	return event, nil
}

func (lc *ListingController) UpdateEvent(ctx context.Context, user *model.User, id int64, req *EventReq) (*model.Event, *util.HTTPError) {
	event, httpErr := lc.GetEvent(ctx, user, id)
	if httpErr != nil {
		return nil, httpErr
	}
	if !user.CanModify(event.OrganizerId) {
		return nil, util.Forbidden("only the organizer can edit this event")
	}
	if httpErr := req.apply(event); httpErr != nil {
		return nil, httpErr
	}
	if err := lc.db.UpdateEvent(ctx, event); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return event, nil
}

func (lc *ListingController) DeleteEvent(ctx context.Context, user *model.User, id int64) *util.HTTPError {
	event, httpErr := lc.GetEvent(ctx, user, id)
	if httpErr != nil {
		return httpErr
	}
	if !user.CanModify(event.OrganizerId) {
		return util.Forbidden("only the organizer can delete this event")
	}
	if err := lc.db.DeleteEvent(ctx, id); err != nil {
		return util.BuildDbHTTPErr(err)
	}
	return nil
}

func (lc *ListingController) Attend(ctx context.Context, user *model.User, eventId int64) (*model.Event, *util.HTTPError) {
	event, httpErr := lc.GetEvent(ctx, user, eventId)
	if httpErr != nil {
		return nil, httpErr
	}
	if event.IsAttending {
		return nil, util.Conflict("already attending")
	}
	if err := lc.db.Attend(ctx, eventId, user.Id); err != nil {
		if appDb.IsDupKeyErr(err) {
			return nil, util.Conflict("already attending")
		}
		return nil, util.BuildDbHTTPErr(err)
	}
	logNotifyErr(ctx, lc.notifier.Notify(ctx, actorNotification(user, event.OrganizerId,
		model.NotificationEventRSVP, fmt.Sprintf("%s is attending %s", user.Name, event.Title), model.TargetEvent, eventId)))
	return lc.GetEvent(ctx, user, eventId)
}

func (lc *ListingController) Unattend(ctx context.Context, user *model.User, eventId int64) (*model.Event, *util.HTTPError) {
	if _, httpErr := lc.GetEvent(ctx, user, eventId); httpErr != nil {
		return nil, httpErr
	}
	removed, err := lc.db.Unattend(ctx, eventId, user.Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if !removed {
		return nil, util.NotFound("rsvp")
	}
	return lc.GetEvent(ctx, user, eventId)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
