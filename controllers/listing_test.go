package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyToJob(t *testing.T) {
	db := newTestDB()
	lc := NewListingController(db, NewNotifier(db))
	poster, applicant := createUser(t, db, "poster"), createUser(t, db, "applicant")
	ctx := context.Background()

	job, httpErr := lc.CreateJob(ctx, poster, &JobReq{
		Title:       "Clerk",
		Company:     "City Hall",
		JobType:     model.JobTypeFullTime,
		Description: "<p>Filing</p><script>x()</script>",
	})
	require.Nil(t, httpErr)
	assert.True(t, job.IsActive)
	assert.Equal(t, "<p>Filing</p>", job.Description)

	_, httpErr = lc.ApplyToJob(ctx, poster, job.Id, &ApplyReq{})
	requireHTTPErr(t, httpErr, http.StatusBadRequest, "")

	application, httpErr := lc.ApplyToJob(ctx, applicant, job.Id, &ApplyReq{CoverLetter: "hire me"})
	require.Nil(t, httpErr)
	assert.Equal(t, applicant.Id, application.ApplicantId)

	_, httpErr = lc.ApplyToJob(ctx, applicant, job.Id, &ApplyReq{})
	requireHTTPErr(t, httpErr, http.StatusConflict, util.CodeConflict)

	notifications := notificationsFor(t, db, poster)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotificationJobApplication, notifications[0].Type)
	assert.Equal(t, model.TargetJob, notifications[0].TargetType)

	_, _, httpErr = lc.GetApplications(ctx, applicant, job.Id, defaultTestPage)
	requireHTTPErr(t, httpErr, http.StatusForbidden, "")
	applications, total, httpErr := lc.GetApplications(ctx, poster, job.Id, defaultTestPage)
	require.Nil(t, httpErr)
	assert.Equal(t, int64(1), total)
	require.Len(t, applications, 1)
}

func TestApplyToInactiveJob(t *testing.T) {
	db := newTestDB()
	lc := NewListingController(db, NewNotifier(db))
	poster, applicant := createUser(t, db, "poster"), createUser(t, db, "applicant")
	ctx := context.Background()
	inactive := false

	job, httpErr := lc.CreateJob(ctx, poster, &JobReq{Title: "Clerk", Company: "City Hall", JobType: model.JobTypeContract, Description: "d"})
	require.Nil(t, httpErr)
	_, httpErr = lc.UpdateJob(ctx, poster, job.Id, &JobReq{Title: "Clerk", Company: "City Hall", JobType: model.JobTypeContract, Description: "d", IsActive: &inactive})
	require.Nil(t, httpErr)

	_, httpErr = lc.ApplyToJob(ctx, applicant, job.Id, &ApplyReq{})
	requireHTTPErr(t, httpErr, http.StatusBadRequest, "")

	_, httpErr = lc.UpdateJob(ctx, applicant, job.Id, &JobReq{Title: "Mine", Company: "Me", JobType: model.JobTypeContract, Description: "d"})
	requireHTTPErr(t, httpErr, http.StatusForbidden, "")
	_, httpErr = lc.CreateJob(ctx, poster, &JobReq{Title: "Bad", Company: "X", JobType: "GIG", Description: "d"})
	requireHTTPErr(t, httpErr, http.StatusBadRequest, "")
}

func TestEventAttendance(t *testing.T) {
	db := newTestDB()
	lc := NewListingController(db, NewNotifier(db))
	organizer, guest := createUser(t, db, "organizer"), createUser(t, db, "guest")
	ctx := context.Background()
	startsAt := time.Now().Add(24 * time.Hour)

	endsBefore := startsAt.Add(-time.Hour)
	_, httpErr := lc.CreateEvent(ctx, organizer, &EventReq{Title: "Town hall", Description: "d", StartsAt: startsAt, EndsAt: &endsBefore})
	requireHTTPErr(t, httpErr, http.StatusBadRequest, "")

	event, httpErr := lc.CreateEvent(ctx, organizer, &EventReq{Title: "Town hall", Description: "d", StartsAt: startsAt})
	require.Nil(t, httpErr)

	attending, httpErr := lc.Attend(ctx, guest, event.Id)
	require.Nil(t, httpErr)
	assert.Equal(t, 1, attending.AttendeeCount)
	assert.True(t, attending.IsAttending)

	_, httpErr = lc.Attend(ctx, guest, event.Id)
	requireHTTPErr(t, httpErr, http.StatusConflict, util.CodeConflict)

	notifications := notificationsFor(t, db, organizer)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotificationEventRSVP, notifications[0].Type)

	left, httpErr := lc.Unattend(ctx, guest, event.Id)
	require.Nil(t, httpErr)
	assert.Equal(t, 0, left.AttendeeCount)
	assert.False(t, left.IsAttending)

	_, httpErr = lc.Unattend(ctx, guest, event.Id)
	requireHTTPErr(t, httpErr, http.StatusNotFound, util.CodeNotFound)
}
