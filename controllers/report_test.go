package controllers

import (
	"context"
	"net/http"
	"testing"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReport(t *testing.T) {
	db := newTestDB()
	rc := NewReportController(db)
	author, reporter := createUser(t, db, "author"), createUser(t, db, "reporter")
	ctx := context.Background()
	postId, err := db.CreatePost(ctx, &appDb.CreatePost{AuthorId: author.Id, Content: "spam"})
	require.NoError(t, err)

	_, httpErr := rc.CreateReport(ctx, author, &CreateReportReq{TargetType: model.TargetPost, TargetId: postId, Reason: "mine"})
	requireHTTPErr(t, httpErr, http.StatusBadRequest, util.CodeCannotReportOwn)
	_, httpErr = rc.CreateReport(ctx, reporter, &CreateReportReq{TargetType: model.TargetUser, TargetId: reporter.Id, Reason: "myself"})
	requireHTTPErr(t, httpErr, http.StatusBadRequest, util.CodeCannotReportOwn)

	report, httpErr := rc.CreateReport(ctx, reporter, &CreateReportReq{TargetType: model.TargetPost, TargetId: postId, Reason: "spam"})
	require.Nil(t, httpErr)
	assert.Equal(t, model.ReportPending, report.Status)

	_, httpErr = rc.CreateReport(ctx, reporter, &CreateReportReq{TargetType: model.TargetPost, TargetId: postId, Reason: "still spam"})
	requireHTTPErr(t, httpErr, http.StatusConflict, util.CodeConflict)

	_, httpErr = rc.CreateReport(ctx, reporter, &CreateReportReq{TargetType: model.TargetPost, TargetId: postId + 100, Reason: "gone"})
	requireHTTPErr(t, httpErr, http.StatusNotFound, util.CodeNotFound)
	_, httpErr = rc.CreateReport(ctx, reporter, &CreateReportReq{TargetType: model.TargetEvent, TargetId: 1, Reason: "events"})
	requireHTTPErr(t, httpErr, http.StatusBadRequest, "")
}

func TestUpdateReportStatus(t *testing.T) {
	db := newTestDB()
	rc := NewReportController(db)
	admin, reporter, target := createUser(t, db, "admin"), createUser(t, db, "reporter"), createUser(t, db, "target")
	ctx := context.Background()
	report, httpErr := rc.CreateReport(ctx, reporter, &CreateReportReq{TargetType: model.TargetUser, TargetId: target.Id, Reason: "abuse"})
	require.Nil(t, httpErr)

	_, httpErr = rc.UpdateStatus(ctx, admin, report.Id, model.ReportStatus("MAYBE"))
	requireHTTPErr(t, httpErr, http.StatusBadRequest, "")

	resolved, httpErr := rc.UpdateStatus(ctx, admin, report.Id, model.ReportResolved)
	require.Nil(t, httpErr)
	assert.Equal(t, model.ReportResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, admin.Id, *resolved.ResolvedBy)

	_, httpErr = rc.UpdateStatus(ctx, admin, report.Id+1, model.ReportDismissed)
	requireHTTPErr(t, httpErr, http.StatusNotFound, util.CodeNotFound)
}
