package controllers

import (
	"context"
	"fmt"
	"net/http"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/util"
)

type CreateReportReq struct {
	TargetType model.TargetType `json:"targetType" binding:"required"`
	TargetId   int64            `json:"targetId" binding:"required,gt=0"`
	Reason     string           `json:"reason" binding:"required,min=3,max=200"`
	Details    string           `json:"details" binding:"max=2000"`
}

type ReportController struct {
	db appDb.ReportDatabase
}

func NewReportController(db appDb.ReportDatabase) *ReportController {
	return &ReportController{db: db}
}

func (rc *ReportController) CreateReport(ctx context.Context, user *model.User, req *CreateReportReq) (*model.Report, *util.HTTPError) {
	if !req.TargetType.Reportable() {
		return nil, util.BadRequest(fmt.Sprintf("cannot report a %q", req.TargetType))
	}
	ownerId, found, err := rc.db.GetTargetOwner(ctx, req.TargetType, req.TargetId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if !found {
		return nil, util.NotFound("report target")
	}
	if ownerId == user.Id {
		return nil, util.NewHTTPError(http.StatusBadRequest, util.CodeCannotReportOwn, "cannot report your own content")
	}
	report := &model.Report{
		ReporterId: user.Id,
		TargetType: req.TargetType,
		TargetId:   req.TargetId,
		Reason:     util.SanitizeText(req.Reason),
		Details:    util.SanitizeText(req.Details),
	}
	if _, err := rc.db.CreateReport(ctx, report); err != nil {
		if appDb.IsDupKeyErr(err) {
			return nil, util.Conflict("you already reported this")
		}
		return nil, util.BuildDbHTTPErr(err)
	}
	return report, nil
}

func (rc *ReportController) UpdateStatus(ctx context.Context, admin *model.User, id int64, status model.ReportStatus) (*model.Report, *util.HTTPError) {
	if !status.Valid() {
		return nil, util.BadRequest(fmt.Sprintf("unknown report status %q", status))
	}
	if err := rc.db.UpdateReportStatus(ctx, id, status, admin.Id); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	report, err := rc.db.GetReport(ctx, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if report == nil {
		return nil, util.NotFound("report")
	}
	return report, nil
}
