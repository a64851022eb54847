package controllers

import (
	"context"
	"fmt"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/util"
)

type ConnectionControllerDatabase interface {
	appDb.UserDatabase
	appDb.ConnectionDatabase
}

type ConnectionController struct {
	db       ConnectionControllerDatabase
	notifier *Notifier
}

func NewConnectionController(db ConnectionControllerDatabase, notifier *Notifier) *ConnectionController {
	return &ConnectionController{db: db, notifier: notifier}
}

func (cc *ConnectionController) Connect(ctx context.Context, user *model.User, otherId int64) *util.HTTPError {
	if otherId == user.Id {
		return util.BadRequest("cannot connect with yourself")
	}
	other, err := cc.db.GetUser(ctx, otherId)
	if err != nil {
		return util.BuildDbHTTPErr(err)
	}
	if other == nil || other.IsBanned {
		return util.NotFound("user")
	}
	connected, err := cc.db.IsConnected(ctx, user.Id, otherId)
	if err != nil {
		return util.BuildDbHTTPErr(err)
	}
	if connected {
		return util.Conflict("already connected")
	}
	if err := cc.db.Connect(ctx, user.Id, otherId); err != nil {
		if appDb.IsDupKeyErr(err) {
			return util.Conflict("already connected")
		}
		return util.BuildDbHTTPErr(err)
	}
	logNotifyErr(ctx, cc.notifier.Notify(ctx, actorNotification(user, otherId,
		model.NotificationConnection, fmt.Sprintf("%s connected with you", user.Name), model.TargetUser, user.Id)))
	return nil
}

func (cc *ConnectionController) Disconnect(ctx context.Context, user *model.User, otherId int64) *util.HTTPError {
	if otherId == user.Id {
		return util.BadRequest("cannot disconnect from yourself")
	}
	existed, err := cc.db.Disconnect(ctx, user.Id, otherId)
	if err != nil {
		return util.BuildDbHTTPErr(err)
	}
	if !existed {
		return util.NotFound("connection")
	}
	return nil
}
