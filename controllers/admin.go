package controllers

import (
	"context"
	"fmt"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/util"
)

type AdminController struct {
	db appDb.UserDatabase
}

func NewAdminController(db appDb.UserDatabase) *AdminController {
	return &AdminController{db: db}
}

// SetRole refuses to let an admin demote themselves, so at least the
// caller stays an admin.
func (ac *AdminController) SetRole(ctx context.Context, admin *model.User, userId int64, role model.Role) (*model.User, *util.HTTPError) {
	if !role.Valid() {
		return nil, util.BadRequest(fmt.Sprintf("unknown role %q", role))
	}
	if userId == admin.Id && role != model.RoleAdmin {
		return nil, util.BadRequest("cannot change your own role")
	}
	return ac.update(ctx, userId, &appDb.UpdateUser{Role: &role})
}

func (ac *AdminController) SetBanned(ctx context.Context, admin *model.User, userId int64, banned bool) (*model.User, *util.HTTPError) {
	if userId == admin.Id {
		return nil, util.BadRequest("cannot ban yourself")
	}
	return ac.update(ctx, userId, &appDb.UpdateUser{IsBanned: &banned})
}

func (ac *AdminController) update(ctx context.Context, userId int64, update *appDb.UpdateUser) (*model.User, *util.HTTPError) {
	if err := ac.db.UpdateUser(ctx, userId, update); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	user, err := ac.db.GetUser(ctx, userId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if user == nil {
		return nil, util.NotFound("user")
	}
	return user, nil
}
