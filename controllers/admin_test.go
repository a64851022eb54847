package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminCannotDemoteOrBanSelf(t *testing.T) {
	db := newTestDB()
	ac := NewAdminController(db)
	admin, user := createUser(t, db, "admin"), createUser(t, db, "user")
	admin.Role = model.RoleAdmin
	ctx := context.Background()

	_, httpErr := ac.SetRole(ctx, admin, admin.Id, model.RoleUser)
	requireHTTPErr(t, httpErr, http.StatusBadRequest, "")
	_, httpErr = ac.SetBanned(ctx, admin, admin.Id, true)
	requireHTTPErr(t, httpErr, http.StatusBadRequest, "")
	_, httpErr = ac.SetRole(ctx, admin, user.Id, model.Role("OWNER"))
	requireHTTPErr(t, httpErr, http.StatusBadRequest, "")

	promoted, httpErr := ac.SetRole(ctx, admin, user.Id, model.RoleAdmin)
	require.Nil(t, httpErr)
	assert.Equal(t, model.RoleAdmin, promoted.Role)

	banned, httpErr := ac.SetBanned(ctx, admin, user.Id, true)
	require.Nil(t, httpErr)
	assert.True(t, banned.IsBanned)

	_, httpErr = ac.SetBanned(ctx, admin, 999, true)
	requireHTTPErr(t, httpErr, http.StatusNotFound, util.CodeNotFound)
}
