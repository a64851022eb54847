package controllers

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/civicconnect/civicconnect-be/services"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func pngOfSize(n int) []byte {
	return append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, n-len(pngHeader))...)
}

func TestUploadImage(t *testing.T) {
	db := newTestDB()
	store := services.NewFakeFileStore()
	uc := NewUploadController(db, store, 1024)
	user := createUser(t, db, "ada")

	file := pngOfSize(100)
	result, httpErr := uc.Upload(context.Background(), user, UploadImage, bytes.NewReader(file), int64(len(file)))
	require.Nil(t, httpErr)
	assert.Equal(t, "image/png", result.ContentType)
	assert.Equal(t, int64(100), result.Size)
	assert.Nil(t, result.User)
	assert.True(t, strings.HasPrefix(result.Url, "https://files.test/images/1/"), result.Url)
	assert.True(t, strings.HasSuffix(result.Url, ".png"), result.Url)

	require.Len(t, store.Files, 1)
	for _, stored := range store.Files {
		assert.Equal(t, file, stored)
	}
}

func TestUploadAvatarUpdatesUser(t *testing.T) {
	db := newTestDB()
	uc := NewUploadController(db, services.NewFakeFileStore(), 1024)
	user := createUser(t, db, "ada")

	file := pngOfSize(64)
	result, httpErr := uc.Upload(context.Background(), user, UploadAvatar, bytes.NewReader(file), int64(len(file)))
	require.Nil(t, httpErr)
	require.NotNil(t, result.User)
	assert.Equal(t, result.Url, result.User.Avatar)

	stored, err := db.GetUser(context.Background(), user.Id)
	require.NoError(t, err)
	assert.Equal(t, result.Url, stored.Avatar)
}

func TestUploadRejectsNonImages(t *testing.T) {
	db := newTestDB()
	store := services.NewFakeFileStore()
	uc := NewUploadController(db, store, 1024)
	user := createUser(t, db, "ada")

	content := "just some text pretending to be a picture"
	_, httpErr := uc.Upload(context.Background(), user, UploadImage, strings.NewReader(content), int64(len(content)))
	requireHTTPErr(t, httpErr, http.StatusUnsupportedMediaType, util.CodeUnsupportedMedia)

	_, httpErr = uc.Upload(context.Background(), user, UploadImage, strings.NewReader(""), 0)
	requireHTTPErr(t, httpErr, http.StatusBadRequest, "")
	assert.Empty(t, store.Files)
}

func TestUploadEnforcesLimit(t *testing.T) {
	db := newTestDB()
	store := services.NewFakeFileStore()
	uc := NewUploadController(db, store, 64)
	user := createUser(t, db, "ada")

	file := pngOfSize(200)
	_, httpErr := uc.Upload(context.Background(), user, UploadImage, bytes.NewReader(file), int64(len(file)))
	requireHTTPErr(t, httpErr, http.StatusRequestEntityTooLarge, util.CodeTooLarge)

	// a lying size header is caught while streaming and the partial file removed
	_, httpErr = uc.Upload(context.Background(), user, UploadImage, bytes.NewReader(file), 10)
	requireHTTPErr(t, httpErr, http.StatusRequestEntityTooLarge, util.CodeTooLarge)
	assert.Empty(t, store.Files)
}
