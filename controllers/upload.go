package controllers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/logger"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/services"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UploadKind string

const (
	UploadImage  UploadKind = "image"
	UploadAvatar UploadKind = "avatar"
	UploadCover  UploadKind = "cover"

	sniffLen = 512
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type UploadResult struct {
	Url         string      `json:"url"`
	ContentType string      `json:"contentType"`
	Size        int64       `json:"size"`
	User        *model.User `json:"user,omitempty"`
}

type UploadController struct {
	db       appDb.UserDatabase
	store    services.FileStore
	maxBytes int64
}

func NewUploadController(db appDb.UserDatabase, store services.FileStore, maxBytes int64) *UploadController {
	return &UploadController{db: db, store: store, maxBytes: maxBytes}
}

func (uc *UploadController) MaxBytes() int64 {
	return uc.maxBytes
}

func TooLargeHTTPErr(maxBytes int64) *util.HTTPError {
	return util.NewHTTPError(http.StatusRequestEntityTooLarge, util.CodeTooLarge,
		fmt.Sprintf("file exceeds the %d byte limit", maxBytes))
}

// Upload stores an image after sniffing its real content type. Avatar and
// cover uploads also update the user; the file is removed again if that
// update fails.
func (uc *UploadController) Upload(ctx context.Context, user *model.User, kind UploadKind, file io.Reader, size int64) (*UploadResult, *util.HTTPError) {
	if size > uc.maxBytes {
		return nil, TooLargeHTTPErr(uc.maxBytes)
	}
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, util.BadRequest("could not read upload")
	}
	head = head[:n]
	if n == 0 {
		return nil, util.BadRequest("file is empty")
	}
	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, util.NewHTTPError(http.StatusUnsupportedMediaType, util.CodeUnsupportedMedia,
			"only jpeg, png, gif and webp images are allowed")
	}

	counted := &countingReader{r: io.LimitReader(io.MultiReader(bytes.NewReader(head), file), uc.maxBytes+1)}
	key := fmt.Sprintf("%ss/%d/%s%s", kind, user.Id, uuid.NewString(), ext)
	url, err := uc.store.Save(ctx, key, contentType, counted)
	if err != nil {
		return nil, util.InternalHTTPErr("could not store file", err)
	}
	if counted.n > uc.maxBytes {
		uc.discard(ctx, key)
		return nil, TooLargeHTTPErr(uc.maxBytes)
	}
	result := &UploadResult{Url: url, ContentType: contentType, Size: counted.n}

	update := &appDb.UpdateUser{}
	switch kind {
	case UploadAvatar:
		update.Avatar = &url
	case UploadCover:
		update.CoverImage = &url
	default:
		return result, nil
	}
	if err := uc.db.UpdateUser(ctx, user.Id, update); err != nil {
		uc.discard(ctx, key)
		return nil, util.BuildDbHTTPErr(err)
	}
	if result.User, err = uc.db.GetUser(ctx, user.Id); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return result, nil
}

func (uc *UploadController) discard(ctx context.Context, key string) {
	if err := uc.store.Delete(ctx, key); err != nil {
		logger.FromContext(ctx).Warn("could not remove upload", zap.String("key", key), zap.Error(err))
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}
