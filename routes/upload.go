package routes

import (
	"errors"
	"net/http"

	"github.com/civicconnect/civicconnect-be/controllers"
	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/middleware"
	"github.com/civicconnect/civicconnect-be/services"
	"github.com/civicconnect/civicconnect-be/util"
	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for boundaries and part headers on top of
// the file itself.
const multipartOverhead = 64 << 10

type uploadRoutes struct {
	controller *controllers.UploadController
}

func AddUploadRoutes(group *gin.RouterGroup, db appDb.UserDatabase, tokens *services.TokenService, controller *controllers.UploadController) {
	routes := uploadRoutes{controller}
	upload := group.Group("/upload", middleware.GenAuth(db, tokens, &middleware.AuthConfig{}))
	upload.POST("/image", util.HandlerWrapper(routes.upload(controllers.UploadImage), &util.HandlerOpts{SuccessStatus: http.StatusCreated}))
	upload.POST("/avatar", util.HandlerWrapper(routes.upload(controllers.UploadAvatar), &util.HandlerOpts{SuccessStatus: http.StatusCreated}))
	upload.POST("/cover", util.HandlerWrapper(routes.upload(controllers.UploadCover), &util.HandlerOpts{SuccessStatus: http.StatusCreated}))
}

func (ur *uploadRoutes) upload(kind controllers.UploadKind) util.Handler {
	return func(c *gin.Context) (interface{}, *util.HTTPError) {
		maxBytes := ur.controller.MaxBytes()
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)
		fileHeader, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, controllers.TooLargeHTTPErr(maxBytes)
			}
			return nil, util.BadRequest("multipart field \"file\" is required")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return nil, util.BadRequest("could not read upload")
		}
		defer file.Close()
		return ur.controller.Upload(c, middleware.MustGetUser(c), kind, file, fileHeader.Size)
	}
}
