package util

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/logger"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeBadRequest       = "BAD_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInvalidToken     = "INVALID_TOKEN"
	CodeInvalidCreds     = "INVALID_CREDENTIALS"
	CodeAccountBanned    = "ACCOUNT_BANNED"
	CodeCannotReportOwn  = "CANNOT_REPORT_OWN"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeRateLimited      = "RATE_LIMITED"
	CodeTooLarge         = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedMedia = "UNSUPPORTED_MEDIA_TYPE"
	CodeInternal         = "INTERNAL_ERROR"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details interface{}
	// Cause is logged for server errors and never sent to the client.
	Cause error
}

func (he *HTTPError) Error() string {
	return fmt.Sprintf("%v (statusCode=%v, code=%v)", he.Message, he.Status, he.Code)
}

var (
	DbHTTPErr = HTTPError{
		Message: "database error",
		Code:    CodeInternal,
		Status:  http.StatusInternalServerError,
	}
	MalformedIdHTTPErr = HTTPError{
		Message: "id malformed",
		Code:    CodeBadRequest,
		Status:  http.StatusBadRequest,
	}
)

func NewHTTPError(status int, code string, message string) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message}
}

func BadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, CodeBadRequest, message)
}

func NotFound(what string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, CodeNotFound, what+" not found")
}

func Forbidden(message string) *HTTPError {
	return NewHTTPError(http.StatusForbidden, CodeForbidden, message)
}

func Conflict(message string) *HTTPError {
	return NewHTTPError(http.StatusConflict, CodeConflict, message)
}

func Unauthorized(code string, message string) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, code, message)
}

// HandlerOpts tweaks how HandlerWrapper renders a successful result.
type HandlerOpts struct {
	SuccessStatus int
}

type Handler func(c *gin.Context) (interface{}, *HTTPError)

// HandlerWrapper turns a Handler into a gin.HandlerFunc rendering the
// success or error envelope.
func HandlerWrapper(handler Handler, opts *HandlerOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, httpErr := handler(c)
		if httpErr != nil {
			HandleHTTPErrorRes(c, httpErr)
			return
		}
		status := http.StatusOK
		if opts != nil && opts.SuccessStatus != 0 {
			status = opts.SuccessStatus
		}
		c.JSON(status, gin.H{
			"success": true,
			"data":    data,
		})
	}
}

/*
	HandleHTTPErrorRes handles creating the appropriate response for the HTTP error.
	break the route after calling this function
*/
func HandleHTTPErrorRes(c *gin.Context, err *HTTPError) {
	if err.Status >= http.StatusInternalServerError {
		logger.FromGin(c).Error("request failed",
			zap.String("code", err.Code),
			zap.String("message", err.Message),
			zap.Error(err.Cause))
	}
	body := gin.H{
		"message": err.Message,
		"code":    err.Code,
	}
	if err.Details != nil {
		body["details"] = err.Details
	}
	c.AbortWithStatusJSON(err.Status, gin.H{
		"success": false,
		"error":   body,
	})
}

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// BuildJSONBindHTTPErr converts a binding failure into a 400, listing the
// failed validator rules per field when they are available.
func BuildJSONBindHTTPErr(err error) *HTTPError {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]FieldError, len(validationErrs))
		for i, fe := range validationErrs {
			fields[i] = FieldError{Field: lowerFirst(fe.Field()), Rule: fe.Tag()}
		}
		return &HTTPError{
			Status:  http.StatusBadRequest,
			Code:    CodeValidation,
			Message: "validation failed",
			Details: fields,
		}
	}
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Code:    CodeValidation,
		Message: "malformed request body",
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func ParseId(raw string) (int64, *HTTPError) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		httpErr := MalformedIdHTTPErr
		return 0, &httpErr
	}
	return id, nil
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 50
)

// ParsePaging reads page/limit query params, clamping them to sane bounds.
func ParsePaging(c *gin.Context) appDb.Page {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageLimit)))
	if err != nil || limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return appDb.Page{Page: page, Limit: limit}
}

type PageRes struct {
	Items interface{} `json:"items"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Total int64       `json:"total"`
}
