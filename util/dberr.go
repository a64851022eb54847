package util

import (
	"errors"
	"net/http"

	appDb "github.com/civicconnect/civicconnect-be/db"
)

// BuildDbHTTPErr maps store errors onto the error envelope. Unknown errors
// become a 500 whose cause is logged, not returned.
func BuildDbHTTPErr(err error) *HTTPError {
	switch {
	case errors.Is(err, appDb.ErrNotFound):
		return NewHTTPError(http.StatusNotFound, CodeNotFound, "resource not found")
	case appDb.IsDupKeyErr(err):
		return NewHTTPError(http.StatusConflict, CodeConflict, "resource already exists")
	}
	httpErr := DbHTTPErr
	httpErr.Cause = err
	return &httpErr
}

func InternalHTTPErr(message string, cause error) *HTTPError {
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: message,
		Cause:   cause,
	}
}
