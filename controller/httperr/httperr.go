// Package httperr translates service errors into HTTP responses.
package httperr

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"teamboard/dto"
	"teamboard/model"
)

// enumTags are binding tags whose failure means an unrecognized enum value.
var enumTags = map[string]bool{
	"taskstatus":   true,
	"taskpriority": true,
	"oneof":        true,
}

// Status returns the HTTP status for err.
func Status(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Abort writes {"error": ..., "code": ...} for err. Internal failures get a
// generic message.
func Abort(c *gin.Context, err error) {
	status := Status(err)
	msg := err.Error()
	code := model.ErrorCode(err)
	if status == http.StatusInternalServerError {
		log.Printf("[server] %s %s: %v", c.Request.Method, c.FullPath(), err)
		msg = "Internal server error"
		code = model.ErrorCode(model.ErrStoreFailure)
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: msg, Code: code})
}

// BadRequest reports a request body that failed to bind. An unknown enum
// value is an invalid argument; anything else is a validation failure.
func BadRequest(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if enumTags[fe.Tag()] {
				Abort(c, fmt.Errorf("%w: %s %q", model.ErrInvalidArgument, fe.Field(), fmt.Sprint(fe.Value())))
				return
			}
		}
	}
	Abort(c, fmt.Errorf("%w: invalid input: %v", model.ErrValidation, err))
}
