package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/looplj/crmhub/internal/guards"
	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/policies"
	"github.com/looplj/crmhub/internal/server/biz"
	"github.com/looplj/crmhub/internal/store"
)

// JSONError returns a JSON error response and adds the error to gin context for access logging.
func JSONError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.JSON(status, objects.ErrorResponse{
		Error: objects.Error{
			Type:    http.StatusText(status),
			Message: err.Error(),
		},
	})
}

// ServiceError maps service-layer failures onto HTTP statuses. Policy
// denials come back 403, guard violations 409 so callers can tell
// "you may not" apart from "this row will not".
func ServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		JSONError(c, http.StatusNotFound, err)
	case policies.IsPermissionDenied(err):
		JSONError(c, http.StatusForbidden, err)
	case errors.Is(err, guards.ErrInvariantViolation):
		JSONError(c, http.StatusConflict, err)
	case errors.Is(err, biz.ErrLeadConverted):
		JSONError(c, http.StatusConflict, err)
	default:
		JSONError(c, http.StatusInternalServerError, err)
	}
}

// PathID parses the ":id" route parameter. On failure it writes the 400
// response itself and returns ok=false.
func PathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		JSONError(c, http.StatusBadRequest, errors.New("invalid id"))
		return 0, false
	}

	return id, true
}

func pathInt(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		return 0, errors.New("invalid " + name)
	}

	return v, nil
}
