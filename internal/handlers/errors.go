package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hospital-frontdesk-server/internal/middleware"
	"hospital-frontdesk-server/internal/policy"
	"hospital-frontdesk-server/internal/scheduling"
	"hospital-frontdesk-server/internal/utils"
)

// statusFor maps a scheduling error kind to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, scheduling.ErrValidation):
		return http.StatusBadRequest, utils.CodeValidation
	case errors.Is(err, scheduling.ErrUnauthorized):
		return http.StatusForbidden, utils.CodeForbidden
	case errors.Is(err, scheduling.ErrNotFound):
		return http.StatusNotFound, utils.CodeNotFound
	case errors.Is(err, scheduling.ErrConflict):
		return http.StatusConflict, utils.CodeConflict
	case errors.Is(err, scheduling.ErrInvalidState):
		return http.StatusConflict, utils.CodeInvalidState
	default:
		return http.StatusInternalServerError, utils.CodeInternal
	}
}

// respondError renders err. Store failures are attached to the gin context
// for the request logger and hidden from the client.
func respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		utils.Error(c, status, code, "internal server error")
		return
	}
	utils.Error(c, status, code, err.Error())
}

// principal resolves the caller or writes a 401 and returns false.
func principal(c *gin.Context) (policy.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return policy.Principal{}, false
	}
	return p, true
}
