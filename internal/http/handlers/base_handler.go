// README: Base handler utilities (JSON helpers, request binding, domain error mapping).
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"waslhaa/internal/modules/order"
	"waslhaa/internal/modules/pricing"
	"waslhaa/internal/modules/user"
	"waslhaa/internal/modules/zone"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, code, msg string) {
	writeJSON(c, status, errorResponse{Error: code, Message: msg})
}

// writeDomainError maps module errors to a status and a stable error code.
func writeDomainError(c *gin.Context, err error) {
	var cfgErr *pricing.ConfigurationError
	var trErr *order.InvalidTransitionError
	switch {
	case errors.As(err, &cfgErr), errors.Is(err, pricing.ErrConfiguration):
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "configuration_error", err.Error())
	case errors.As(err, &trErr):
		writeError(c, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, order.ErrNotFound), errors.Is(err, user.ErrNotFound), errors.Is(err, zone.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, order.ErrConflict):
		writeError(c, http.StatusConflict, "concurrent_modification", err.Error())
	case errors.Is(err, order.ErrActiveOrder):
		writeError(c, http.StatusConflict, "active_order_exists", err.Error())
	case errors.Is(err, user.ErrAlreadyExists):
		writeError(c, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, order.ErrBadRequest), errors.Is(err, user.ErrBadRequest):
		writeError(c, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, user.ErrForbidden):
		writeError(c, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, user.ErrNotApproved):
		writeError(c, http.StatusForbidden, "driver_not_approved", err.Error())
	case errors.Is(err, user.ErrVehicleMismatch):
		writeError(c, http.StatusConflict, "vehicle_mismatch", err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func badRequest(c *gin.Context, msg string) {
	writeError(c, http.StatusBadRequest, "bad_request", msg)
}

func forbidden(c *gin.Context, msg string) {
	writeError(c, http.StatusForbidden, "forbidden", msg)
}

// bindOptionalJSON decodes the body when one was sent.
func bindOptionalJSON(c *gin.Context, v any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid json: "+err.Error())
		return false
	}
	return true
}

// queryLimit parses ?limit; absent or invalid values fall back to the service default.
func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return n
}
