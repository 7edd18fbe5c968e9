package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rohanpratim/bookworms/middleware"
	"github.com/rohanpratim/bookworms/services"
	"github.com/rohanpratim/bookworms/utils"
)

// respondServiceError maps a service outcome onto transport status codes:
// InvalidInput→422, Unauthorized→401, NotFound→404, Conflict→409, anything
// else→500. Domain errors echo their message; storage failures get the
// caller-facing fallback so driver details never leak.
func respondServiceError(ctx *gin.Context, code int, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
		message = err.Error()
	}
	utils.Error(ctx, status, code, message)
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

// parseIDParam reads a numeric path parameter. A non-numeric or zero value
// can never name an entity, so the helper answers NotFound itself and the
// caller only has to return.
func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(ctx.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusNotFound, 40400, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
