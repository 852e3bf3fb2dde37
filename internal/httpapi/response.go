package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/pmstore/pkg/types"
)

// Response is the envelope for every API reply.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// success writes data with the given status.
func success(c *gin.Context, status int, data any) {
	c.JSON(status, Response{
		Code:    status,
		Message: "ok",
		Data:    data,
	})
}

// failure writes err with the status it maps to.
func failure(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, Response{
		Code:    status,
		Message: err.Error(),
	})
}

// badRequest writes a 400 with message.
func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// statusFor maps store errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound), errors.Is(err, types.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrValidation), errors.Is(err, types.ErrInvalidData):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrReferenced):
		return http.StatusConflict
	case errors.Is(err, types.ErrDanglingReference), errors.Is(err, types.ErrInvalidReference):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
