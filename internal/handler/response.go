package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"insightval/internal/apperr"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// serviceError maps the error taxonomy onto HTTP statuses and tags the kind
// in meta. Anything outside it is a store failure.
func serviceError(c *gin.Context, err error) {
	status, kind := http.StatusBadGateway, "store"
	switch {
	case errors.Is(err, apperr.ErrValidation):
		status, kind = http.StatusBadRequest, "validation"
	case errors.Is(err, apperr.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, apperr.ErrInvariant):
		status, kind = http.StatusConflict, "invariant"
	}
	Error(c, status, err.Error(), map[string]any{"error": kind})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), map[string]any{"error": "validation"})
		return false
	}
	return true
}
