package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-vault/internal/api/shared/errors"
	"github.com/feral-file/ff-vault/internal/logger"
)

// errorResponse represents a standardized error response
type errorResponse struct {
	Error *apierrors.APIError `json:"error"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, apiErr *apierrors.APIError) {
	c.JSON(statusCode, errorResponse{Error: apiErr})
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondValidationError sends a 400 Bad Request with validation error.
// An APIError produced by request validation is sent as is.
func respondValidationError(c *gin.Context, err error) {
	if apiErr, ok := err.(*apierrors.APIError); ok {
		respondWithError(c, http.StatusBadRequest, apiErr)
		return
	}
	respondWithError(c, http.StatusBadRequest, apierrors.NewValidationError(err.Error()))
}

// respondDomainError maps a vault or hub error to its response and logs unexpected failures
func respondDomainError(c *gin.Context, err error, message string, fields ...zap.Field) {
	status, apiErr := apierrors.FromDomainError(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorCtx(c.Request.Context(), err, append(fields, zap.String("message", message))...)
		if status == http.StatusInternalServerError {
			apiErr = apierrors.NewInternalError(message)
		}
	}
	respondWithError(c, status, apiErr)
}
