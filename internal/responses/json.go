package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sales_backend/internal/catalog"
	"sales_backend/internal/codec"
	"sales_backend/internal/logger"
	"sales_backend/internal/models"
	"sales_backend/internal/repositories"
	"sales_backend/internal/services"
	"sales_backend/internal/utils"
)

type APIResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

func Success(c *gin.Context, statusCode int, data any, message string) {
	c.JSON(statusCode, APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func Fail(c *gin.Context, statusCode int, err error, message string) {
	resp := APIResponse{
		Status:  "error",
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(statusCode, resp)
}

// Result renders an executor outcome, using its status as the HTTP status.
func Result(c *gin.Context, res models.OperationResult) {
	if res.OK() {
		data := res.Data
		if data == nil && res.RowsAffected != nil {
			data = gin.H{"rows_affected": *res.RowsAffected}
		}
		Success(c, http.StatusOK, data, res.Message)
		return
	}
	status := res.Status
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	c.JSON(status, APIResponse{
		Status:    "error",
		Message:   res.Message,
		ErrorCode: res.ErrorCode,
	})
}

// FromError maps an error returned by a service or the executor to a
// response. Unexpected errors are logged and reported without detail.
func FromError(c *gin.Context, err error) {
	status, code := Classify(err)
	if status >= http.StatusInternalServerError {
		logger.From(c.Request.Context()).Error("request failed", logger.Err(err))
		c.JSON(status, APIResponse{Status: "error", Message: http.StatusText(status)})
		return
	}
	c.JSON(status, APIResponse{Status: "error", Message: err.Error(), ErrorCode: code})
}

// Classify returns the HTTP status and error code for err.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrTokenRevoked),
		errors.Is(err, utils.ErrInvalidToken):
		return http.StatusUnauthorized, ""
	case errors.Is(err, catalog.ErrTableNotFound):
		return http.StatusNotFound, ""
	case errors.Is(err, catalog.ErrNotLoaded):
		return http.StatusServiceUnavailable, ""
	case errors.Is(err, codec.ErrInvalidPayload),
		errors.Is(err, repositories.ErrInvalidColumn),
		errors.Is(err, repositories.ErrInvalidOperator),
		errors.Is(err, repositories.ErrValidation),
		errors.Is(err, repositories.ErrUnknownFunction):
		return http.StatusBadRequest, ""
	}
	if _, _, ok := repositories.DuplicateEntry(err); ok {
		return http.StatusBadRequest, models.CodeDuplicateEntry
	}
	if repositories.IsIntegrityViolation(err) {
		return http.StatusBadRequest, models.CodeIntegrityError
	}
	return http.StatusInternalServerError, ""
}
