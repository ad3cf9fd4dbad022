package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sales_backend/internal/models"
	"sales_backend/internal/responses"
)

type BatchHandler struct {
	exec CrudExecutor
}

func NewBatchHandler(exec CrudExecutor) *BatchHandler {
	return &BatchHandler{exec: exec}
}

// Create handles POST /batch/create
func (h *BatchHandler) Create(c *gin.Context) {
	var batches []models.TableBatch
	if err := c.ShouldBindJSON(&batches); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	res, err := h.exec.CreateMultipleAtomic(c.Request.Context(), batches)
	if err != nil {
		responses.FromError(c, err)
		return
	}
	responses.Result(c, res)
}

// Update handles POST /batch/update
func (h *BatchHandler) Update(c *gin.Context) {
	var updates []models.TableUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	responses.Result(c, h.exec.UpdateMultipleAtomic(c.Request.Context(), updates))
}
