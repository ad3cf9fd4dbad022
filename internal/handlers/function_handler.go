package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sales_backend/internal/codec"
	"sales_backend/internal/repositories"
	"sales_backend/internal/responses"
)

type FunctionHandler struct {
	exec CrudExecutor
}

func NewFunctionHandler(exec CrudExecutor) *FunctionHandler {
	return &FunctionHandler{exec: exec}
}

// List handles GET /functions
func (h *FunctionHandler) List(c *gin.Context) {
	responses.Success(c, http.StatusOK, repositories.AllowedFunctions(), "")
}

// Call handles POST /functions/:name with body {"args": [...]}. An argument
// of the form {"table": ..., "column": ...} references a column.
func (h *FunctionHandler) Call(c *gin.Context) {
	var req struct {
		Args []any `json:"args"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
			return
		}
	}
	args := make([]any, len(req.Args))
	for i, a := range req.Args {
		args[i] = functionArg(a)
	}
	responses.Result(c, h.exec.UseFunction(c.Request.Context(), c.Param("name"), args...))
}

func functionArg(v any) any {
	if m, ok := v.(map[string]any); ok {
		table, tOK := m["table"].(string)
		column, cOK := m["column"].(string)
		if tOK && cOK && len(m) == 2 {
			return repositories.ColumnArg{Table: table, Column: column}
		}
	}
	return codec.Scalar(v)
}
