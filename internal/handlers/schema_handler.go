package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sales_backend/internal/responses"
	"sales_backend/internal/services"
)

type SchemaHandler struct {
	schemaService *services.SchemaService
}

func NewSchemaHandler(schemaService *services.SchemaService) *SchemaHandler {
	return &SchemaHandler{schemaService: schemaService}
}

// Tables handles GET /schema/tables
func (h *SchemaHandler) Tables(c *gin.Context) {
	tables, err := h.schemaService.Tables()
	if err != nil {
		responses.FromError(c, err)
		return
	}
	responses.Success(c, http.StatusOK, tables, "")
}

// Diagram handles GET /schema/diagram
func (h *SchemaHandler) Diagram(c *gin.Context) {
	diagram, err := h.schemaService.Diagram()
	if err != nil {
		responses.FromError(c, err)
		return
	}
	responses.Success(c, http.StatusOK, gin.H{"mermaid": diagram}, "Schema diagram generated successfully")
}
