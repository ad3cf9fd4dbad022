package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sales_backend/internal/models"
	"sales_backend/internal/responses"
	"sales_backend/internal/services"
	"sales_backend/internal/utils"
)

type InvoiceHandler struct {
	salesService *services.SalesService
}

func NewInvoiceHandler(salesService *services.SalesService) *InvoiceHandler {
	return &InvoiceHandler{salesService: salesService}
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var inv models.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid invoice")
		return
	}
	created, err := h.salesService.CreateInvoice(c.Request.Context(), inv)
	if err != nil {
		responses.FromError(c, err)
		return
	}
	responses.Success(c, http.StatusCreated, created, "Invoice created successfully")
}

// List handles GET /invoices?num_fac=
func (h *InvoiceHandler) List(c *gin.Context) {
	var number *int64
	if raw, ok := c.GetQuery("num_fac"); ok {
		n, valid := utils.ParseID(raw)
		if !valid {
			responses.Fail(c, http.StatusBadRequest, nil, "Invalid invoice number")
			return
		}
		number = &n
	}
	rows, err := h.salesService.ListInvoices(c.Request.Context(), number)
	if err != nil {
		responses.FromError(c, err)
		return
	}
	responses.Success(c, http.StatusOK, rows, "")
}
