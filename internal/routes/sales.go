package routes

import (
	"github.com/gin-gonic/gin"

	"sales_backend/internal/handlers"
)

type SalesRoutes struct {
	invoices  *handlers.InvoiceHandler
	batch     *handlers.BatchHandler
	functions *handlers.FunctionHandler
	schema    *handlers.SchemaHandler
}

func NewSalesRoutes(invoices *handlers.InvoiceHandler, batch *handlers.BatchHandler, functions *handlers.FunctionHandler, schema *handlers.SchemaHandler) *SalesRoutes {
	return &SalesRoutes{invoices: invoices, batch: batch, functions: functions, schema: schema}
}

func (r *SalesRoutes) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/invoices", r.invoices.Create)
	router.GET("/invoices", r.invoices.List)

	batch := router.Group("/batch")
	{
		batch.POST("/create", r.batch.Create)
		batch.POST("/update", r.batch.Update)
	}

	router.GET("/functions", r.functions.List)
	router.POST("/functions/:name", r.functions.Call)

	schema := router.Group("/schema")
	{
		schema.GET("/tables", r.schema.Tables)
		schema.GET("/diagram", r.schema.Diagram)
	}
}
