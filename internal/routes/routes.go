package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sales_backend/internal/handlers"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Sellers   *handlers.ResourceHandler
	Products  *handlers.ResourceHandler
	Invoices  *handlers.InvoiceHandler
	Batch     *handlers.BatchHandler
	Functions *handlers.FunctionHandler
	Schema    *handlers.SchemaHandler
}

// RegisterRoutes mounts the API under /api/v1. protect runs in front of
// every route except login.
func RegisterRoutes(router *gin.Engine, h Handlers, protect ...gin.HandlerFunc) {
	api := router.Group("/api/v1")

	NewAuthRoutes(h.Auth).RegisterRoutes(api, protect)

	protected := api.Group("/", protect...)
	NewResourceRoutes("/sellers", h.Sellers).RegisterRoutes(protected)
	NewResourceRoutes("/products", h.Products).RegisterRoutes(protected)
	NewSalesRoutes(h.Invoices, h.Batch, h.Functions, h.Schema).RegisterRoutes(protected)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
