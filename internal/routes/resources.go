package routes

import (
	"github.com/gin-gonic/gin"

	"sales_backend/internal/handlers"
)

type ResourceRoutes struct {
	prefix  string
	handler *handlers.ResourceHandler
}

func NewResourceRoutes(prefix string, handler *handlers.ResourceHandler) *ResourceRoutes {
	return &ResourceRoutes{prefix: prefix, handler: handler}
}

func (r *ResourceRoutes) RegisterRoutes(router *gin.RouterGroup) {
	g := router.Group(r.prefix)
	{
		g.POST("", r.handler.Create)
		g.GET("", r.handler.List)
		g.PUT("", r.handler.Update)
		g.POST("/bulk", r.handler.Bulk)
		g.POST("/search", r.handler.Search)
		g.DELETE("/:id", r.handler.Delete)
	}
}
