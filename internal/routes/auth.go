package routes

import (
	"github.com/gin-gonic/gin"

	"sales_backend/internal/handlers"
)

type AuthRoutes struct {
	handler *handlers.AuthHandler
}

func NewAuthRoutes(handler *handlers.AuthHandler) *AuthRoutes {
	return &AuthRoutes{handler: handler}
}

func (r *AuthRoutes) RegisterRoutes(router *gin.RouterGroup, protect []gin.HandlerFunc) {
	// Public routes
	router.POST("/login", r.handler.Login)

	// Protected routes
	protected := router.Group("/", protect...)
	protected.POST("/logout", r.handler.Logout)
	protected.GET("/me", r.handler.Me)
}
