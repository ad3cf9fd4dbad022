package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sales_backend/internal/middlewares"
	"sales_backend/internal/responses"
	"sales_backend/internal/services"
)

// CookieConfig controls the auth cookies.
type CookieConfig struct {
	Domain string
	Secure bool
}

type AuthHandler struct {
	authService *services.AuthService
	cookies     CookieConfig
}

func NewAuthHandler(authService *services.AuthService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

// Login handles POST /login with form or JSON credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `form:"username" json:"username" binding:"required"`
		Password string `form:"password" json:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Please provide your username and password")
		return
	}

	token, claims, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			responses.Fail(c, http.StatusUnauthorized, nil, "Incorrect username or password")
			return
		}
		responses.FromError(c, err)
		return
	}

	maxAge := int(time.Until(claims.ExpiresAt.Time).Seconds())
	csrf := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.AccessTokenCookie, "Bearer "+token, maxAge, "/", h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(middlewares.CSRFTokenCookie, csrf, maxAge, "/", h.cookies.Domain, h.cookies.Secure, false)

	responses.Success(c, http.StatusOK, gin.H{
		"email":      claims.Email,
		"expires_at": claims.ExpiresAt.Time,
	}, "Login successful")
}

// Logout handles POST /logout. The token stays revoked until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middlewares.Claims(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		responses.FromError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.AccessTokenCookie, "", -1, "/", h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(middlewares.CSRFTokenCookie, "", -1, "/", h.cookies.Domain, h.cookies.Secure, false)
	responses.Success(c, http.StatusOK, nil, "Logged out successfully")
}

// Me handles GET /me
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middlewares.Claims(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{"id": claims.Subject, "email": claims.Email}, "")
}
