package middlewares

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireCSRF enforces the double-submit check on state-changing requests
// authenticated by cookie. Header-authenticated clients are exempt.
func RequireCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if !c.GetBool(viaCookieKey) {
			c.Next()
			return
		}

		cookie, err := c.Cookie(CSRFTokenCookie)
		header := c.GetHeader(CSRFHeader)
		if err != nil || cookie == "" || header == "" ||
			subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "error", "message": "CSRF token missing or invalid"})
			return
		}
		c.Next()
	}
}
