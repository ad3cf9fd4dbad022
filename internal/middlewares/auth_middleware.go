package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"sales_backend/internal/logger"
	"sales_backend/internal/utils"
)

const (
	AccessTokenCookie = "access_token"
	CSRFTokenCookie   = "csrf_token"
	CSRFHeader        = "X-CSRF-TOKEN"

	claimsKey    = "claims"
	viaCookieKey = "authViaCookie"
)

// Authenticator verifies access tokens. *services.AuthService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*utils.Claims, error)
}

// Authenticate accepts the token from the access_token cookie or from the
// Authorization header, both in "Bearer <token>" form.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		viaCookie := false
		if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
			token = utils.BearerToken(cookie)
			viaCookie = true
		}
		if token == "" {
			token = utils.BearerToken(c.GetHeader("Authorization"))
			viaCookie = false
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Not authenticated"})
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.From(c.Request.Context()).Debug("token rejected", logger.Err(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid or expired token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Set(viaCookieKey, viaCookie)
		c.Next()
	}
}

// Claims returns the claims stored by Authenticate.
func Claims(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}
