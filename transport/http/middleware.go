package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/service"
)

const sessionKey = "session"

// AuthMiddleware creates middleware that validates access tokens.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errcode": "M_MISSING_TOKEN", "error": "Missing access token"})
			return
		}

		session, err := authService.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errcode": "M_UNKNOWN_TOKEN", "error": "Invalid access token"})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// sessionFromContext returns the session stored by AuthMiddleware. Only
// valid on routes behind the middleware.
func sessionFromContext(c *gin.Context) core.Session {
	v, _ := c.Get(sessionKey)
	session, _ := v.(core.Session)
	return session
}
