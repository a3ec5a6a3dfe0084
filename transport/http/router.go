package http

import (
	"github.com/gin-gonic/gin"

	"github.com/layer-3/rangda/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(authService *service.AuthService, serverName string) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(authService, serverName)

	// Client-server API routes
	client := router.Group("/_matrix/client/r0")
	{
		client.GET("/login", handlers.LoginTypes)
		client.POST("/login", handlers.Login)
		client.POST("/solana/nonce", handlers.Challenge)
	}

	// Routes requiring an access token
	authed := router.Group("/_matrix/client/r0")
	authed.Use(AuthMiddleware(authService))
	{
		authed.POST("/logout", handlers.Logout)
		authed.POST("/logout/all", handlers.LogoutAll)
		authed.GET("/account/whoami", handlers.WhoAmI)
	}

	return router
}
