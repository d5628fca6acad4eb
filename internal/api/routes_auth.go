package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/memberhub/internal/handlers"
)

func registerAuthRoutes(api *gin.RouterGroup, handler *handlers.AuthHandler, requireAuth, limiter gin.HandlerFunc) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", limiter, handler.Login)
		auth.POST("/register", limiter, handler.Register)
		auth.GET("/me", requireAuth, handler.Me)
	}
}
