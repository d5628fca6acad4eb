package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/memberhub/internal/handlers"
	"github.com/charlesng35/memberhub/internal/middleware"
)

func registerUserRoutes(api *gin.RouterGroup, handler *handlers.UserHandler, requireAuth gin.HandlerFunc) {
	users := api.Group("/users")
	users.Use(requireAuth)
	{
		users.GET("", middleware.RequireAdmin(), handler.List)
		users.POST("", middleware.RequireAdmin(), handler.Create)
		users.GET("/me", handler.Me)
		users.GET("/:id", handler.Get)
		users.PATCH("/:id", handler.Update)
		users.DELETE("/:id", middleware.RequireAdmin(), handler.Delete)
	}
}
