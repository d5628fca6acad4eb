package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/memberhub/internal/handlers"
	"github.com/charlesng35/memberhub/internal/middleware"
)

func registerRealtimeRoutes(api *gin.RouterGroup, handler *handlers.RealtimeHandler, requireAuth gin.HandlerFunc) {
	api.GET("/ws", requireAuth, middleware.RequireAdmin(), handler.Stream)
}
