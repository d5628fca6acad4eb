package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/memberhub/internal/handlers"
	"github.com/charlesng35/memberhub/internal/middleware"
)

func registerAuditRoutes(api *gin.RouterGroup, handler *handlers.AuditHandler, security *handlers.SecurityHandler, requireAuth gin.HandlerFunc) {
	api.GET("/audit", requireAuth, middleware.RequireAdmin(), handler.List)

	sec := api.Group("/security", requireAuth, middleware.RequireAdmin())
	sec.GET("/audit", security.Audit)
}
