package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/memberhub/internal/handlers"
	"github.com/charlesng35/memberhub/internal/monitoring"
)

func registerHealthRoutes(r *gin.Engine, manager *monitoring.HealthManager) {
	health := handlers.Health(manager)
	r.GET("/health", health)
	r.GET("/api/health", health)
}
