package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/memberhub/internal/monitoring"
	"github.com/charlesng35/memberhub/pkg/logger"
	"github.com/charlesng35/memberhub/pkg/response"
)

// Health reports readiness. The response maps each component to its probe
// status; a down component yields 503.
func Health(manager *monitoring.HealthManager) gin.HandlerFunc {
	log := logger.WithModule("health")

	return func(c *gin.Context) {
		report := manager.Evaluate(requestContext(c))

		data := gin.H{"status": "ok"}
		for _, check := range report.Checks {
			data[check.Component] = string(check.Status)
			if check.Status != monitoring.StatusUp {
				log.Warn("health probe failed",
					zap.String("component", check.Component),
					zap.String("status", string(check.Status)),
					zap.String("details", check.Details),
				)
			}
		}

		switch report.Status {
		case monitoring.StatusDown:
			data["status"] = "unavailable"
			c.JSON(http.StatusServiceUnavailable, response.Response{
				Success: false,
				Data:    data,
				Error:   &response.ErrorInfo{Code: "SERVICE_UNAVAILABLE", Message: "a required dependency is unavailable"},
			})
			return
		case monitoring.StatusDegraded:
			data["status"] = "degraded"
		}

		response.Success(c, http.StatusOK, data)
	}
}
