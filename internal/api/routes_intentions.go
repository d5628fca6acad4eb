package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/memberhub/internal/handlers"
	"github.com/charlesng35/memberhub/internal/middleware"
)

func registerIntentionRoutes(api *gin.RouterGroup, handler *handlers.IntentionHandler, requireAuth gin.HandlerFunc) {
	intentions := api.Group("/intentios")
	{
		// Public: applicants submit and redeem without an account.
		intentions.POST("", handler.Create)
		intentions.GET("/by-token/:token", handler.GetByToken)

		intentions.GET("", requireAuth, handler.List)

		admin := intentions.Group("", requireAuth, middleware.RequireAdmin())
		admin.GET("/:id", handler.Get)
		admin.PATCH("/:id", handler.Update)
		admin.DELETE("/:id", handler.Delete)
		admin.POST("/:id/approve", handler.Approve)
		admin.POST("/:id/reject", handler.Reject)
	}
}
