package routes

import (
	"net/http"

	"finley_backend/internal/handlers"
	"finley_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the health probes, the metrics endpoint and API v1.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *handlers.AppHandlers, metricsHandler http.Handler) {
	appHandlers.HealthHandler.RegisterRoutes(ginRouter)

	if metricsHandler != nil {
		ginRouter.GET("/metrics", gin.WrapH(metricsHandler))
	}

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.ProjectHandler.RegisterRoutes(api)
		appHandlers.AdminProjectHandler.RegisterRoutes(api)
		appHandlers.NotificationHandler.RegisterRoutes(api)
		appHandlers.CatalogHandler.RegisterRoutes(api)
		appHandlers.AttachmentHandler.RegisterRoutes(api)
	}
	logger.Info("HTTP routes registered", "routes", len(ginRouter.Routes()))
}
