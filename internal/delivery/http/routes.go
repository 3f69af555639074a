package http

import (
	"github.com/gin-gonic/gin"

	"github.com/dealradar/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		listings := v1.Group("/listings")
		{
			listings.POST("/ingest", handler.IngestListings)
			listings.POST("/enrich", handler.EnrichIdentifiers)
		}

		v1.POST("/counterparts/refresh", handler.RefreshCounterparts)
		v1.GET("/deals", handler.GetDeals)
		v1.GET("/stats", handler.GetStats)
	}

	return router
}
