package api

import (
	"github.com/gin-gonic/gin"

	"github.com/rankinbc/leadgen/internal/api/handlers"
	apimiddleware "github.com/rankinbc/leadgen/internal/api/middleware"
	"github.com/rankinbc/leadgen/internal/config"
)

func SetupRouter(cfg *config.Config, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking())

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	router.GET("/health", handlers.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	// Generation endpoints
	generateHandler := handlers.NewGenerateHandler(cfg)
	router.POST("/api/generate", generateHandler.Generate)
	router.POST("/api/generate/midi", generateHandler.GenerateMIDI)
	router.GET("/api/genres", handlers.Genres)

	return router
}
