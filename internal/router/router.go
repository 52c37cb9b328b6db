package router

import (
	"github.com/gin-gonic/gin"

	"credsped/internal/handler"
	"credsped/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	analysisH *handler.AnalysisHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	analyses := v1.Group("/analyses")
	analyses.POST("", analysisH.Analyze)
	analyses.GET("", analysisH.List)
	analyses.GET("/:id", analysisH.Get)
	analyses.POST("/export/csv", analysisH.ExportCSV)
	analyses.POST("/export/xlsx", analysisH.ExportXLSX)

	return r
}
