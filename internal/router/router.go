package router

import (
	"github.com/gin-gonic/gin"

	"mongoprov/internal/config"
	"mongoprov/internal/handler"
	"mongoprov/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
// Authentication of the API itself is handled by the surrounding platform.
func Setup(
	cfg *config.Config,
	provisionH *handler.ProvisionHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/v1")
	v1.POST("/validate", provisionH.Validate)
	v1.POST("/provision", provisionH.Provision)
	v1.POST("/unprovision", provisionH.Unprovision)
	v1.POST("/updateacl", provisionH.UpdateACL)
	v1.POST("/reverse-provision", provisionH.ReverseProvision)

	return r
}
