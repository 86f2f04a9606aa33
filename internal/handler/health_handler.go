package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mongoprov/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db port.DatabaseClient
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db port.DatabaseClient) *HealthHandler {
	return &HealthHandler{db: db}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "mongodb not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
