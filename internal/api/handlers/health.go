package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks the configuration store connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service health
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// HealthCheck godoc
// @Summary Health check
// @Description Reports whether the configuration store is reachable
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		slog.Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "connected", "version": Version})
}
