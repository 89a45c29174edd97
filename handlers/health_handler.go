package handlers

import (
	"context"
	"net/http"

	"github.com/NomadCrew/nomad-split-backend/services"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/gin-gonic/gin"
)

// HealthChecker is the part of services.HealthService the handler needs.
type HealthChecker interface {
	CheckHealth(ctx context.Context) types.HealthCheck
	Ready(ctx context.Context) bool
}

var _ HealthChecker = (*services.HealthService)(nil)

type HealthHandler struct {
	healthService HealthChecker
}

func NewHealthHandler(healthService HealthChecker) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

// DetailedHealth godoc
// @Summary Component health
// @Tags health
// @Produce json
// @Success 200 {object} types.HealthCheck
// @Failure 503 {object} types.HealthCheck
// @Router /health [get]
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())

	status := http.StatusOK
	if health.Status == types.HealthStatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}

// LivenessCheck handles kubernetes liveness probe
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": types.HealthStatusUp})
}

// ReadinessCheck handles kubernetes readiness probe
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if !h.healthService.Ready(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": types.HealthStatusDown})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": types.HealthStatusUp})
}
