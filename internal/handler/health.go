package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartdiagnosis/internal/model"
)

// HealthHandler serves liveness and build information
type HealthHandler struct {
	svc     PredictionService
	version model.VersionResponse
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(svc PredictionService, version model.VersionResponse) *HealthHandler {
	return &HealthHandler{svc: svc, version: version}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Health(c.Request.Context()))
}

// Version handles GET /version
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, h.version)
}
