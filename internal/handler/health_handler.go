// Package handler contains HTTP request handlers.
// In Gin, a handler is any function with signature func(*gin.Context),
// grouped here by file rather than by controller class.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	captions bool
}

// NewHealthHandler creates a new HealthHandler. captionsEnabled is reported
// so deployments can tell a missing API key from a dead service.
func NewHealthHandler(captionsEnabled bool) *HealthHandler {
	return &HealthHandler{captions: captionsEnabled}
}

// Healthz responds with service status.
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "pet-composer",
		"captions": h.captions,
	})
}
