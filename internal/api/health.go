// Package api provides HTTP handlers for the mirror service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	pinger    Pinger
	log       *logrus.Logger
	version   string
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler with the given dependencies.
func NewHealthHandler(pinger Pinger, log *logrus.Logger, version string) *HealthHandler {
	return &HealthHandler{
		pinger:    pinger,
		log:       log,
		version:   version,
		startTime: time.Now(),
	}
}

// healthResponse is the JSON payload returned by the health/liveness endpoint.
type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// readinessResponse is the JSON payload returned by the readiness endpoint.
type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Liveness handles GET /api/v1/health.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:        "ok",
		Version:       h.version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	})
}

// Readiness handles GET /api/v1/ready — verifies both upstream APIs respond
// to an authenticated probe.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := map[string]string{
		"source":      "ok",
		"destination": "ok",
	}
	status := "ready"
	statusCode := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.pinger.PingSource(ctx); err != nil {
		h.log.WithError(err).Error("readiness: source ping failed")
		checks["source"] = "error"
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	if err := h.pinger.PingDestination(ctx); err != nil {
		h.log.WithError(err).Error("readiness: destination ping failed")
		checks["destination"] = "error"
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, readinessResponse{Status: status, Checks: checks})
}
