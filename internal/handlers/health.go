package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/motopark/api/internal/middleware"
)

const (
	// APIName is reported by the index endpoint
	APIName = "Motorbike Parking API"
	// APIVersion is the current version of the API
	APIVersion = "1.0.0"
	// HealthCheckTimeout is the timeout for database health checks
	HealthCheckTimeout = 2 * time.Second
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check, readiness and index endpoints.
type HealthHandler struct {
	db        Pinger
	startTime time.Time
	now       func() time.Time
	env       string
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(db Pinger, env string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startTime: time.Now(),
		now:       time.Now,
		env:       env,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	Environment string    `json:"environment"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
}

// IndexResponse lists the API's endpoint groups.
type IndexResponse struct {
	Endpoints map[string]string `json:"endpoints"`
	Message   string            `json:"message"`
	Version   string            `json:"version"`
}

// Health handles GET /health endpoint.
// It does not check any dependencies and is used for liveness checks.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "ok",
		Timestamp:   h.now().UTC(),
		Environment: h.env,
	})
}

// Ready handles GET /health/ready endpoint.
// Returns 200 OK if the database is connected, 503 Service Unavailable otherwise.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		if log := middleware.GetLogger(c); log != nil {
			log.Error("Database health check failed", err, map[string]interface{}{
				"timeout": HealthCheckTimeout.String(),
			})
		}

		c.JSON(http.StatusServiceUnavailable, ReadyResponse{
			Status:   "not_ready",
			Database: "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, ReadyResponse{
		Status:   "ready",
		Database: "connected",
	})
}

// Info handles GET /api/info endpoint.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(h.now().Sub(h.startTime)),
	})
}

// Index handles GET /.
func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, IndexResponse{
		Message: APIName,
		Version: APIVersion,
		Endpoints: map[string]string{
			"health":  "/health",
			"auth":    "/api/auth",
			"parking": "/api/parking",
			"reports": "/api/reports",
		},
	})
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
