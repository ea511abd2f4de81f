package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"civic-portal/app/driver/postgres"
)

var startTime = time.Now()

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	db     *postgres.DB
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *postgres.DB, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Uptime    string    `json:"uptime"`
}

type ReadinessResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
}

// HealthCheck reports liveness only
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   "civic-portal",
		Uptime:    time.Since(startTime).String(),
	})
}

// ReadinessCheck reports whether the service can reach its dependencies
func (h *HealthHandler) ReadinessCheck(c echo.Context) error {
	checks := make(map[string]string)
	ready := true

	if err := h.db.HealthCheck(c.Request().Context()); err != nil {
		h.logger.Error("database readiness check failed", "error", err)
		checks["database"] = "unavailable"
		ready = false
	} else {
		checks["database"] = "connected"
	}

	status := "ready"
	statusCode := http.StatusOK
	if !ready {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, ReadinessResponse{
		Status:    status,
		Timestamp: time.Now(),
		Service:   "civic-portal",
		Checks:    checks,
	})
}
