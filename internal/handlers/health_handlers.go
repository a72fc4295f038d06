package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"labstock/internal/caching"
)

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	cache      caching.CacheService
	currentDir string
	historyDir string
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(cache caching.CacheService, currentDir, historyDir string) *HealthHandlers {
	return &HealthHandlers{
		cache:      cache,
		currentDir: currentDir,
		historyDir: historyDir,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
}

// HealthCheck reports the state of the snapshot stores and the cache. The
// cache is an optimization, so a failed redis only degrades, never fails.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Version:   "1.0.0",
	}

	if err := checkStoreDir(h.currentDir); err != nil {
		health.Services["current_store"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["current_store"] = "healthy"
	}

	if err := checkStoreDir(h.historyDir); err != nil {
		health.Services["history_store"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["history_store"] = "healthy"
	}

	if err := h.cache.Ping(ctx); err != nil {
		health.Services["redis"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["redis"] = "healthy"
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}
	return c.JSON(statusCode, health)
}

// ReadinessCheck determines if the application is ready to serve traffic
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	if err := checkStoreDir(h.currentDir); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Snapshot store unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

func checkStoreDir(dir string) error {
	_, err := os.Stat(dir)
	return err
}
