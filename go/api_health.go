package giftingserver

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	serviceDisplayName = "Chinggizz Gifting Platform"
	timestampLayout    = "2006-01-02 15:04:05"
)

// HealthCheck probes one dependency. A nil error means the dependency is up.
type HealthCheck func(ctx context.Context) error

// HealthAPI serves liveness and dependency health.
type HealthAPI struct {
	version string
	started time.Time
	checks  map[string]HealthCheck
	now     func() time.Time
}

func NewHealthAPI(version string, checks map[string]HealthCheck) HealthAPI {
	return HealthAPI{version: version, started: time.Now(), checks: checks, now: time.Now}
}

// Get /api
func (api *HealthAPI) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"application": "Chinggizz - Customised Gifts & Surprise Platform",
		"version":     api.version,
		"status":      "running",
		"publicEndpoints": gin.H{
			"categories":  "/api/categories",
			"products":    "/api/products",
			"hamperBoxes": "/api/hamper-boxes",
			"createOrder": "/api/orders/create",
			"adminLogin":  "/api/admin/login",
		},
	})
}

// Get /api/health
func (api *HealthAPI) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "UP",
		"service":   serviceDisplayName,
		"timestamp": api.now().Format(timestampLayout),
		"message":   "Service is running smoothly! 🎁",
	})
}

// Get /api/health/ping
func (api *HealthAPI) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

// Get /api/health/detailed
// Runs every registered dependency check; any failure reports DOWN with 503
func (api *HealthAPI) Detailed(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := "UP"
	components := make(gin.H, len(api.checks))
	for name, check := range api.checks {
		if err := check(ctx); err != nil {
			status = "DOWN"
			components[name] = gin.H{"status": "DOWN", "error": err.Error()}
			continue
		}
		components[name] = gin.H{"status": "UP"}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	code := http.StatusOK
	if status != "UP" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":     status,
		"service":    serviceDisplayName,
		"version":    api.version,
		"timestamp":  api.now().Format(timestampLayout),
		"uptime":     api.now().Sub(api.started).Truncate(time.Second).String(),
		"components": components,
		"memory": gin.H{
			"total": formatMegabytes(mem.Sys),
			"used":  formatMegabytes(mem.HeapAlloc),
			"free":  formatMegabytes(mem.HeapIdle - mem.HeapReleased),
		},
		"goroutines": runtime.NumGoroutine(),
	})
}

func formatMegabytes(b uint64) string {
	return fmt.Sprintf("%d MB", b/(1024*1024))
}
