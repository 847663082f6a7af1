package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports the health of one infrastructure dependency.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checkers []HealthChecker
	version  string
	startAt  time.Time
}

// NewHealthHandler builds a HealthHandler over a set of dependency checks.
func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers, version: version, startAt: time.Now()}
}

type componentStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Liveness always reports alive; it only confirms the process is serving.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "alive",
		"version": h.version,
		"uptime":  time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness checks every registered dependency; any failure is a 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := make(map[string]componentStatus, len(h.checkers))
	healthy := true
	for _, checker := range h.checkers {
		start := time.Now()
		err := checker.Check(ctx)
		status := componentStatus{
			Status:  "ok",
			Latency: time.Since(start).Truncate(time.Millisecond).String(),
		}
		if err != nil {
			healthy = false
			status.Status = "unhealthy"
			status.Error = err.Error()
		}
		components[checker.Name()] = status
	}

	code := http.StatusOK
	overall := "ready"
	if !healthy {
		code = http.StatusServiceUnavailable
		overall = "not_ready"
	}
	c.JSON(code, gin.H{"status": overall, "components": components})
}
