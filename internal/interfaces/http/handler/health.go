package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stockroute/backend/internal/interfaces/http/dto"
	"golang.org/x/sync/errgroup"
)

// HealthCheck checks one dependency
type HealthCheck func(ctx context.Context) error

// HealthHandler reports service liveness and dependency health
type HealthHandler struct {
	BaseHandler
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthHandler creates a health handler over named checks
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	Time   time.Time         `json:"time"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Time: time.Now().UTC()}
	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
	}

	// Checks run in parallel; a failing check never cancels the others.
	var mu sync.Mutex
	var g errgroup.Group
	for name, check := range h.checks {
		g.Go(func() error {
			result := "ok"
			if err := check(ctx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			resp.Checks[name] = result
			if result != "ok" {
				resp.Status = "degraded"
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}
