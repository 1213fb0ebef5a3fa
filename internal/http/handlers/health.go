package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readyTimeout = time.Second

// Pinger is anything readiness depends on: the subscriber store, the cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	deps           map[string]Pinger
	isShuttingDown func() bool
}

// NewHealthHandler takes the named dependencies checked by Readyz. Nil
// entries are skipped. isShuttingDown may be nil.
func NewHealthHandler(deps map[string]Pinger, isShuttingDown func() bool) *HealthHandler {
	return &HealthHandler{deps: deps, isShuttingDown: isShuttingDown}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.isShuttingDown != nil && h.isShuttingDown() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
		return
	}

	c, cancel := context.WithTimeout(ctx.Request.Context(), readyTimeout)
	defer cancel()

	checks := make(gin.H, len(h.deps))
	ready := true

	for name, dep := range h.deps {
		if dep == nil {
			continue
		}

		if err := dep.Ping(c); err != nil {
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	if !ready {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": checks})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
