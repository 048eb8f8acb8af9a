package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// readinessTimeout bounds the dependency probe behind /readyz.
const readinessTimeout = 2 * time.Second

// HealthHandler serves the liveness and readiness probes.
//
// Readiness depends on the configured price source: the postgres source is
// ready when its database answers a ping, the yahoo and csv sources have
// nothing to probe and are always ready.
type HealthHandler struct {
	source string
	ping   func(ctx context.Context) error
}

// NewHealthHandler builds the probes for the named price source. ping may be nil.
func NewHealthHandler(source string, ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{source: source, ping: ping}
}

// Register mounts GET /healthz and GET /readyz on r.
func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
}

// Liveness godoc
// @Summary      Liveness probe
// @Description  Always returns OK if the service is running
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness godoc
// @Summary      Readiness probe
// @Description  Returns ready if the price source is reachable
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "source": h.source, "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "source": h.source})
}
