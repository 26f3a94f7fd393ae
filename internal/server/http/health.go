package http

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the backing store answers; *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

func (h *Handlers) Healthz(c *gin.Context) {
	if h.Health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Health.PingContext(ctx); err != nil {
			h.Logger.Warn(ctx, "health check failed", "error", err)
			c.JSON(nethttp.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(nethttp.StatusOK, gin.H{"status": "ok"})
}
