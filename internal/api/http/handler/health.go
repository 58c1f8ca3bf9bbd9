package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/credential-server/internal/logger"
)

const pingTimeout = 2 * time.Second

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Health handles liveness and readiness probes.
type Health struct {
	store  HealthChecker
	logger *logger.Logger
	clock  func() time.Time
}

// NewHealth creates a new Health handler.
func NewHealth(store HealthChecker, logger *logger.Logger) *Health {
	return &Health{store: store, logger: logger, clock: time.Now}
}

// Live always answers while the process serves requests.
func (h *Health) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Auth service is running",
		"timestamp": h.clock().UTC(),
	})
}

// Ready reports whether the credential store is reachable.
func (h *Health) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Error("Health handler: store ping failed",
			"error", err.Error())
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"checks": gin.H{"store": "unavailable"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": gin.H{"store": "ok"},
	})
}
