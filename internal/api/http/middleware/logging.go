package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/credential-server/internal/logger"
)

// Logging logs HTTP requests and results.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle logs method, route, duration and status for each request.
func (l *Logging) Handle(c *gin.Context) {
	start := time.Now()

	l.logger.Debug("HTTP request started",
		"method", c.Request.Method,
		"path", c.Request.URL.Path)

	c.Next()

	status := c.Writer.Status()
	attrs := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"route", c.FullPath(),
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
		"client_ip", c.ClientIP(),
	}

	switch {
	case status >= 500:
		l.logger.Error("HTTP request failed", attrs...)
	case status >= 400:
		l.logger.Warn("HTTP request rejected", attrs...)
	default:
		l.logger.Info("HTTP request completed", attrs...)
	}
}
