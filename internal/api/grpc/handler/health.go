package handler

import (
	"context"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/credential-server/internal/logger"
)

// ServiceName is the health service name reported next to the overall
// server status.
const ServiceName = "credential.Auth"

const pingTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health publishes grpc.health.v1 status derived from credential store
// reachability.
type Health struct {
	server   *health.Server
	store    Pinger
	interval time.Duration
	logger   *logger.Logger
}

// NewHealth creates a Health reporter that starts out NOT_SERVING.
func NewHealth(store Pinger, interval time.Duration, logger *logger.Logger) *Health {
	server := health.NewServer()
	server.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	server.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Health{
		server:   server,
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

// Server returns the health service implementation to register.
func (h *Health) Server() healthpb.HealthServer {
	return h.server
}

// Check pings the store once and publishes the result.
func (h *Health) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Health handler: store ping failed",
			"error", err.Error())
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
	return status
}

// Run re-checks the store every interval until ctx ends, then marks every
// service NOT_SERVING.
func (h *Health) Run(ctx context.Context) {
	h.Check(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}
