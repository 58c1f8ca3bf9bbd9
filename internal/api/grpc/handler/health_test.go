package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/credential-server/internal/mocks"
	"github.com/dtroode/credential-server/internal/testutil"
)

func servingStatus(t *testing.T, h *Health, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := h.Server().Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealth_Check(t *testing.T) {
	store := mocks.NewCredentialStore(t)
	h := NewHealth(store, time.Minute, testutil.MakeNoopLogger())

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, h, ""))

	store.On("Ping", mock.Anything).Return(nil).Once()
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, h.Check(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, h, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, h, ServiceName))

	store.On("Ping", mock.Anything).Return(errors.New("connection refused")).Once()
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, h.Check(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, h, ServiceName))
}

func TestHealth_RunStopsOnCancel(t *testing.T) {
	store := mocks.NewCredentialStore(t)
	store.On("Ping", mock.Anything).Return(nil)
	h := NewHealth(store, 5*time.Millisecond, testutil.MakeNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		resp, err := h.Server().Check(context.Background(), &healthpb.HealthCheckRequest{})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, h, ""))
}
