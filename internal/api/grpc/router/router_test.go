package router

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/credential-server/internal/api/grpc/handler"
	"github.com/dtroode/credential-server/internal/mocks"
	"github.com/dtroode/credential-server/internal/testutil"
)

func TestRouter_Register(t *testing.T) {
	t.Parallel()

	lg := testutil.MakeNoopLogger()
	health := handler.NewHealth(mocks.NewCredentialStore(t), time.Minute, lg)

	s := New(health, lg).Register()
	require.NotNil(t, s)

	services := s.GetServiceInfo()
	assert.Contains(t, services, "grpc.health.v1.Health")
	assert.Contains(t, services, "grpc.reflection.v1.ServerReflection")
}
