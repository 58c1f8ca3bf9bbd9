package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/credential-server/internal/testutil"
)

func TestLogging_HandleGRPC(t *testing.T) {
	t.Parallel()

	lg := NewLogging(testutil.MakeNoopLogger())

	tests := []struct {
		name     string
		handler  grpc.UnaryHandler
		wantCode codes.Code
	}{
		{
			name: "success path",
			handler: func(ctx context.Context, req any) (any, error) {
				return "ok", nil
			},
			wantCode: codes.OK,
		},
		{
			name: "grpc error propagates",
			handler: func(ctx context.Context, req any) (any, error) {
				return nil, status.Error(codes.Unavailable, "store down")
			},
			wantCode: codes.Unavailable,
		},
		{
			name: "plain error is left untouched",
			handler: func(ctx context.Context, req any) (any, error) {
				return nil, errors.New("boom")
			},
			wantCode: codes.Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
			resp, err := lg.HandleGRPC(context.Background(), struct{}{}, info, tt.handler)

			if tt.wantCode == codes.OK {
				require.NoError(t, err)
				assert.Equal(t, "ok", resp)
				return
			}
			assert.Equal(t, tt.wantCode, status.Code(err))
		})
	}
}

func TestLogging_HandleStream(t *testing.T) {
	lg := NewLogging(testutil.MakeNoopLogger())
	info := &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch"}

	err := lg.HandleStream(nil, nil, info, func(srv any, stream grpc.ServerStream) error {
		return status.Error(codes.Canceled, "client went away")
	})
	assert.Equal(t, codes.Canceled, status.Code(err))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, codes.OK, codeOf(nil))
	assert.Equal(t, codes.NotFound, codeOf(status.Error(codes.NotFound, "missing")))
	assert.Equal(t, codes.Internal, codeOf(errors.New("boom")))
}

func TestRecoveryOption(t *testing.T) {
	interceptor := recovery.UnaryServerInterceptor(RecoveryOption(testutil.MakeNoopLogger()))
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		panic("nil map write")
	})
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
}
