package middleware

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/edgeengage/oauth-server/internal/logger"
)

func TestLogging_Unary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		handler    grpc.UnaryHandler
		wantErr    bool
		wantStatus string
	}{
		{
			name: "success path",
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				return "ok", nil
			},
			wantStatus: "OK",
		},
		{
			name: "grpc error propagates",
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				return nil, status.Error(codes.NotFound, "unknown service")
			},
			wantErr:    true,
			wantStatus: "NotFound",
		},
		{
			name: "plain error is logged as Internal",
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				return nil, errors.New("boom")
			},
			wantErr:    true,
			wantStatus: "Internal",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			lg := NewLogging(logger.NewWithWriter(&buf, -4))
			info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

			resp, err := lg.Unary(context.Background(), struct{}{}, info, tt.handler)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, resp)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "ok", resp)
			}
			assert.Contains(t, buf.String(), "method=/grpc.health.v1.Health/Check")
			assert.Contains(t, buf.String(), "status="+tt.wantStatus)
		})
	}
}

type fakeStream struct {
	grpc.ServerStream
}

func TestLogging_Stream(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	lg := NewLogging(logger.NewWithWriter(&buf, -4))
	info := &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch", IsServerStream: true}

	err := lg.Stream(nil, fakeStream{}, info, func(srv interface{}, stream grpc.ServerStream) error {
		return status.Error(codes.Canceled, "client went away")
	})

	assert.Equal(t, codes.Canceled, status.Code(err))
	assert.Contains(t, buf.String(), "status=Canceled")
}
