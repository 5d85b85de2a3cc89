package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/edgeengage/oauth-server/internal/testutil"
)

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) Check(ctx context.Context) error { return f(ctx) }

func servingStatus(t *testing.T, srv *health.Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := srv.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestUpdater_Refresh(t *testing.T) {
	t.Parallel()

	var down atomic.Bool
	srv := health.NewServer()
	u := NewUpdater(srv, checkerFunc(func(context.Context) error {
		if down.Load() {
			return errors.New("postgres is unavailable")
		}
		return nil
	}), time.Second, testutil.MakeNoopLogger())

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, u.Refresh(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, srv, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, srv, ServiceName))

	down.Store(true)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, u.Refresh(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, srv, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, srv, ServiceName))
}

func TestUpdater_Run(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := health.NewServer()
	u := NewUpdater(srv, checkerFunc(func(context.Context) error {
		calls.Add(1)
		return nil
	}), 5*time.Millisecond, testutil.MakeNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		u.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, srv, ""))
}

func TestNewUpdater_DefaultsInterval(t *testing.T) {
	t.Parallel()

	u := NewUpdater(health.NewServer(), checkerFunc(func(context.Context) error { return nil }), 0, testutil.MakeNoopLogger())
	assert.Equal(t, DefaultInterval, u.interval)
}
