package health

import (
	"context"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/edgeengage/oauth-server/internal/logger"
)

// ServiceName is the health service entry tracked next to the overall "" entry.
const ServiceName = "edgeengage.oauth.v1.AuthorizationServer"

// Checker reports whether the server's dependencies are reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// Updater keeps the gRPC health status in line with the dependency checks.
type Updater struct {
	server   *health.Server
	checker  Checker
	interval time.Duration
	timeout  time.Duration
	logger   *logger.Logger
}

// DefaultInterval is used when the configured refresh period is not positive.
const DefaultInterval = 15 * time.Second

// NewUpdater creates an Updater publishing to server every interval.
func NewUpdater(server *health.Server, checker Checker, interval time.Duration, logger *logger.Logger) *Updater {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Updater{
		server:   server,
		checker:  checker,
		interval: interval,
		timeout:  2 * time.Second,
		logger:   logger,
	}
}

// Run refreshes the status until ctx is done, then marks the server as shutting down.
func (u *Updater) Run(ctx context.Context) {
	u.Refresh(ctx)

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			u.server.Shutdown()
			return
		case <-ticker.C:
			u.Refresh(ctx)
		}
	}
}

// Refresh runs the checks once and publishes the result.
func (u *Updater) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	checkCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := u.checker.Check(checkCtx); err != nil {
		u.logger.Warn("Health updater: dependency check failed",
			"error", err.Error())
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	u.server.SetServingStatus("", status)
	u.server.SetServingStatus(ServiceName, status)
	return status
}
