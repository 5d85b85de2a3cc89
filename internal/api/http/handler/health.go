package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/edgeengage/oauth-server/internal/logger"
)

const healthTimeout = 2 * time.Second

// HealthChecker reports whether the server's dependencies are reachable.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// Health serves GET /healthz.
type Health struct {
	checker HealthChecker
	logger  *logger.Logger
}

// NewHealth creates a new Health handler.
func NewHealth(checker HealthChecker, logger *logger.Logger) *Health {
	return &Health{checker: checker, logger: logger}
}

func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := h.checker.Check(ctx); err != nil {
		h.logger.Warn("Health handler: dependency check failed",
			"error", err.Error())
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable"))
		return
	}
	_, _ = w.Write([]byte("ok"))
}
