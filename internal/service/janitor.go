package service

import (
	"context"
	"time"

	"github.com/edgeengage/oauth-server/internal/logger"
	"github.com/edgeengage/oauth-server/internal/model"
)

// Janitor periodically deletes codes and tokens long past their expiry.
type Janitor struct {
	authorizations model.AuthorizationStore
	tokens         model.TokenStore
	interval       time.Duration
	retention      time.Duration
	logger         *logger.Logger
	now            func() time.Time
}

func NewJanitor(
	authorizations model.AuthorizationStore,
	tokens model.TokenStore,
	interval, retention time.Duration,
	logger *logger.Logger,
) *Janitor {
	return &Janitor{
		authorizations: authorizations,
		tokens:         tokens,
		interval:       interval,
		retention:      retention,
		logger:         logger,
		now:            time.Now,
	}
}

// Run purges on every tick until ctx is done. It returns immediately when the
// interval is not positive.
func (j *Janitor) Run(ctx context.Context) {
	if j.interval <= 0 {
		j.logger.Info("Janitor: disabled")
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Purge(ctx)
		}
	}
}

// Purge runs one cleanup pass.
func (j *Janitor) Purge(ctx context.Context) {
	before := j.now().Add(-j.retention)

	codes, err := j.authorizations.PurgeExpired(ctx, before)
	if err != nil {
		j.logger.Error("Janitor: failed to purge authorization codes", "error", err.Error())
	}

	tokens, err := j.tokens.PurgeExpired(ctx, before)
	if err != nil {
		j.logger.Error("Janitor: failed to purge tokens", "error", err.Error())
	}

	j.logger.Debug("Janitor: purge completed",
		"authorization_codes", codes,
		"tokens", tokens,
		"before", before.Format(time.RFC3339))
}
