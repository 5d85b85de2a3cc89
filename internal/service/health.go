package service

import (
	"context"
	"fmt"
	"sort"
)

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// Health checks the server's backing stores.
type Health struct {
	deps map[string]Pinger
}

// NewHealth creates a checker over the named dependencies.
func NewHealth(deps map[string]Pinger) *Health {
	return &Health{deps: deps}
}

// Check pings every dependency in name order and returns the first failure.
func (h *Health) Check(ctx context.Context) error {
	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := h.deps[name].Ping(ctx); err != nil {
			return fmt.Errorf("%s is unavailable: %w", name, err)
		}
	}
	return nil
}
