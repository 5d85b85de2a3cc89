package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStore maps opaque browser session ids to signed-in users.
type SessionStore interface {
	Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error)
	GetUserID(ctx context.Context, sessionID string) (uuid.UUID, error)
	Delete(ctx context.Context, sessionID string) error
}
