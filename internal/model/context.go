package model

import (
	"context"

	"github.com/google/uuid"
)

// ContextManager carries the signed-in user's id from the session gate to the
// handlers behind it.
type ContextManager interface {
	SetUserIDToContext(ctx context.Context, userID uuid.UUID) context.Context
	// GetUserIDFromContext reports false when the request has no session.
	GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool)
}
