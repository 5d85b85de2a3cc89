package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultAuthorizationCodeTTL is the lifetime of an issued authorization code.
const DefaultAuthorizationCodeTTL = 10 * time.Minute

// AuthorizationStore persists authorization codes issued on consent approval.
type AuthorizationStore interface {
	Create(ctx context.Context, authorization AuthorizationCode) error
	// GetByCode returns the row whose code hash, client id and redirect URI all match.
	GetByCode(ctx context.Context, codeHash, clientID, redirectURI string) (AuthorizationCode, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Redeem marks the code used only if it is still unused and persists the issued
	// token in the same transaction. Returns ErrCodeAlreadyUsed when the code was consumed
	// by someone else first.
	Redeem(ctx context.Context, id uuid.UUID, usedAt time.Time, token AccessToken) error
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// AuthorizationCode is a single-use grant bound to a client and redirect URI.
type AuthorizationCode struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ClientID    string
	Scope       string
	CodeHash    string
	RedirectURI string
	ExpiresAt   time.Time
	Used        bool
	UsedAt      *time.Time
	CreatedAt   time.Time
}

// Expired reports whether the code can no longer be redeemed at now.
func (a AuthorizationCode) Expired(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}
