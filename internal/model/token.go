package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultAccessTokenTTL is the lifetime of an issued access token.
	DefaultAccessTokenTTL = time.Hour
	// TokenTypeBearer is the only token type issued.
	TokenTypeBearer = "Bearer"
)

// TokenStore reads and revokes issued access/refresh token pairs.
type TokenStore interface {
	GetByAccessToken(ctx context.Context, accessTokenHash string) (AccessToken, error)
	// Revoke marks the row whose access or refresh token hash matches. It reports
	// whether any row was touched.
	Revoke(ctx context.Context, tokenHash string, revokedAt time.Time) (bool, error)
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// AccessToken is a stored access/refresh token pair.
type AccessToken struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	ClientID         string
	AccessTokenHash  string
	RefreshTokenHash string
	Scope            string
	ExpiresAt        time.Time
	RevokedAt        *time.Time
	CreatedAt        time.Time
}

// Expired reports whether the access token is no longer valid at now.
func (t AccessToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// TokenResponse is the successful token endpoint payload.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// TokenRequest carries authorization_code grant parameters.
type TokenRequest struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code" validate:"required"`
	ClientID     string `json:"client_id" validate:"required"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri" validate:"required"`
}
