package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edgeengage/oauth-server/internal/model"
)

var _ model.TokenStore = (*TokenRepository)(nil)

// TokenRepository reads and revokes rows of oauth_tokens. Rows are inserted by
// AuthorizationRepository.Redeem.
type TokenRepository struct {
	db *Connection
}

func NewTokenRepository(db *Connection) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) GetByAccessToken(ctx context.Context, accessTokenHash string) (model.AccessToken, error) {
	const query = `
        SELECT id, user_id, client_id, access_token_hash, refresh_token_hash, scope, expires_at, revoked_at, created_at
        FROM oauth_tokens WHERE access_token_hash = $1
    `
	var t model.AccessToken
	err := r.db.QueryRow(ctx, query, accessTokenHash).Scan(
		&t.ID, &t.UserID, &t.ClientID, &t.AccessTokenHash, &t.RefreshTokenHash,
		&t.Scope, &t.ExpiresAt, &t.RevokedAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.AccessToken{}, model.ErrNotFound
		}
		return model.AccessToken{}, fmt.Errorf("failed to get token by access token: %w", err)
	}
	return t, nil
}

func (r *TokenRepository) Revoke(ctx context.Context, tokenHash string, revokedAt time.Time) (bool, error) {
	const query = `
        UPDATE oauth_tokens SET revoked_at = $2
        WHERE (access_token_hash = $1 OR refresh_token_hash = $1) AND revoked_at IS NULL
    `
	tag, err := r.db.Exec(ctx, query, tokenHash, revokedAt)
	if err != nil {
		return false, fmt.Errorf("failed to revoke token: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TokenRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM oauth_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
