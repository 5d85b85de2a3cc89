package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/edgeengage/oauth-server/internal/model"
)

var _ model.AuthorizationStore = (*AuthorizationRepository)(nil)

// AuthorizationRepository stores authorization codes in oauth_authorizations.
type AuthorizationRepository struct {
	db *Connection
}

func NewAuthorizationRepository(db *Connection) *AuthorizationRepository {
	return &AuthorizationRepository{db: db}
}

func (r *AuthorizationRepository) Create(ctx context.Context, a model.AuthorizationCode) error {
	const query = `
        INSERT INTO oauth_authorizations (
            id, user_id, client_id, scope, code_hash, redirect_uri, expires_at, used, used_at, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,FALSE,NULL,NOW())
    `

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, query,
		a.ID, a.UserID, a.ClientID, a.Scope, a.CodeHash, a.RedirectURI, a.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create authorization: %w", err)
	}
	return nil
}

func (r *AuthorizationRepository) GetByCode(ctx context.Context, codeHash, clientID, redirectURI string) (model.AuthorizationCode, error) {
	const query = `
        SELECT id, user_id, client_id, scope, code_hash, redirect_uri, expires_at, used, used_at, created_at
        FROM oauth_authorizations
        WHERE code_hash = $1 AND client_id = $2 AND redirect_uri = $3
    `
	var a model.AuthorizationCode
	err := r.db.QueryRow(ctx, query, codeHash, clientID, redirectURI).Scan(
		&a.ID, &a.UserID, &a.ClientID, &a.Scope, &a.CodeHash, &a.RedirectURI,
		&a.ExpiresAt, &a.Used, &a.UsedAt, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.AuthorizationCode{}, model.ErrNotFound
		}
		return model.AuthorizationCode{}, fmt.Errorf("failed to get authorization by code: %w", err)
	}
	return a, nil
}

func (r *AuthorizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM oauth_authorizations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete authorization: %w", err)
	}
	return nil
}

func (r *AuthorizationRepository) Redeem(ctx context.Context, id uuid.UUID, usedAt time.Time, token model.AccessToken) error {
	const markUsed = `
        UPDATE oauth_authorizations SET used = TRUE, used_at = $2
        WHERE id = $1 AND used = FALSE
    `
	const insertToken = `
        INSERT INTO oauth_tokens (
            id, user_id, client_id, access_token_hash, refresh_token_hash, scope, expires_at, revoked_at, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,NULL,NOW())
    `

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin redeem transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, markUsed, id, usedAt)
	if err != nil {
		return fmt.Errorf("failed to mark authorization used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCodeAlreadyUsed
	}

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	_, err = tx.Exec(ctx, insertToken,
		token.ID, token.UserID, token.ClientID, token.AccessTokenHash, token.RefreshTokenHash,
		token.Scope, token.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit redeem transaction: %w", err)
	}
	return nil
}

func (r *AuthorizationRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM oauth_authorizations WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge authorizations: %w", err)
	}
	return tag.RowsAffected(), nil
}
