package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/edgeengage/oauth-server/internal/model"
	"github.com/edgeengage/oauth-server/internal/token"
)

var _ model.SessionStore = (*SessionRepository)(nil)

const sessionKeyPrefix = "session:"

// SessionRepository keeps browser sessions in Redis with a TTL per key.
type SessionRepository struct {
	rdb redis.UniversalClient
}

// NewClient opens a Redis client and checks connectivity.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return rdb, nil
}

func NewSessionRepository(rdb redis.UniversalClient) *SessionRepository {
	return &SessionRepository{rdb: rdb}
}

func (r *SessionRepository) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	sessionID, err := token.NewOpaque()
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}

	if err := r.rdb.Set(ctx, sessionKeyPrefix+sessionID, userID.String(), ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	return sessionID, nil
}

func (r *SessionRepository) GetUserID(ctx context.Context, sessionID string) (uuid.UUID, error) {
	raw, err := r.rdb.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, model.ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to get session: %w", err)
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse session user id: %w", err)
	}

	return userID, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.rdb.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
