package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/edgeengage/oauth-server/internal/model"
)

// TokenStore is a mock of model.TokenStore.
type TokenStore struct {
	mock.Mock
}

// NewTokenStore creates a mock that asserts its expectations on test cleanup.
func NewTokenStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *TokenStore {
	m := &TokenStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TokenStore) GetByAccessToken(ctx context.Context, accessTokenHash string) (model.AccessToken, error) {
	args := m.Called(ctx, accessTokenHash)
	return args.Get(0).(model.AccessToken), args.Error(1)
}

func (m *TokenStore) Revoke(ctx context.Context, tokenHash string, revokedAt time.Time) (bool, error) {
	args := m.Called(ctx, tokenHash, revokedAt)
	return args.Bool(0), args.Error(1)
}

func (m *TokenStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
