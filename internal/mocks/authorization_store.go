package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/edgeengage/oauth-server/internal/model"
)

// AuthorizationStore is a mock of model.AuthorizationStore.
type AuthorizationStore struct {
	mock.Mock
}

// NewAuthorizationStore creates a mock that asserts its expectations on test cleanup.
func NewAuthorizationStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *AuthorizationStore {
	m := &AuthorizationStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *AuthorizationStore) Create(ctx context.Context, authorization model.AuthorizationCode) error {
	args := m.Called(ctx, authorization)
	return args.Error(0)
}

func (m *AuthorizationStore) GetByCode(ctx context.Context, codeHash, clientID, redirectURI string) (model.AuthorizationCode, error) {
	args := m.Called(ctx, codeHash, clientID, redirectURI)
	return args.Get(0).(model.AuthorizationCode), args.Error(1)
}

func (m *AuthorizationStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *AuthorizationStore) Redeem(ctx context.Context, id uuid.UUID, usedAt time.Time, token model.AccessToken) error {
	args := m.Called(ctx, id, usedAt, token)
	return args.Error(0)
}

func (m *AuthorizationStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
