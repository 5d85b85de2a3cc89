package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/edgeengage/oauth-server/internal/model"
)

func requireOAuthError(t *testing.T, err error, kind model.OAuthErrorKind) *model.OAuthError {
	t.Helper()
	var oauthErr *model.OAuthError
	require.ErrorAs(t, err, &oauthErr)
	require.Equal(t, kind, oauthErr.Kind)
	return oauthErr
}

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

// memoryStore is an AuthorizationStore with the same conditional-update
// semantics as the Postgres repository.
type memoryStore struct {
	mu             sync.Mutex
	authorizations map[uuid.UUID]model.AuthorizationCode
	tokens         []model.AccessToken
}

func newMemoryStore() *memoryStore {
	return &memoryStore{authorizations: map[uuid.UUID]model.AuthorizationCode{}}
}

func (m *memoryStore) Create(_ context.Context, a model.AuthorizationCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authorizations[a.ID] = a
	return nil
}

func (m *memoryStore) GetByCode(_ context.Context, codeHash, clientID, redirectURI string) (model.AuthorizationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.authorizations {
		if a.CodeHash == codeHash && a.ClientID == clientID && a.RedirectURI == redirectURI {
			return a, nil
		}
	}
	return model.AuthorizationCode{}, model.ErrNotFound
}

func (m *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.authorizations, id)
	return nil
}

func (m *memoryStore) Redeem(_ context.Context, id uuid.UUID, usedAt time.Time, token model.AccessToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.authorizations[id]
	if !ok || a.Used {
		return model.ErrCodeAlreadyUsed
	}
	a.Used = true
	a.UsedAt = &usedAt
	m.authorizations[id] = a
	m.tokens = append(m.tokens, token)
	return nil
}

func (m *memoryStore) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, a := range m.authorizations {
		if a.ExpiresAt.Before(before) {
			delete(m.authorizations, id)
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.authorizations)
}
