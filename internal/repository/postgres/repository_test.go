package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRepositories(t *testing.T) {
	db := &Connection{}

	users := NewUserRepository(db)
	assert.NotNil(t, users)
	assert.Equal(t, db, users.db)

	authorizations := NewAuthorizationRepository(db)
	assert.NotNil(t, authorizations)
	assert.Equal(t, db, authorizations.db)

	tokens := NewTokenRepository(db)
	assert.NotNil(t, tokens)
	assert.Equal(t, db, tokens.db)
}

func TestConnection_NilPool(t *testing.T) {
	conn := &Connection{}

	require.Error(t, conn.Ping(context.Background()))
	require.NoError(t, conn.Close())
}

func TestNewConnection_InvalidDSN(t *testing.T) {
	_, err := NewConnection(context.Background(), "://not a dsn")
	require.Error(t, err)
}
