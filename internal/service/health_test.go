package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_Check(t *testing.T) {
	t.Parallel()

	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	require.NoError(t, NewHealth(map[string]Pinger{"postgres": ok, "redis": ok}).Check(context.Background()))
	require.NoError(t, NewHealth(nil).Check(context.Background()))

	err := NewHealth(map[string]Pinger{"postgres": ok, "redis": down}).Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis is unavailable")

	err = NewHealth(map[string]Pinger{"postgres": down, "redis": down}).Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}
