package testutil

import (
	"io"

	"github.com/edgeengage/oauth-server/internal/logger"
)

func MakeNoopLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, 0)
}
