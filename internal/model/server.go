package model

import (
	"context"
	"net"
)

// SecurityLayer opens the listener a Server accepts connections on, either plain or TLS.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is a network front end of the authorization server (HTTP API or gRPC health).
type Server interface {
	// Start blocks until the server stops.
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}
