package server

import (
	"context"
	"net"
)

// Server is the lifecycle contract of the transport servers.
type Server interface {
	// RunServer serves until ctx is done or a transport fails, then shuts
	// every transport down. It returns the transport failure, if any.
	RunServer(ctx context.Context) error

	// Shutdown stops the transports, waiting at most until ctx is done for
	// in-flight requests.
	Shutdown(ctx context.Context) error
}

// transport is one listener managed by a Server.
type transport interface {
	name() string
	address() string
	serve(l net.Listener) error
	shutdown(ctx context.Context) error
}
