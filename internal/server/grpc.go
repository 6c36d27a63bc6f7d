package server

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"

	"github.com/MKhiriev/go-list-sync/internal/config"
	myGRPC "github.com/MKhiriev/go-list-sync/internal/handler/grpc"
	"github.com/MKhiriev/go-list-sync/internal/logger"
)

type grpcServer struct {
	handler *myGRPC.Handler
	addr    string

	server *grpc.Server

	logger *logger.Logger
}

func newGRPCServer(handler *myGRPC.Handler, cfg config.Server, logger *logger.Logger) *grpcServer {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(handler.UnaryLogging))
	handler.Register(srv)

	return &grpcServer{
		handler: handler,
		addr:    cfg.GRPCAddress,
		server:  srv,
		logger:  logger,
	}
}

func (g *grpcServer) name() string { return "gRPC" }

func (g *grpcServer) address() string { return g.addr }

func (g *grpcServer) serve(l net.Listener) error {
	g.logger.Info().Str("address", l.Addr().String()).Msg("gRPC server listening")
	if err := g.server.Serve(l); err != nil {
		return fmt.Errorf("gRPC server Serve: %w", err)
	}
	return nil
}

// shutdown drains in-flight RPCs and stops the server hard once ctx is
// done.
func (g *grpcServer) shutdown(ctx context.Context) error {
	g.logger.Info().Msg("gRPC server Shutdown")
	g.handler.Shutdown()

	stopped := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		g.server.Stop()
		return fmt.Errorf("gRPC server GracefulStop: %w", ctx.Err())
	}
}
