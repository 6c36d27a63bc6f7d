package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/MKhiriev/go-list-sync/internal/config"
	"github.com/MKhiriev/go-list-sync/internal/handler"
	"github.com/MKhiriev/go-list-sync/internal/logger"
)

// defaultShutdownTimeout bounds the graceful stop when no request timeout is
// configured.
const defaultShutdownTimeout = 10 * time.Second

type server struct {
	transports      []transport
	shutdownTimeout time.Duration

	logger *logger.Logger
}

func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")
	s := &server{
		shutdownTimeout: defaultShutdownTimeout,
		logger:          logger,
	}
	if cfg.RequestTimeout > 0 {
		s.shutdownTimeout = cfg.RequestTimeout
	}

	if cfg.HTTPAddress != "" && handlers.HTTP != nil {
		s.transports = append(s.transports, newHTTPServer(handlers.HTTP.Init(), cfg, logger))
	}
	if cfg.GRPCAddress != "" && handlers.GRPC != nil {
		s.transports = append(s.transports, newGRPCServer(handlers.GRPC, cfg, logger))
	}

	if len(s.transports) == 0 {
		return nil, errNoServersAreCreated
	}

	return s, nil
}

func (s *server) RunServer(ctx context.Context) error {
	listeners := make([]net.Listener, 0, len(s.transports))
	for _, t := range s.transports {
		l, err := net.Listen("tcp", t.address())
		if err != nil {
			for _, bound := range listeners {
				_ = bound.Close()
			}
			return fmt.Errorf("%s listen on %s: %w", t.name(), t.address(), err)
		}
		listeners = append(listeners, l)
	}

	errCh := make(chan error, len(s.transports))
	for i, t := range s.transports {
		s.logger.Info().Msgf("Launching %s server", t.name())
		go func() {
			errCh <- t.serve(listeners[i])
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		s.logger.Err(runErr).Msg("transport stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}

	s.logger.Info().Msg("server Shutdown gracefully")
	return runErr
}

func (s *server) Shutdown(ctx context.Context) error {
	var errs []error
	for _, t := range s.transports {
		if err := t.shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
