// Package grpc exposes the sync service over gRPC.
//
// The service surface is the standard gRPC health protocol, reporting the
// overall server and the "listsync.v1.SyncManager" service.
package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/internal/service"
)

// SyncManagerService is the health service name of the sync manager.
const SyncManagerService = "listsync.v1.SyncManager"

// Handler is the root gRPC transport handler.
//
// It owns the health server whose statuses follow the outcome of the last
// [Handler.Refresh].
type Handler struct {
	services *service.Services
	health   *health.Server

	logger *logger.Logger
}

func NewHandler(services *service.Services, logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")
	return &Handler{
		services: services,
		health:   health.NewServer(),
		logger:   logger,
	}
}

// Register installs the health and reflection services on srv.
func (h *Handler) Register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, h.health)
	reflection.Register(srv)
}

// Refresh checks the sync manager and publishes the result. A manager whose
// storage cannot be read is NOT_SERVING.
func (h *Handler) Refresh(ctx context.Context) error {
	status := healthpb.HealthCheckResponse_SERVING
	_, err := h.services.SyncManager.Health(ctx)
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		h.logger.Warn().Err(err).Msg("sync manager is not healthy")
	}

	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(SyncManagerService, status)
	return err
}

// Shutdown reports NOT_SERVING for every service and ignores later
// refreshes.
func (h *Handler) Shutdown() {
	h.health.Shutdown()
}
