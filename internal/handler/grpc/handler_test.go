package grpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/internal/mock"
	"github.com/MKhiriev/go-list-sync/internal/service"
	"github.com/MKhiriev/go-list-sync/models"
)

func newTestHandler(t *testing.T) (*Handler, *mock.MockSyncManager) {
	t.Helper()
	manager := mock.NewMockSyncManager(gomock.NewController(t))
	return NewHandler(&service.Services{SyncManager: manager}, logger.Nop()), manager
}

func servingStatus(t *testing.T, h *Handler, svc string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := h.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: svc})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestRefresh(t *testing.T) {
	h, manager := newTestHandler(t)

	manager.EXPECT().Health(gomock.Any()).Return(models.HealthReport{TotalGroups: 2}, nil)
	require.NoError(t, h.Refresh(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, h, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, h, SyncManagerService))

	manager.EXPECT().Health(gomock.Any()).Return(models.HealthReport{}, service.ErrPersistence)
	require.ErrorIs(t, h.Refresh(context.Background()), service.ErrPersistence)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, h, SyncManagerService))
}

func TestShutdown(t *testing.T) {
	h, manager := newTestHandler(t)
	manager.EXPECT().Health(gomock.Any()).Return(models.HealthReport{}, nil).Times(2)

	require.NoError(t, h.Refresh(context.Background()))
	h.Shutdown()
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, h, SyncManagerService))

	// refreshes after shutdown do not flip the status back
	require.NoError(t, h.Refresh(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, h, SyncManagerService))
}

func TestCheck_UnknownService(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := h.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "unknown.Service"})
	assert.Error(t, err)
}

func TestUnaryLogging(t *testing.T) {
	h, _ := newTestHandler(t)

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	resp, err := h.UnaryLogging(context.Background(), "req", info, func(ctx context.Context, req any) (any, error) {
		assert.Equal(t, "req", req)
		return "resp", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "resp", resp)
}
