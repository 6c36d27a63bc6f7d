package service

import (
	"context"
	"errors"
	"testing"

	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/internal/mock"
	"github.com/MKhiriev/go-list-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func schedulerGroup(id int64, state models.GroupState, members int) models.SyncGroup {
	g := models.SyncGroup{ID: id, Mode: models.ModeCollaborative, State: state}
	for i := range members {
		g.Members = append(g.Members, models.Member{ID: id*10 + int64(i)})
	}
	return g
}

func TestScheduler_Tick_StartsIdleReadyGroups(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mock.NewMockCycleRunner(ctrl)
	scheduler := NewScheduler(runner, logger.Nop())
	ctx := context.Background()

	orphan := schedulerGroup(4, models.StateIdle, 2)
	orphan.Mode = models.ModeMasterSlave
	orphan.NeedsMaster = true

	runner.EXPECT().ListGroups(ctx).Return([]models.SyncGroup{
		schedulerGroup(1, models.StateIdle, 2),
		schedulerGroup(2, models.StateSyncing, 2),
		schedulerGroup(3, models.StateIdle, 0),
		orphan,
		schedulerGroup(5, models.StateIdle, 1),
	}, nil)
	runner.EXPECT().RunCycle(ctx, int64(1)).Return(&models.SyncOperationResult{GroupID: 1}, nil)
	runner.EXPECT().RunCycle(ctx, int64(5)).Return(nil, errors.New("adapter down"))

	started, err := scheduler.Tick(ctx)
	scheduler.Wait()

	require.NoError(t, err)
	assert.Equal(t, 2, started)
}

func TestScheduler_Tick_ListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mock.NewMockCycleRunner(ctrl)
	scheduler := NewScheduler(runner, logger.Nop())

	runner.EXPECT().ListGroups(gomock.Any()).Return(nil, ErrPersistence)

	started, err := scheduler.Tick(context.Background())

	assert.ErrorIs(t, err, ErrPersistence)
	assert.Zero(t, started)
}

func TestScheduler_Tick_DoesNotWaitForCycles(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mock.NewMockCycleRunner(ctrl)
	scheduler := NewScheduler(runner, logger.Nop())

	release := make(chan struct{})
	runner.EXPECT().ListGroups(gomock.Any()).Return([]models.SyncGroup{schedulerGroup(1, models.StateIdle, 1)}, nil)
	runner.EXPECT().RunCycle(gomock.Any(), int64(1)).DoAndReturn(func(context.Context, int64) (*models.SyncOperationResult, error) {
		<-release
		return nil, ErrShuttingDown
	})

	started, err := scheduler.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, started)

	close(release)
	scheduler.Wait()
}
