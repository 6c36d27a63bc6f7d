package service

import (
	"context"
	"errors"
	"sync"

	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/models"
)

// Scheduler fires one cycle per idle group on every tick. It never waits for
// the cycles it starts; overlapping cycles of one group are prevented by the
// runner's single-flight gate.
type Scheduler struct {
	runner CycleRunner

	wg     sync.WaitGroup
	logger *logger.Logger
}

func NewScheduler(runner CycleRunner, logger *logger.Logger) *Scheduler {
	return &Scheduler{runner: runner, logger: logger}
}

// Tick starts a cycle for every IDLE group that can sync and returns the
// number of cycles started.
func (s *Scheduler) Tick(ctx context.Context) (int, error) {
	groups, err := s.runner.ListGroups(ctx)
	if err != nil {
		return 0, err
	}

	started := 0
	for _, group := range groups {
		if group.State != models.StateIdle || !group.ReadyToSync() {
			continue
		}
		started++

		s.wg.Add(1)
		go func(groupID int64) {
			defer s.wg.Done()
			_, err := s.runner.RunCycle(ctx, groupID)
			switch {
			case errors.Is(err, ErrShuttingDown):
				s.logger.Debug().Int64("group_id", groupID).Msg("scheduled cycle skipped, shutting down")
			case err != nil:
				s.logger.Warn().Err(err).Int64("group_id", groupID).Msg("scheduled cycle failed")
			}
		}(group.ID)
	}

	s.logger.Debug().Int("groups", len(groups)).Int("started", started).Msg("scheduler tick")
	return started, nil
}

// Wait blocks until every cycle started by Tick has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
