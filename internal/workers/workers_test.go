// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/internal/mock"
	"github.com/MKhiriev/go-list-sync/internal/service"
	"github.com/MKhiriev/go-list-sync/models"
)

func TestTickerWorker_RunsEveryInterval(t *testing.T) {
	var calls atomic.Int32
	w := NewTickerWorker("test", 10*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, logger.Nop())

	w.Start(context.Background())
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	w.Stop()

	stopped := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load(), "job ran after Stop")
}

func TestTickerWorker_ImmediateRun(t *testing.T) {
	ran := make(chan struct{}, 1)
	w := NewTickerWorker("test", time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}, logger.Nop(), WithImmediateRun())

	w.Start(context.Background())
	defer w.Stop()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
}

func TestTickerWorker_FailingJobKeepsRunning(t *testing.T) {
	var calls atomic.Int32
	w := NewTickerWorker("test", 5*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("upstream unavailable")
	}, logger.Nop())

	w.Start(context.Background())
	defer w.Stop()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestTickerWorker_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewTickerWorker("test", 5*time.Millisecond, func(ctx context.Context) error { return nil }, logger.Nop())

	w.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked after context cancel")
	}
}

func TestTickerWorker_StopWithoutStart(t *testing.T) {
	w := NewTickerWorker("test", 0, func(ctx context.Context) error { return nil }, logger.Nop())

	assert.Equal(t, defaultInterval, w.interval)
	w.Stop()
}

func TestTickerWorker_RestartReplacesRun(t *testing.T) {
	var running atomic.Int32
	var peak atomic.Int32
	w := NewTickerWorker("test", 5*time.Millisecond, func(ctx context.Context) error {
		n := running.Add(1)
		defer running.Add(-1)
		if n > peak.Load() {
			peak.Store(n)
		}
		return nil
	}, logger.Nop())

	w.Start(context.Background())
	w.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	w.Stop()

	assert.Equal(t, int32(1), peak.Load())
}

type orderWorker struct {
	id    int
	mu    *sync.Mutex
	order *[]string
}

func (w *orderWorker) Start(context.Context) { w.record("start") }
func (w *orderWorker) Stop()                 { w.record("stop") }

func (w *orderWorker) record(event string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	*w.order = append(*w.order, event+string(rune('0'+w.id)))
}

func TestWorkers_StartStopOrder(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	ws := New(&orderWorker{id: 1, mu: &mu, order: &order})
	ws.Add(&orderWorker{id: 2, mu: &mu, order: &order})

	ws.Start(context.Background())
	ws.Stop()

	assert.Equal(t, []string{"start1", "start2", "stop2", "stop1"}, order)
}

func TestWorkers_Empty(t *testing.T) {
	ws := New()

	ws.Start(context.Background())
	ws.Stop()
}

func TestNewSchedulerWorker(t *testing.T) {
	runner := mock.NewMockCycleRunner(gomock.NewController(t))
	scheduler := service.NewScheduler(runner, logger.Nop())

	cycled := make(chan int64, 1)
	runner.EXPECT().ListGroups(gomock.Any()).Return([]models.SyncGroup{
		{ID: 4, Mode: models.ModeCollaborative, State: models.StateIdle, Members: []models.Member{{ID: 1}}},
	}, nil).MinTimes(1)
	runner.EXPECT().RunCycle(gomock.Any(), int64(4)).DoAndReturn(func(ctx context.Context, groupID int64) (*models.SyncOperationResult, error) {
		select {
		case cycled <- groupID:
		default:
		}
		return &models.SyncOperationResult{GroupID: groupID, Status: models.StatusSuccess}, nil
	}).MinTimes(1)

	w := NewSchedulerWorker(scheduler, 5*time.Millisecond, logger.Nop())
	w.Start(context.Background())

	select {
	case id := <-cycled:
		assert.Equal(t, int64(4), id)
	case <-time.After(time.Second):
		t.Fatal("scheduler worker did not start a cycle")
	}
	w.Stop()
	scheduler.Wait()
}

type refresherFunc func(ctx context.Context) error

func (f refresherFunc) Refresh(ctx context.Context) error { return f(ctx) }

func TestNewHealthWorker(t *testing.T) {
	var calls atomic.Int32
	w := NewHealthWorker(refresherFunc(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}), time.Hour, logger.Nop())

	w.Start(context.Background())
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	w.Stop()
}
