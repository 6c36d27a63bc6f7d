package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/internal/service"
)

// Workers starts and stops a set of workers as one unit.
type Workers struct {
	workers []Worker
}

func New(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Add appends w to the set. It must not be called after Start.
func (w *Workers) Add(worker Worker) {
	w.workers = append(w.workers, worker)
}

func (w *Workers) Start(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Start(ctx)
	}
}

// Stop stops the workers in reverse start order.
func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
}

// NewSchedulerWorker ticks the scheduler every poll interval, which starts a
// cycle for each idle group.
func NewSchedulerWorker(scheduler *service.Scheduler, interval time.Duration, logger *logger.Logger) *TickerWorker {
	return NewTickerWorker("scheduler", interval, func(ctx context.Context) error {
		_, err := scheduler.Tick(ctx)
		return err
	}, logger)
}

// NewHealthWorker refreshes r every interval, starting immediately.
func NewHealthWorker(r HealthRefresher, interval time.Duration, logger *logger.Logger) *TickerWorker {
	return NewTickerWorker("health", interval, r.Refresh, logger, WithImmediateRun())
}
