package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-list-sync/internal/logger"
)

// defaultInterval is used when a worker is created with a non-positive
// interval.
const defaultInterval = 5 * time.Minute

// TickerWorker calls a job function every interval until stopped.
type TickerWorker struct {
	name      string
	interval  time.Duration
	job       func(ctx context.Context) error
	immediate bool

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// TickerOption configures a TickerWorker.
type TickerOption func(*TickerWorker)

// WithImmediateRun runs the job once as soon as the worker starts, before the
// first tick.
func WithImmediateRun() TickerOption {
	return func(w *TickerWorker) {
		w.immediate = true
	}
}

func NewTickerWorker(name string, interval time.Duration, job func(ctx context.Context) error, logger *logger.Logger, opts ...TickerOption) *TickerWorker {
	if interval <= 0 {
		interval = defaultInterval
	}
	w := &TickerWorker{
		name:     name,
		interval: interval,
		job:      job,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start stops any previous run of the worker and launches a new one. The run
// ends when ctx is cancelled or Stop is called. A failing job is logged and
// retried on the next tick.
func (w *TickerWorker) Start(ctx context.Context) {
	w.Stop()

	w.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	w.logger.Info().Str("worker", w.name).Dur("interval", w.interval).Msg("worker started")

	go func() {
		defer w.wg.Done()
		t := time.NewTicker(w.interval)
		defer t.Stop()

		if w.immediate {
			w.runOnce(jobCtx)
		}
		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				w.runOnce(jobCtx)
			}
		}
	}()
}

func (w *TickerWorker) runOnce(ctx context.Context) {
	if err := w.job(ctx); err != nil && ctx.Err() == nil {
		w.logger.Warn().Err(err).Str("worker", w.name).Msg("worker job failed")
	}
}

// Stop cancels the running job and waits for it to exit.
func (w *TickerWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
		w.logger.Info().Str("worker", w.name).Msg("worker stopped")
	}
	w.wg.Wait()
}
