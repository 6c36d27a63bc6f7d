// Package workers runs the periodic background jobs of the sync service.
//
// It defines the Worker lifecycle, a ticker-driven implementation and a
// Workers aggregate that starts and stops several workers together.
package workers

import "context"

// Worker is a background job with an explicit lifecycle.
//
// Start launches the job and returns immediately. Stop cancels it and blocks
// until it has exited; Stop on a worker that is not running is a no-op.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}

// HealthRefresher publishes the current health of the service, typically to
// the gRPC health server.
type HealthRefresher interface {
	Refresh(ctx context.Context) error
}
