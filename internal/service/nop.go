package service

import (
	"context"

	"github.com/MKhiriev/go-list-sync/models"
)

// nopLocker always grants the lock. A single process needs nothing more
// than the in-memory group gate.
type nopLocker struct{}

func (nopLocker) TryLock(context.Context, int64) (func(), bool, error) {
	return func() {}, true, nil
}

type nopLimiter struct{}

func (nopLimiter) Wait(context.Context, string) error { return nil }

type nopObserver struct{}

func (nopObserver) CycleStarted(int64) {}
func (nopObserver) CycleFinished(models.SyncOperationResult) {}
func (nopObserver) TriggerCoalesced(int64) {}
