// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

import (
	"context"

	"github.com/MKhiriev/go-list-sync/models"
)

// Reconciler computes the operations that bring the members of a group into
// agreement. It is pure: identical input always yields identical output.
type Reconciler interface {
	Reconcile(ctx context.Context, in models.ReconcileInput) (models.ReconcilePlan, error)
}

// SyncManager owns the group lifecycle and the single-flight reconciliation
// cycle of every group.
type SyncManager interface {
	CreateGroup(ctx context.Context, req models.CreateGroupRequest) (models.SyncGroup, error)
	JoinGroup(ctx context.Context, code string, member models.NewMember) (models.Member, error)
	LeaveGroup(ctx context.Context, groupID, memberID int64) error
	SetMode(ctx context.Context, groupID int64, req models.SetModeRequest) (models.SyncGroup, error)

	// RunCycle runs one reconciliation cycle for the group and returns its
	// result. When a cycle of the group is already in flight the request is
	// coalesced into one deferred re-run and RunCycle returns (nil, nil).
	RunCycle(ctx context.Context, groupID int64) (*models.SyncOperationResult, error)

	// TriggerManualSync validates the group synchronously and starts a cycle
	// in the background, subject to the same coalescing rule as RunCycle.
	TriggerManualSync(ctx context.Context, groupID int64) error

	// SyncAll runs a cycle for every group that can sync and waits for all
	// of them.
	SyncAll(ctx context.Context) ([]models.SyncOperationResult, error)

	GetGroup(ctx context.Context, groupID int64) (models.SyncGroup, error)
	GetGroupByCode(ctx context.Context, code string) (models.SyncGroup, error)
	ListGroups(ctx context.Context) ([]models.SyncGroup, error)
	ListGroupsForAccount(ctx context.Context, accountID string) ([]models.SyncGroup, error)
	ListMembers(ctx context.Context, groupID int64) ([]models.Member, error)
	History(ctx context.Context, groupID int64, limit int) ([]models.SyncOperationResult, error)
	Health(ctx context.Context) (models.HealthReport, error)

	// Shutdown refuses new cycles and waits for in-flight ones until ctx is
	// done.
	Shutdown(ctx context.Context) error
}

// CredentialService seals account credentials and opens them for the
// duration of a single adapter call.
type CredentialService interface {
	StoreCredential(ctx context.Context, accountID, secret string) error
	// Account returns the account with its decrypted secret. It fails with
	// ErrNoCredential or ErrCredentialSealed.
	Account(ctx context.Context, accountID string) (models.Account, error)
}

// AuthService issues and verifies API bearer tokens. The token subject is
// the account the caller acts as.
type AuthService interface {
	CreateToken(ctx context.Context, accountID string) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// AppInfoService describes the running build.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	GetAppInfo(ctx context.Context) models.AppInfo
}

// CycleRunner is the part of SyncManager the Scheduler depends on.
type CycleRunner interface {
	ListGroups(ctx context.Context) ([]models.SyncGroup, error)
	RunCycle(ctx context.Context, groupID int64) (*models.SyncOperationResult, error)
}

// GroupLocker coordinates cycles of the same group across processes. When ok
// is false another process holds the lock and the cycle is skipped.
type GroupLocker interface {
	TryLock(ctx context.Context, groupID int64) (unlock func(), ok bool, err error)
}

// AccountLimiter throttles adapter calls per account. Wait blocks until a
// call is allowed or ctx is done.
type AccountLimiter interface {
	Wait(ctx context.Context, accountID string) error
}

// CycleObserver receives cycle events, typically to export metrics.
type CycleObserver interface {
	CycleStarted(groupID int64)
	CycleFinished(result models.SyncOperationResult)
	TriggerCoalesced(groupID int64)
}
