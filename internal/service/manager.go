// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-list-sync/internal/adapter"
	"github.com/MKhiriev/go-list-sync/internal/config"
	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/internal/store"
	"github.com/MKhiriev/go-list-sync/internal/utils"
	"github.com/MKhiriev/go-list-sync/models"
)

const (
	// maxCodeAttempts bounds group code regeneration on collision.
	maxCodeAttempts = 5

	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

type idGenerator interface {
	Generate() string
}

// syncManager is the concrete implementation of SyncManager.
//
// The gate holds the runtime IDLE/SYNCING state of every group. Everything
// else lives in the store.
type syncManager struct {
	groups      store.GroupRepository
	cycles      store.CycleRepository
	source      adapter.ListSource
	credentials CredentialService
	reconciler  Reconciler

	locker   GroupLocker
	limiter  AccountLimiter
	observer CycleObserver

	gate *groupGate

	maxHistory       int
	fetchConcurrency int
	adapterTimeout   time.Duration

	now     func() time.Time
	ids     idGenerator
	newCode func() (string, error)

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup

	logger *logger.Logger
}

// ManagerOption customises a SyncManager built by NewSyncManager.
type ManagerOption func(*syncManager)

// WithGroupLocker makes every cycle take locker's lock for its group first.
func WithGroupLocker(locker GroupLocker) ManagerOption {
	return func(m *syncManager) {
		if locker != nil {
			m.locker = locker
		}
	}
}

// WithAccountLimiter throttles adapter calls with limiter.
func WithAccountLimiter(limiter AccountLimiter) ManagerOption {
	return func(m *syncManager) {
		if limiter != nil {
			m.limiter = limiter
		}
	}
}

// WithCycleObserver reports cycle events to observer.
func WithCycleObserver(observer CycleObserver) ManagerOption {
	return func(m *syncManager) {
		if observer != nil {
			m.observer = observer
		}
	}
}

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *syncManager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewSyncManager constructs a SyncManager over storages using source for
// every adapter call.
func NewSyncManager(
	storages *store.Storages,
	source adapter.ListSource,
	credentials CredentialService,
	reconciler Reconciler,
	cfg config.StructuredConfig,
	logger *logger.Logger,
	opts ...ManagerOption,
) SyncManager {
	m := &syncManager{
		groups:           storages.Groups,
		cycles:           storages.Cycles,
		source:           source,
		credentials:      credentials,
		reconciler:       reconciler,
		locker:           nopLocker{},
		limiter:          nopLimiter{},
		observer:         nopObserver{},
		gate:             newGroupGate(),
		maxHistory:       cfg.Sync.MaxHistory,
		fetchConcurrency: max(cfg.Sync.FetchConcurrency, 1),
		adapterTimeout:   cfg.Adapter.Timeout,
		now:              func() time.Time { return time.Now().UTC() },
		ids:              utils.NewIDGenerator(),
		newCode:          newGroupCode,
		logger:           logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateGroup implements SyncManager. The owner becomes the first member;
// MASTER_SLAVE groups require OwnerAsMaster.
func (m *syncManager) CreateGroup(ctx context.Context, req models.CreateGroupRequest) (models.SyncGroup, error) {
	log := logger.FromContext(ctx)

	if !req.Mode.Valid() {
		return models.SyncGroup{}, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}
	if req.Mode == models.ModeMasterSlave && !req.OwnerAsMaster {
		return models.SyncGroup{}, fmt.Errorf("%w: %s requires a master", ErrInvalidMode, req.Mode)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.SyncGroup{}, fmt.Errorf("%w: group name is empty", ErrInvalidInput)
	}
	owner, err := m.newMember(req.Owner)
	if err != nil {
		return models.SyncGroup{}, err
	}

	for attempt := 1; ; attempt++ {
		code, err := m.newCode()
		if err != nil {
			return models.SyncGroup{}, fmt.Errorf("error generating group code: %w", err)
		}

		group := models.SyncGroup{
			Code:      code,
			Name:      name,
			Mode:      req.Mode,
			CreatedAt: m.now(),
		}
		created, err := m.groups.CreateGroup(ctx, group, owner, req.Mode == models.ModeMasterSlave)
		if errors.Is(err, store.ErrGroupCodeTaken) && attempt < maxCodeAttempts {
			log.Debug().Str("code", code).Int("attempt", attempt).Msg("group code taken, regenerating")
			continue
		}
		if err != nil {
			return models.SyncGroup{}, storeError(err)
		}

		created.State = models.StateIdle
		log.Info().Int64("group_id", created.ID).Str("mode", string(created.Mode)).Msg("group created")
		return created, nil
	}
}

// JoinGroup implements SyncManager. A successful join starts a cycle in the
// background.
func (m *syncManager) JoinGroup(ctx context.Context, code string, newMember models.NewMember) (models.Member, error) {
	member, err := m.newMember(newMember)
	if err != nil {
		return models.Member{}, err
	}

	group, err := m.groups.GetGroupByCode(ctx, normalizeCode(code))
	if err != nil {
		return models.Member{}, storeError(err)
	}

	added, err := m.groups.AddMember(ctx, group.ID, member)
	if err != nil {
		return models.Member{}, storeError(err)
	}

	logger.FromContext(ctx).Info().Int64("group_id", group.ID).Int64("member_id", added.ID).Msg("member joined")
	m.triggerAsync(group.ID)
	return added, nil
}

// LeaveGroup implements SyncManager. Removing the last member deletes the
// group; removing the master of a MASTER_SLAVE group leaves it needing a new
// master.
func (m *syncManager) LeaveGroup(ctx context.Context, groupID, memberID int64) error {
	log := logger.FromContext(ctx)

	removal, err := m.groups.RemoveMember(ctx, groupID, memberID)
	if err != nil {
		return storeError(err)
	}

	switch {
	case removal.GroupDeleted:
		log.Info().Int64("group_id", groupID).Msg("last member left, group deleted")
	case removal.MasterRemoved:
		log.Warn().Int64("group_id", groupID).Msg("master left, group needs a new master")
	default:
		log.Info().Int64("group_id", groupID).Int64("member_id", memberID).Msg("member left")
		m.triggerAsync(groupID)
	}
	return nil
}

// SetMode implements SyncManager. MASTER_SLAVE needs a master that is a
// current member; COLLABORATIVE drops the master.
func (m *syncManager) SetMode(ctx context.Context, groupID int64, req models.SetModeRequest) (models.SyncGroup, error) {
	if !req.Mode.Valid() {
		return models.SyncGroup{}, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}

	group, err := m.groups.GetGroup(ctx, groupID)
	if err != nil {
		return models.SyncGroup{}, storeError(err)
	}

	var masterID *int64
	if req.Mode == models.ModeMasterSlave {
		if req.MasterMemberID == nil {
			return models.SyncGroup{}, fmt.Errorf("%w: %s requires a master", ErrInvalidMaster, req.Mode)
		}
		if !slices.ContainsFunc(group.Members, func(mem models.Member) bool { return mem.ID == *req.MasterMemberID }) {
			return models.SyncGroup{}, fmt.Errorf("%w: member %d is not in group %d", ErrInvalidMaster, *req.MasterMemberID, groupID)
		}
		id := *req.MasterMemberID
		masterID = &id
	}

	if err := m.groups.SetMode(ctx, groupID, req.Mode, masterID); err != nil {
		return models.SyncGroup{}, storeError(err)
	}

	logger.FromContext(ctx).Info().Int64("group_id", groupID).Str("mode", string(req.Mode)).Msg("group mode changed")
	return m.GetGroup(ctx, groupID)
}

// TriggerManualSync implements SyncManager.
func (m *syncManager) TriggerManualSync(ctx context.Context, groupID int64) error {
	if m.isClosing() {
		return ErrShuttingDown
	}

	group, err := m.groups.GetGroup(ctx, groupID)
	if err != nil {
		return storeError(err)
	}
	if err := checkReady(group); err != nil {
		return err
	}

	m.triggerAsync(groupID)
	return nil
}

// triggerAsync runs a cycle for groupID in a goroutine tracked by Shutdown.
func (m *syncManager) triggerAsync(groupID int64) {
	if !m.begin() {
		return
	}
	go func() {
		defer m.wg.Done()
		if _, err := m.RunCycle(context.Background(), groupID); err != nil {
			m.logger.Warn().Err(err).Int64("group_id", groupID).Msg("background cycle did not run")
		}
	}()
}

// SyncAll implements SyncManager. Groups that cannot sync are skipped, and
// coalesced groups contribute no result.
func (m *syncManager) SyncAll(ctx context.Context) ([]models.SyncOperationResult, error) {
	groups, err := m.groups.ListGroups(ctx)
	if err != nil {
		return nil, storeError(err)
	}

	var (
		mu      sync.Mutex
		results []models.SyncOperationResult
		errs    []error
		eg      errgroup.Group
	)
	for _, group := range groups {
		if !group.ReadyToSync() {
			continue
		}
		eg.Go(func() error {
			res, err := m.RunCycle(ctx, group.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("group %d: %w", group.ID, err))
			}
			if res != nil {
				results = append(results, *res)
			}
			return nil
		})
	}
	_ = eg.Wait()

	slices.SortFunc(results, func(a, b models.SyncOperationResult) int {
		return cmp.Compare(a.GroupID, b.GroupID)
	})
	return results, errors.Join(errs...)
}

func (m *syncManager) GetGroup(ctx context.Context, groupID int64) (models.SyncGroup, error) {
	group, err := m.groups.GetGroup(ctx, groupID)
	if err != nil {
		return models.SyncGroup{}, storeError(err)
	}
	return m.withState(group), nil
}

func (m *syncManager) GetGroupByCode(ctx context.Context, code string) (models.SyncGroup, error) {
	group, err := m.groups.GetGroupByCode(ctx, normalizeCode(code))
	if err != nil {
		return models.SyncGroup{}, storeError(err)
	}
	return m.withState(group), nil
}

func (m *syncManager) ListGroups(ctx context.Context) ([]models.SyncGroup, error) {
	groups, err := m.groups.ListGroups(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	for i := range groups {
		groups[i] = m.withState(groups[i])
	}
	return groups, nil
}

func (m *syncManager) ListGroupsForAccount(ctx context.Context, accountID string) ([]models.SyncGroup, error) {
	groups, err := m.groups.ListGroupsForAccount(ctx, accountID)
	if err != nil {
		return nil, storeError(err)
	}
	for i := range groups {
		groups[i] = m.withState(groups[i])
	}
	return groups, nil
}

func (m *syncManager) ListMembers(ctx context.Context, groupID int64) ([]models.Member, error) {
	group, err := m.groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeError(err)
	}
	return group.Members, nil
}

// History implements SyncManager. A non-positive limit selects the default.
func (m *syncManager) History(ctx context.Context, groupID int64, limit int) ([]models.SyncOperationResult, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	if _, err := m.groups.GetGroup(ctx, groupID); err != nil {
		return nil, storeError(err)
	}
	history, err := m.cycles.History(ctx, groupID, limit)
	if err != nil {
		return nil, storeError(err)
	}
	return history, nil
}

// Health implements SyncManager.
func (m *syncManager) Health(ctx context.Context) (models.HealthReport, error) {
	groups, err := m.groups.ListGroups(ctx)
	if err != nil {
		return models.HealthReport{}, storeError(err)
	}

	report := models.HealthReport{TotalGroups: len(groups), Groups: make([]models.GroupHealth, 0, len(groups))}
	for _, g := range groups {
		status := models.HealthHealthy
		switch {
		case len(g.Members) == 0:
			status = models.HealthNoMembers
		case !g.ReadyToSync():
			status = models.HealthNeedsMaster
		case g.LastSyncStatus == models.StatusPartial, g.LastSyncStatus == models.StatusFailed:
			status = models.HealthDegraded
		}
		report.Groups = append(report.Groups, models.GroupHealth{
			GroupID:     g.ID,
			GroupName:   g.Name,
			MemberCount: len(g.Members),
			LastSyncAt:  g.LastSyncAt,
			Status:      status,
		})
	}
	return report, nil
}

// Shutdown implements SyncManager.
func (m *syncManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closing = true
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info().Msg("sync manager stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight cycles: %w", ctx.Err())
	}
}

// begin registers a unit of work unless Shutdown already started.
func (m *syncManager) begin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closing {
		return false
	}
	m.wg.Add(1)
	return true
}

func (m *syncManager) isClosing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closing
}

func (m *syncManager) withState(group models.SyncGroup) models.SyncGroup {
	group.State = models.StateIdle
	if m.gate.syncing(group.ID) {
		group.State = models.StateSyncing
	}
	return group
}

func (m *syncManager) newMember(nm models.NewMember) (models.Member, error) {
	accountID := strings.TrimSpace(nm.AccountID)
	if accountID == "" {
		return models.Member{}, fmt.Errorf("%w: account id is empty", ErrInvalidInput)
	}
	list := nm.List
	list.ListID = strings.TrimSpace(list.ListID)
	if list.ListID == "" {
		return models.Member{}, fmt.Errorf("%w: list id is empty", ErrInvalidInput)
	}
	if list.Owner == "" {
		list.Owner = accountID
	}
	displayName := strings.TrimSpace(nm.DisplayName)
	if displayName == "" {
		displayName = accountID
	}

	return models.Member{
		AccountID:   accountID,
		DisplayName: displayName,
		List:        list,
		JoinedAt:    m.now(),
	}, nil
}

// checkReady returns the validation error that keeps group from syncing.
func checkReady(group models.SyncGroup) error {
	if group.ReadyToSync() {
		return nil
	}
	if len(group.Members) == 0 {
		return fmt.Errorf("%w: group %d has no members", ErrInvalidInput, group.ID)
	}
	return fmt.Errorf("%w: group %d", ErrNeedsMaster, group.ID)
}

// storeError maps store sentinels onto the service taxonomy.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrGroupNotFound):
		return ErrGroupNotFound
	case errors.Is(err, store.ErrMemberNotFound):
		return ErrMemberNotFound
	case errors.Is(err, store.ErrMemberAlreadyExists):
		return ErrAlreadyMember
	case errors.Is(err, ErrValidation), errors.Is(err, ErrPersistence):
		return err
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
