package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-list-sync/internal/adapter"
	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/models"
)

// groupGate is the per-group IDLE/SYNCING state. A group is SYNCING while it
// has an entry; the entry value records a deferred re-run.
type groupGate struct {
	mu      sync.Mutex
	pending map[int64]bool
}

func newGroupGate() *groupGate {
	return &groupGate{pending: make(map[int64]bool)}
}

// enter moves groupID to SYNCING and reports true. If the group is already
// SYNCING it records one deferred re-run and reports false.
func (g *groupGate) enter(groupID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, syncing := g.pending[groupID]; syncing {
		g.pending[groupID] = true
		return false
	}
	g.pending[groupID] = false
	return true
}

// leave consumes a deferred re-run and reports true, keeping the group
// SYNCING. Otherwise, or when rerun is false, the group returns to IDLE.
func (g *groupGate) leave(groupID int64, rerun bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if rerun && g.pending[groupID] {
		g.pending[groupID] = false
		return true
	}
	delete(g.pending, groupID)
	return false
}

func (g *groupGate) syncing(groupID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.pending[groupID]
	return ok
}

// RunCycle implements SyncManager.
//
// The cycle body runs detached from ctx cancellation: a cycle is never
// interrupted mid-flight. Deferred re-runs recorded while it ran execute
// before RunCycle returns, unless Shutdown started in the meantime.
func (m *syncManager) RunCycle(ctx context.Context, groupID int64) (*models.SyncOperationResult, error) {
	if !m.begin() {
		return nil, ErrShuttingDown
	}
	defer m.wg.Done()

	log := m.logger.ForGroup(groupID)
	if !m.gate.enter(groupID) {
		m.observer.TriggerCoalesced(groupID)
		log.Debug().Msg("cycle in flight, trigger coalesced")
		return nil, nil
	}

	ctx = context.WithoutCancel(ctx)
	for {
		result, err := m.runLocked(ctx, groupID, log)
		if !m.gate.leave(groupID, !m.isClosing()) {
			return result, err
		}
		log.Debug().Msg("running deferred cycle")
	}
}

func (m *syncManager) runLocked(ctx context.Context, groupID int64, log *logger.Logger) (*models.SyncOperationResult, error) {
	unlock, ok, err := m.locker.TryLock(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLockUnavailable, err)
	}
	if !ok {
		log.Info().Msg("group is locked by another instance, cycle skipped")
		return nil, nil
	}
	defer unlock()

	return m.cycle(ctx, groupID)
}

// memberRun follows one member through a cycle. Each run is written by at
// most one goroutine at a time.
type memberRun struct {
	member  models.Member
	current []string
	fetched bool
	ops     models.MemberOperations
	failure *models.MemberFailure
	reauth  bool
}

// cycle is one fetch, reconcile, apply and persist pass over a group.
func (m *syncManager) cycle(ctx context.Context, groupID int64) (*models.SyncOperationResult, error) {
	cycleID := m.ids.Generate()
	log := m.logger.ForCycle(groupID, cycleID)
	ctx = log.WithContext(ctx)

	group, err := m.groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeError(err)
	}
	if err := checkReady(group); err != nil {
		return nil, err
	}

	m.observer.CycleStarted(groupID)
	result := models.SyncOperationResult{
		CycleID:   cycleID,
		GroupID:   groupID,
		Members:   []models.MemberResult{},
		StartedAt: m.now(),
	}
	log.Debug().Int("members", len(group.Members)).Str("mode", string(group.Mode)).Msg("cycle started")

	baselines, err := m.cycles.Baselines(ctx, groupID)
	if err != nil {
		return m.abort(ctx, &result, storeError(err))
	}
	prior := reconcileBase{baselines: baselines}
	if group.Mode == models.ModeCollaborative {
		prior.target, prior.hasTarget, err = m.cycles.LastTarget(ctx, groupID)
		if err != nil {
			return m.abort(ctx, &result, storeError(err))
		}
	}

	runs := make([]*memberRun, len(group.Members))
	for i, member := range group.Members {
		runs[i] = &memberRun{member: member}
	}

	m.fetchAll(ctx, runs)

	plan, planned, err := m.plan(ctx, group, runs, prior)
	if err != nil {
		return m.abort(ctx, &result, err)
	}
	if planned {
		m.applyAll(ctx, runs)
	}

	commit := models.CycleCommit{GroupID: groupID, MaxHistory: m.maxHistory}
	if planned {
		commit.Target, commit.HasTarget = plan.Target, true
	}
	failed := 0
	for _, r := range runs {
		switch {
		case r.failure != nil:
			failed++
			result.Failures = append(result.Failures, *r.failure)
			commit.Flags = append(commit.Flags, models.MemberFlags{
				MemberID:    r.member.ID,
				NeedsReauth: r.member.NeedsReauth || r.reauth,
				LastError:   r.failure.Error,
			})
		case planned:
			commit.Baselines = append(commit.Baselines, models.MemberBaseline{MemberID: r.member.ID, Items: plan.Target})
			result.Members = append(result.Members, models.MemberResult{
				MemberID: r.member.ID,
				Added:    len(r.ops.Add),
				Removed:  len(r.ops.Remove),
			})
			if r.member.NeedsReauth || r.member.LastError != "" {
				commit.Flags = append(commit.Flags, models.MemberFlags{MemberID: r.member.ID})
			}
		}
	}

	switch {
	case !planned, failed == len(runs):
		result.Status = models.StatusFailed
	case failed == 0:
		result.Status = models.StatusSuccess
	default:
		result.Status = models.StatusPartial
	}
	result.FinishedAt = m.now()
	commit.Result = result

	id, err := m.cycles.CommitCycle(ctx, commit)
	if err != nil {
		return m.abort(ctx, &result, storeError(err))
	}
	result.ID = id

	m.observer.CycleFinished(result)
	log.Info().
		Str("status", string(result.Status)).
		Int("failures", len(result.Failures)).
		Dur("duration", result.FinishedAt.Sub(result.StartedAt)).
		Msg("cycle finished")
	return &result, nil
}

// abort ends a cycle as FAILED without writing anything.
func (m *syncManager) abort(ctx context.Context, result *models.SyncOperationResult, err error) (*models.SyncOperationResult, error) {
	result.Status = models.StatusFailed
	result.FinishedAt = m.now()
	m.observer.CycleFinished(*result)
	logger.FromContext(ctx).Err(err).Msg("cycle failed, state left unchanged")
	return result, err
}

func (m *syncManager) fetchAll(ctx context.Context, runs []*memberRun) {
	var eg errgroup.Group
	eg.SetLimit(m.fetchConcurrency)
	for _, r := range runs {
		eg.Go(func() error {
			m.fetch(ctx, r)
			return nil
		})
	}
	_ = eg.Wait()
}

// fetch and apply each open the member's credential themselves. The
// plaintext lives only for one adapter call and is never kept on memberRun.
func (m *syncManager) fetch(ctx context.Context, r *memberRun) {
	account, err := m.credentials.Account(ctx, r.member.AccountID)
	if err != nil {
		m.memberFailed(ctx, r, models.StageCredential, err)
		return
	}

	err = m.callAdapter(ctx, account.ID, func(callCtx context.Context) error {
		items, err := m.source.FetchList(callCtx, account, r.member.List)
		r.current = items
		return err
	})
	if err != nil {
		m.memberFailed(ctx, r, models.StageFetch, err)
		return
	}
	r.fetched = true
}

// reconcileBase is the committed state a cycle reconciles against.
type reconcileBase struct {
	baselines map[int64][]string
	target    []string
	hasTarget bool
}

// plan reconciles the fetched members. It reports false when no target can
// be computed: nobody was fetched, or the master of a MASTER_SLAVE group
// was not.
func (m *syncManager) plan(ctx context.Context, group models.SyncGroup, runs []*memberRun, prior reconcileBase) (models.ReconcilePlan, bool, error) {
	byID := make(map[int64]*memberRun, len(runs))
	snapshots := make([]models.MemberSnapshot, 0, len(runs))
	masterFetched := false
	for _, r := range runs {
		if !r.fetched {
			continue
		}
		byID[r.member.ID] = r
		if group.IsMaster(r.member.ID) {
			masterFetched = true
		}
		snapshots = append(snapshots, models.MemberSnapshot{
			MemberID: r.member.ID,
			Current:  r.current,
			Baseline: prior.baselines[r.member.ID],
		})
	}

	if len(snapshots) == 0 {
		return models.ReconcilePlan{}, false, nil
	}
	if group.Mode == models.ModeMasterSlave && !masterFetched {
		logger.FromContext(ctx).Warn().Msg("master could not be fetched, no member is reconciled")
		return models.ReconcilePlan{}, false, nil
	}

	in := models.ReconcileInput{
		Mode:          group.Mode,
		Members:       snapshots,
		LastTarget:    prior.target,
		HasLastTarget: prior.hasTarget,
	}
	if group.MasterMemberID != nil {
		in.MasterID = *group.MasterMemberID
	}
	plan, err := m.reconciler.Reconcile(ctx, in)
	if err != nil {
		return models.ReconcilePlan{}, false, fmt.Errorf("reconcile group %d: %w", group.ID, err)
	}

	for _, ops := range plan.Operations {
		if r, ok := byID[ops.MemberID]; ok {
			r.ops = ops
		}
	}
	return plan, true, nil
}

func (m *syncManager) applyAll(ctx context.Context, runs []*memberRun) {
	var eg errgroup.Group
	eg.SetLimit(m.fetchConcurrency)
	for _, r := range runs {
		if !r.fetched || r.ops.Empty() {
			continue
		}
		eg.Go(func() error {
			m.apply(ctx, r)
			return nil
		})
	}
	_ = eg.Wait()
}

func (m *syncManager) apply(ctx context.Context, r *memberRun) {
	account, err := m.credentials.Account(ctx, r.member.AccountID)
	if err != nil {
		m.memberFailed(ctx, r, models.StageCredential, err)
		return
	}

	err = m.callAdapter(ctx, account.ID, func(callCtx context.Context) error {
		return m.source.ApplyOperations(callCtx, account, r.member.List, r.ops.Add, r.ops.Remove)
	})
	if err != nil {
		m.memberFailed(ctx, r, models.StageApply, err)
	}
}

// callAdapter waits for the account's rate limit and bounds call with the
// adapter timeout.
func (m *syncManager) callAdapter(ctx context.Context, accountID string, call func(context.Context) error) error {
	if err := m.limiter.Wait(ctx, accountID); err != nil {
		return fmt.Errorf("%w: %w", adapter.ErrRateLimited, err)
	}

	if m.adapterTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.adapterTimeout)
		defer cancel()
	}
	return call(ctx)
}

func (m *syncManager) memberFailed(ctx context.Context, r *memberRun, stage models.FailureStage, err error) {
	r.reauth = errors.Is(err, ErrCredential) || errors.Is(err, adapter.ErrAuthExpired)
	r.failure = &models.MemberFailure{
		MemberID: r.member.ID,
		Stage:    stage,
		Kind:     failureKind(err),
		Error:    err.Error(),
	}

	logger.FromContext(ctx).Warn().
		Err(err).
		Int64("member_id", r.member.ID).
		Str("stage", string(stage)).
		Str("kind", r.failure.Kind).
		Msg("member failed")
}

// failureKind names the error kind stored with a member failure.
func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrNoCredential):
		return "no_credential"
	case errors.Is(err, ErrCredentialSealed):
		return "decryption_failed"
	case errors.Is(err, ErrCredential):
		return "credential"
	}
	return adapter.Kind(err)
}
