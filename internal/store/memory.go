package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/MKhiriev/go-list-sync/models"
)

// MemoryStore keeps everything in process memory. It implements
// [GroupRepository], [CycleRepository] and [CredentialRepository] with the
// same semantics as the SQL store and is used when no DSN is configured.
// Returned values never alias internal state.
type MemoryStore struct {
	mu sync.RWMutex

	nextGroupID  int64
	nextMemberID int64
	nextResultID int64

	groups      map[int64]*models.SyncGroup
	members     map[int64]*models.Member
	baselines   map[int64][]string
	targets     map[int64][]string
	history     map[int64][]models.SyncOperationResult // oldest first
	credentials map[string]models.Credential
}

// NewMemoryStore constructs an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		groups:      make(map[int64]*models.SyncGroup),
		members:     make(map[int64]*models.Member),
		baselines:   make(map[int64][]string),
		targets:     make(map[int64][]string),
		history:     make(map[int64][]models.SyncOperationResult),
		credentials: make(map[string]models.Credential),
	}
}

func (s *MemoryStore) CreateGroup(ctx context.Context, group models.SyncGroup, owner models.Member, ownerAsMaster bool) (models.SyncGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.groups {
		if g.Code == group.Code {
			return models.SyncGroup{}, ErrGroupCodeTaken
		}
	}
	if err := s.checkMemberConflict(0, owner); err != nil {
		return models.SyncGroup{}, err
	}

	s.nextGroupID++
	group.ID = s.nextGroupID
	group.Members = nil
	group.MasterMemberID = nil
	group.State = models.StateIdle

	owner = s.insertMember(group.ID, owner)
	if ownerAsMaster {
		id := owner.ID
		group.MasterMemberID = &id
	}
	stored := group
	s.groups[group.ID] = &stored

	return s.groupCopy(group.ID), nil
}

func (s *MemoryStore) checkMemberConflict(groupID int64, member models.Member) error {
	for _, m := range s.members {
		if groupID != 0 && m.GroupID == groupID && m.AccountID == member.AccountID {
			return ErrMemberAlreadyExists
		}
		if m.List.Owner == member.List.Owner && m.List.ListID == member.List.ListID {
			return ErrMemberAlreadyExists
		}
	}
	return nil
}

func (s *MemoryStore) insertMember(groupID int64, member models.Member) models.Member {
	s.nextMemberID++
	member.ID = s.nextMemberID
	member.GroupID = groupID
	member.NeedsReauth = false
	member.LastError = ""
	stored := member
	s.members[member.ID] = &stored
	return member
}

func (s *MemoryStore) GetGroup(ctx context.Context, groupID int64) (models.SyncGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.groups[groupID]; !ok {
		return models.SyncGroup{}, ErrGroupNotFound
	}
	return s.groupCopy(groupID), nil
}

func (s *MemoryStore) GetGroupByCode(ctx context.Context, code string) (models.SyncGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, g := range s.groups {
		if g.Code == code {
			return s.groupCopy(id), nil
		}
	}
	return models.SyncGroup{}, ErrGroupNotFound
}

func (s *MemoryStore) ListGroups(ctx context.Context) ([]models.SyncGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.groupsWhere(func(int64) bool { return true }), nil
}

func (s *MemoryStore) ListGroupsForAccount(ctx context.Context, accountID string) ([]models.SyncGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	joined := make(map[int64]bool)
	for _, m := range s.members {
		if m.AccountID == accountID {
			joined[m.GroupID] = true
		}
	}
	return s.groupsWhere(func(id int64) bool { return joined[id] }), nil
}

func (s *MemoryStore) groupsWhere(keep func(id int64) bool) []models.SyncGroup {
	ids := make([]int64, 0, len(s.groups))
	for id := range s.groups {
		if keep(id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	out := make([]models.SyncGroup, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.groupCopy(id))
	}
	return out
}

// groupCopy must be called with s.mu held.
func (s *MemoryStore) groupCopy(groupID int64) models.SyncGroup {
	g := *s.groups[groupID]
	if g.MasterMemberID != nil {
		id := *g.MasterMemberID
		g.MasterMemberID = &id
	}
	if g.LastSyncAt != nil {
		t := *g.LastSyncAt
		g.LastSyncAt = &t
	}

	g.Members = nil
	for _, m := range s.members {
		if m.GroupID == groupID {
			g.Members = append(g.Members, *m)
		}
	}
	g.Members = orderMembers(g.Members, g.MasterMemberID)
	return g
}

func (s *MemoryStore) SetMode(ctx context.Context, groupID int64, mode models.SyncMode, masterID *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return ErrGroupNotFound
	}
	g.Mode = mode
	g.NeedsMaster = false
	g.MasterMemberID = nil
	if masterID != nil {
		id := *masterID
		g.MasterMemberID = &id
	}
	return nil
}

func (s *MemoryStore) AddMember(ctx context.Context, groupID int64, member models.Member) (models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[groupID]; !ok {
		return models.Member{}, ErrGroupNotFound
	}
	if err := s.checkMemberConflict(groupID, member); err != nil {
		return models.Member{}, err
	}
	return s.insertMember(groupID, member), nil
}

func (s *MemoryStore) RemoveMember(ctx context.Context, groupID, memberID int64) (models.MemberRemoval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return models.MemberRemoval{}, ErrGroupNotFound
	}
	m, ok := s.members[memberID]
	if !ok || m.GroupID != groupID {
		return models.MemberRemoval{}, ErrMemberNotFound
	}

	removal := models.MemberRemoval{Member: *m}
	delete(s.members, memberID)
	delete(s.baselines, memberID)

	remaining := 0
	for _, other := range s.members {
		if other.GroupID == groupID {
			remaining++
		}
	}
	if remaining == 0 {
		delete(s.groups, groupID)
		delete(s.history, groupID)
		delete(s.targets, groupID)
		removal.GroupDeleted = true
		return removal, nil
	}

	if g.IsMaster(memberID) {
		g.MasterMemberID = nil
		g.NeedsMaster = g.Mode == models.ModeMasterSlave
		removal.MasterRemoved = true
	}
	return removal, nil
}

func (s *MemoryStore) ClearReauth(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.members {
		if m.AccountID == accountID && m.NeedsReauth {
			m.NeedsReauth = false
			m.LastError = ""
		}
	}
	return nil
}

func (s *MemoryStore) Baselines(ctx context.Context, groupID int64) (map[int64][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64][]string)
	for id, items := range s.baselines {
		if m, ok := s.members[id]; ok && m.GroupID == groupID {
			out[id] = slices.Clone(items)
		}
	}
	return out, nil
}

func (s *MemoryStore) LastTarget(ctx context.Context, groupID int64) ([]string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target, ok := s.targets[groupID]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(target), true, nil
}

func (s *MemoryStore) CommitCycle(ctx context.Context, commit models.CycleCommit) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[commit.GroupID]
	if !ok {
		return 0, ErrGroupNotFound
	}

	inGroup := func(memberID int64) bool {
		m, ok := s.members[memberID]
		return ok && m.GroupID == commit.GroupID
	}

	for _, b := range commit.Baselines {
		if inGroup(b.MemberID) {
			items := slices.Clone(b.Items)
			sort.Strings(items)
			s.baselines[b.MemberID] = items
		}
	}
	if commit.HasTarget {
		target := make([]string, len(commit.Target))
		copy(target, commit.Target)
		sort.Strings(target)
		s.targets[commit.GroupID] = target
	}
	for _, f := range commit.Flags {
		if inGroup(f.MemberID) {
			m := s.members[f.MemberID]
			m.NeedsReauth = f.NeedsReauth
			m.LastError = f.LastError
		}
	}

	s.nextResultID++
	result := commit.Result
	result.ID = s.nextResultID
	result.GroupID = commit.GroupID
	result.Members = slices.Clone(result.Members)
	result.Failures = slices.Clone(result.Failures)

	history := append(s.history[commit.GroupID], result)
	if commit.MaxHistory > 0 && len(history) > commit.MaxHistory {
		history = slices.Clone(history[len(history)-commit.MaxHistory:])
	}
	s.history[commit.GroupID] = history

	finished := commit.Result.FinishedAt
	g.LastSyncAt = &finished
	g.LastSyncStatus = commit.Result.Status

	return result.ID, nil
}

func (s *MemoryStore) History(ctx context.Context, groupID int64, limit int) ([]models.SyncOperationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.history[groupID]
	out := make([]models.SyncOperationResult, 0, min(limit, len(history)))
	for i := len(history) - 1; i >= 0 && len(out) < limit; i-- {
		r := history[i]
		r.Members = slices.Clone(r.Members)
		r.Failures = slices.Clone(r.Failures)
		out = append(out, r)
	}
	return out, nil
}

func (s *MemoryStore) SaveCredential(ctx context.Context, credential models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if credential.UpdatedAt.IsZero() {
		credential.UpdatedAt = time.Now().UTC()
	}
	credential.Ciphertext = slices.Clone(credential.Ciphertext)
	s.credentials[credential.AccountID] = credential
	return nil
}

func (s *MemoryStore) GetCredential(ctx context.Context, accountID string) (models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.credentials[accountID]
	if !ok {
		return models.Credential{}, ErrNotFound
	}
	c.Ciphertext = slices.Clone(c.Ciphertext)
	return c, nil
}
