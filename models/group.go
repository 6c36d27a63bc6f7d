package models

import "time"

// SyncMode is the replication policy of a sync group.
type SyncMode string

const (
	// ModeMasterSlave makes the designated master's list authoritative for every other member.
	ModeMasterSlave SyncMode = "MASTER_SLAVE"
	// ModeCollaborative merges the additions and removals of all members.
	ModeCollaborative SyncMode = "COLLABORATIVE"
)

// Valid reports whether m is a known replication mode.
func (m SyncMode) Valid() bool {
	return m == ModeMasterSlave || m == ModeCollaborative
}

// GroupState is the runtime state of a group in the sync state machine.
type GroupState string

const (
	StateIdle    GroupState = "IDLE"
	StateSyncing GroupState = "SYNCING"
)

// SyncGroup is a set of members whose lists are kept consistent under one
// replication mode.
type SyncGroup struct {
	ID   int64    `json:"id"`
	Code string   `json:"code"`
	Name string   `json:"name"`
	Mode SyncMode `json:"mode"`

	// MasterMemberID is set iff Mode is ModeMasterSlave and a master is designated.
	MasterMemberID *int64 `json:"master_member_id,omitempty"`
	// NeedsMaster is raised when the master leaves; cycles are refused until
	// a new master is designated with SetMode.
	NeedsMaster bool `json:"needs_master"`

	State          GroupState `json:"state"`
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
	LastSyncStatus SyncStatus `json:"last_sync_status,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`

	Members []Member `json:"members,omitempty"`
}

// IsMaster reports whether memberID is the designated master of g.
func (g SyncGroup) IsMaster(memberID int64) bool {
	return g.MasterMemberID != nil && *g.MasterMemberID == memberID
}

// ReadyToSync reports whether a cycle may run for g: it has members and, in
// MASTER_SLAVE mode, a designated master.
func (g SyncGroup) ReadyToSync() bool {
	if len(g.Members) == 0 || g.NeedsMaster {
		return false
	}
	return g.Mode != ModeMasterSlave || g.MasterMemberID != nil
}

// CreateGroupRequest carries the input of SyncManager.CreateGroup.
type CreateGroupRequest struct {
	Name  string    `json:"name"`
	Mode  SyncMode  `json:"mode"`
	Owner NewMember `json:"owner"`
	// OwnerAsMaster designates the owner as master. Required for ModeMasterSlave.
	OwnerAsMaster bool `json:"owner_as_master"`
}

// SetModeRequest carries the input of SyncManager.SetMode.
type SetModeRequest struct {
	Mode           SyncMode `json:"mode"`
	MasterMemberID *int64   `json:"master_member_id,omitempty"`
}

// GroupHealth summarises the sync health of a single group.
type GroupHealth struct {
	GroupID     int64      `json:"group_id"`
	GroupName   string     `json:"group_name"`
	MemberCount int        `json:"member_count"`
	LastSyncAt  *time.Time `json:"last_sync_at,omitempty"`
	Status      string     `json:"status"`
}

// Health statuses reported by GroupHealth.
const (
	HealthHealthy     = "healthy"
	HealthNoMembers   = "no_members"
	HealthNeedsMaster = "needs_master"
	HealthDegraded    = "degraded"
)

// HealthReport is the health of every group known to the manager.
type HealthReport struct {
	TotalGroups int           `json:"total_groups"`
	Groups      []GroupHealth `json:"groups"`
}

// Healthy reports whether every group in the report is healthy.
func (h HealthReport) Healthy() bool {
	for _, g := range h.Groups {
		if g.Status != HealthHealthy {
			return false
		}
	}
	return true
}
