package models

import "time"

// SyncStatus is the overall outcome of a cycle.
type SyncStatus string

const (
	StatusSuccess SyncStatus = "SUCCESS"
	StatusPartial SyncStatus = "PARTIAL"
	StatusFailed  SyncStatus = "FAILED"
)

// FailureStage tells which step of a cycle failed for a member.
type FailureStage string

const (
	StageCredential FailureStage = "credential"
	StageFetch      FailureStage = "fetch"
	StageApply      FailureStage = "apply"
	StagePersist    FailureStage = "persist"
)

// MemberResult is the per-member item delta applied in a cycle.
type MemberResult struct {
	MemberID int64 `json:"member_id"`
	Added    int   `json:"added"`
	Removed  int   `json:"removed"`
}

// MemberFailure records why a member did not complete a cycle.
type MemberFailure struct {
	MemberID int64        `json:"member_id"`
	Stage    FailureStage `json:"stage"`
	Kind     string       `json:"kind"`
	Error    string       `json:"error"`
}

// SyncOperationResult is the immutable outcome of one cycle for one group.
type SyncOperationResult struct {
	ID         int64           `json:"id"`
	CycleID    string          `json:"cycle_id"`
	GroupID    int64           `json:"group_id"`
	Status     SyncStatus      `json:"status"`
	Members    []MemberResult  `json:"members"`
	Failures   []MemberFailure `json:"failures,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// MemberBaseline is the new baseline snapshot of a member.
type MemberBaseline struct {
	MemberID int64
	Items    []string
}

// MemberFlags is the error state of a member after a cycle.
type MemberFlags struct {
	MemberID    int64
	NeedsReauth bool
	LastError   string
}

// CycleCommit is everything a cycle writes. It is persisted atomically.
type CycleCommit struct {
	GroupID   int64
	Baselines []MemberBaseline
	Flags     []MemberFlags
	// Target replaces the group's committed target when HasTarget is set.
	Target     []string
	HasTarget  bool
	Result     SyncOperationResult
	MaxHistory int
}
