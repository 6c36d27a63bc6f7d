package models

// MemberSnapshot is the reconciliation input of one successfully fetched member.
type MemberSnapshot struct {
	MemberID int64
	Current  []string
	Baseline []string
}

// ReconcileInput is the full input of the reconciler.
type ReconcileInput struct {
	Mode     SyncMode
	MasterID int64
	Members  []MemberSnapshot

	// LastTarget is the content the group converged to in its last
	// committed cycle. COLLABORATIVE mode merges member changes into it;
	// without one (HasLastTarget false) the union of baselines is used.
	LastTarget    []string
	HasLastTarget bool
}

// MemberOperations is the set of changes required for one member's list.
type MemberOperations struct {
	MemberID int64    `json:"member_id"`
	Add      []string `json:"add"`
	Remove   []string `json:"remove"`
}

// Empty reports whether there is nothing to apply.
func (o MemberOperations) Empty() bool {
	return len(o.Add) == 0 && len(o.Remove) == 0
}

// ReconcilePlan is the reconciler output. Target is the content every member
// converges to; Operations follows the order of ReconcileInput.Members.
type ReconcilePlan struct {
	Target     []string           `json:"target"`
	Additions  []string           `json:"additions"`
	Removals   []string           `json:"removals"`
	Operations []MemberOperations `json:"operations"`
}
