package store

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

import (
	"context"

	"github.com/MKhiriev/go-list-sync/models"
)

// GroupRepository persists sync groups and their members.
//
// Members of every returned group are ordered master first, then by join
// time.
type GroupRepository interface {
	// CreateGroup stores group together with its first member. When
	// ownerAsMaster is set the owner becomes the master. Returns
	// ErrGroupCodeTaken when group.Code collides and ErrMemberAlreadyExists
	// when the owner's list is already shared.
	CreateGroup(ctx context.Context, group models.SyncGroup, owner models.Member, ownerAsMaster bool) (models.SyncGroup, error)

	GetGroup(ctx context.Context, groupID int64) (models.SyncGroup, error)
	GetGroupByCode(ctx context.Context, code string) (models.SyncGroup, error)
	ListGroups(ctx context.Context) ([]models.SyncGroup, error)
	ListGroupsForAccount(ctx context.Context, accountID string) ([]models.SyncGroup, error)

	// SetMode replaces the mode and master of a group and clears its
	// needs-master flag.
	SetMode(ctx context.Context, groupID int64, mode models.SyncMode, masterID *int64) error

	AddMember(ctx context.Context, groupID int64, member models.Member) (models.Member, error)

	// RemoveMember deletes a member atomically with its consequences: the
	// group is deleted when no member remains, and a removed master leaves
	// the group needing a new one.
	RemoveMember(ctx context.Context, groupID, memberID int64) (models.MemberRemoval, error)

	// ClearReauth resets the re-authentication flag of every member bound to
	// accountID.
	ClearReauth(ctx context.Context, accountID string) error
}

// CycleRepository persists what a reconciliation cycle reads and writes.
type CycleRepository interface {
	// Baselines returns the baseline snapshot of every member of the group.
	// Members without a baseline are absent from the map.
	Baselines(ctx context.Context, groupID int64) (map[int64][]string, error)

	// LastTarget returns the content the group converged to in its last
	// committed cycle. ok is false when no cycle committed a target yet.
	LastTarget(ctx context.Context, groupID int64) (target []string, ok bool, err error)

	// CommitCycle writes baselines, member flags, the group target, the
	// result, the history trim and the group's last-sync stamp in a single
	// transaction and
	// returns the id of the stored result. Entries for members that left
	// during the cycle are skipped. Nothing is written on error.
	CommitCycle(ctx context.Context, commit models.CycleCommit) (int64, error)

	// History returns up to limit results of the group, newest first.
	History(ctx context.Context, groupID int64, limit int) ([]models.SyncOperationResult, error)
}

// CredentialRepository persists sealed account credentials.
type CredentialRepository interface {
	// SaveCredential inserts or replaces the credential of an account.
	SaveCredential(ctx context.Context, credential models.Credential) error
	// GetCredential returns ErrNotFound when the account has no credential.
	GetCredential(ctx context.Context, accountID string) (models.Credential, error)
}

// ErrorClassificator maps driver errors of one database engine to an
// [ErrorClassification].
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
