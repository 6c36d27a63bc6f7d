package service

import (
	"errors"
	"fmt"
)

// Taxonomy roots. Every error returned by the services wraps one of them
// (or adapter.ErrAdapter / config.ErrConfig from their own packages).
var (
	// ErrValidation marks a rejected group or member operation.
	ErrValidation = errors.New("validation error")
	// ErrCredential marks a credential that cannot be used and requires the
	// account to re-authenticate.
	ErrCredential = errors.New("credential error")
	// ErrPersistence marks a storage failure. A cycle that hits it fails
	// closed and leaves prior state unchanged.
	ErrPersistence = errors.New("persistence error")
)

var (
	ErrInvalidMode    = fmt.Errorf("%w: invalid mode", ErrValidation)
	ErrInvalidMaster  = fmt.Errorf("%w: invalid master", ErrValidation)
	ErrGroupNotFound  = fmt.Errorf("%w: group not found", ErrValidation)
	ErrAlreadyMember  = fmt.Errorf("%w: already a member", ErrValidation)
	ErrMemberNotFound = fmt.Errorf("%w: member not found", ErrValidation)
	ErrInvalidInput   = fmt.Errorf("%w: invalid input", ErrValidation)
	// ErrNeedsMaster is returned when a MASTER_SLAVE group lost its master;
	// cycles are refused until SetMode designates a new one.
	ErrNeedsMaster = fmt.Errorf("%w: group needs a master", ErrValidation)
	// ErrForbidden is returned when the caller is not a member of the group.
	ErrForbidden = fmt.Errorf("%w: not a member of the group", ErrValidation)
)

var (
	ErrNoCredential     = fmt.Errorf("%w: no credential stored", ErrCredential)
	ErrCredentialSealed = fmt.Errorf("%w: credential cannot be decrypted", ErrCredential)
)

var (
	// ErrShuttingDown is returned by cycle operations after Shutdown started.
	ErrShuttingDown = errors.New("sync manager is shutting down")

	// ErrLockUnavailable is returned when the distributed group lock could
	// not be queried.
	ErrLockUnavailable = errors.New("group lock unavailable")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
)
