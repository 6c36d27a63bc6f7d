package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrNotFound is returned when a queried record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrGroupNotFound is returned when the addressed sync group does not exist.
	ErrGroupNotFound = errors.New("sync group not found")

	// ErrMemberNotFound is returned when the addressed member is not part of
	// the group.
	ErrMemberNotFound = errors.New("group member not found")

	// ErrMemberAlreadyExists is returned when the account is already a member
	// of the group or the list is already shared in some group.
	ErrMemberAlreadyExists = errors.New("member already exists")

	// ErrGroupCodeTaken is returned when a new group's join code collides
	// with an existing one.
	ErrGroupCodeTaken = errors.New("group code already taken")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning a single result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning during multi-row iteration
	// fails.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrEncodingDetails is returned when a result cannot be serialized to or
	// from its JSON column.
	ErrEncodingDetails = errors.New("failed to encode result details")
)
