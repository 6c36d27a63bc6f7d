package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClassification tells a repository how to treat a failed statement.
type ErrorClassification int

const (
	// NonRetryable is the classification of every error not listed below.
	NonRetryable ErrorClassification = iota
	// Retryable errors may succeed when the transaction runs again.
	Retryable
	// Conflict is a unique violation. Repositories map it to a domain
	// "already exists" error.
	Conflict
)

// PostgresErrorClassifier implements [ErrorClassificator] for errors
// returned by the pgx driver.
type PostgresErrorClassifier struct{}

func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

// Classify implements [ErrorClassificator].
//
// Connection exceptions (class 08), transaction rollbacks (class 40) and
// operator intervention (class 57) are retryable. 23505 is a conflict.
func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return NonRetryable
	}

	switch code := pgErr.Code; {
	case code == pgerrcode.UniqueViolation:
		return Conflict
	case pgerrcode.IsConnectionException(code),
		pgerrcode.IsTransactionRollback(code),
		pgerrcode.IsOperatorIntervention(code):
		return Retryable
	}
	return NonRetryable
}
