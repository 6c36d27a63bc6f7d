package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/models"
)

// credentialRepository is the SQL implementation of [CredentialRepository].
// It only ever sees sealed credentials.
type credentialRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewCredentialRepository constructs a [CredentialRepository] backed by db.
func NewCredentialRepository(db *DB, logger *logger.Logger) CredentialRepository {
	logger.Debug().Msg("creating credential repository")
	return &credentialRepository{
		db:     db,
		logger: logger,
	}
}

func (r *credentialRepository) SaveCredential(ctx context.Context, credential models.Credential) error {
	if credential.UpdatedAt.IsZero() {
		credential.UpdatedAt = utcNow()
	}

	q := buildUpsertCredentialQuery(r.db.builder, credential.AccountID, credential.Ciphertext, credential.KeyVersion, credential.UpdatedAt)
	if _, err := exec(ctx, r.db, q); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*credentialRepository.SaveCredential").Str("account_id", credential.AccountID).Msg("error saving credential")
		return err
	}
	return nil
}

func (r *credentialRepository) GetCredential(ctx context.Context, accountID string) (models.Credential, error) {
	row, err := queryRow(ctx, r.db, buildSelectCredentialQuery(r.db.builder, accountID))
	if err != nil {
		return models.Credential{}, err
	}

	var c models.Credential
	if err := row.Scan(&c.AccountID, &c.Ciphertext, &c.KeyVersion, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Credential{}, ErrNotFound
		}
		logger.FromContext(ctx).Err(err).Str("func", "*credentialRepository.GetCredential").Str("account_id", accountID).Msg("error loading credential")
		return models.Credential{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return c, nil
}
