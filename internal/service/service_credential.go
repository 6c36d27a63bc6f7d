package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-list-sync/internal/crypto"
	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/internal/store"
	"github.com/MKhiriev/go-list-sync/models"
)

// credentialService is the concrete implementation of CredentialService.
// Secrets are sealed by the vault before they reach the repository and are
// opened only when an adapter call needs them.
type credentialService struct {
	vault       crypto.Vault
	credentials store.CredentialRepository
	groups      store.GroupRepository

	logger *logger.Logger
}

// NewCredentialService constructs a CredentialService. groups is used to
// clear the re-authentication flag of an account that stores a new secret.
func NewCredentialService(vault crypto.Vault, credentials store.CredentialRepository, groups store.GroupRepository, logger *logger.Logger) CredentialService {
	return &credentialService{
		vault:       vault,
		credentials: credentials,
		groups:      groups,
		logger:      logger,
	}
}

// StoreCredential seals secret with the current key version and replaces the
// stored credential of accountID.
func (s *credentialService) StoreCredential(ctx context.Context, accountID, secret string) error {
	log := logger.FromContext(ctx)

	accountID = strings.TrimSpace(accountID)
	if accountID == "" || secret == "" {
		return fmt.Errorf("%w: account id and secret are required", ErrInvalidInput)
	}

	ciphertext, version, err := s.vault.Encrypt([]byte(secret))
	if err != nil {
		log.Err(err).Str("account_id", accountID).Msg("error sealing credential")
		return fmt.Errorf("%w: %w", ErrCredentialSealed, err)
	}

	err = s.credentials.SaveCredential(ctx, models.Credential{
		AccountID:  accountID,
		Ciphertext: ciphertext,
		KeyVersion: version,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if err = s.groups.ClearReauth(ctx, accountID); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	log.Info().Str("account_id", accountID).Int("key_version", version).Msg("credential stored")
	return nil
}

// Account opens the stored credential of accountID. The returned secret must
// not outlive the adapter call it was requested for.
func (s *credentialService) Account(ctx context.Context, accountID string) (models.Account, error) {
	credential, err := s.credentials.GetCredential(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Account{}, fmt.Errorf("%w: account %s", ErrNoCredential, accountID)
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	plaintext, err := s.vault.Decrypt(credential.Ciphertext, credential.KeyVersion)
	if err != nil {
		logger.FromContext(ctx).Warn().Str("account_id", accountID).Int("key_version", credential.KeyVersion).Msg("credential cannot be decrypted")
		return models.Account{}, fmt.Errorf("%w: %w", ErrCredentialSealed, err)
	}
	defer clear(plaintext)

	return models.Account{ID: accountID, Secret: string(plaintext)}, nil
}
