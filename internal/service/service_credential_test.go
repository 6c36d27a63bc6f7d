package service

import (
	"context"
	"errors"
	"testing"

	"github.com/MKhiriev/go-list-sync/internal/crypto"
	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/internal/mock"
	"github.com/MKhiriev/go-list-sync/internal/store"
	"github.com/MKhiriev/go-list-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestCredentialSvc(t *testing.T) (CredentialService, *mock.MockVault, *mock.MockCredentialRepository, *mock.MockGroupRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)

	vault := mock.NewMockVault(ctrl)
	credentials := mock.NewMockCredentialRepository(ctrl)
	groups := mock.NewMockGroupRepository(ctrl)

	return NewCredentialService(vault, credentials, groups, logger.Nop()), vault, credentials, groups
}

// ── StoreCredential ─────────────────────────────────────────────────────────

func TestCredentialService_StoreCredential_Success(t *testing.T) {
	svc, vault, credentials, groups := newTestCredentialSvc(t)
	ctx := context.Background()

	gomock.InOrder(
		vault.EXPECT().Encrypt([]byte("s3cret")).Return([]byte("sealed"), 2, nil),
		credentials.EXPECT().SaveCredential(ctx, models.Credential{
			AccountID:  "alice",
			Ciphertext: []byte("sealed"),
			KeyVersion: 2,
		}).Return(nil),
		groups.EXPECT().ClearReauth(ctx, "alice").Return(nil),
	)

	require.NoError(t, svc.StoreCredential(ctx, " alice ", "s3cret"))
}

func TestCredentialService_StoreCredential_InvalidInput(t *testing.T) {
	svc, _, _, _ := newTestCredentialSvc(t)

	assert.ErrorIs(t, svc.StoreCredential(context.Background(), "", "s3cret"), ErrInvalidInput)
	assert.ErrorIs(t, svc.StoreCredential(context.Background(), "alice", ""), ErrInvalidInput)
}

func TestCredentialService_StoreCredential_EncryptError(t *testing.T) {
	svc, vault, _, _ := newTestCredentialSvc(t)

	vault.EXPECT().Encrypt(gomock.Any()).Return(nil, 0, crypto.ErrKeyUnavailable)

	err := svc.StoreCredential(context.Background(), "alice", "s3cret")
	assert.ErrorIs(t, err, ErrCredentialSealed)
	assert.ErrorIs(t, err, crypto.ErrKeyUnavailable)
}

func TestCredentialService_StoreCredential_StoreErrors(t *testing.T) {
	t.Run("save", func(t *testing.T) {
		svc, vault, credentials, _ := newTestCredentialSvc(t)
		vault.EXPECT().Encrypt(gomock.Any()).Return([]byte("sealed"), 1, nil)
		credentials.EXPECT().SaveCredential(gomock.Any(), gomock.Any()).Return(errors.New("read-only"))

		assert.ErrorIs(t, svc.StoreCredential(context.Background(), "alice", "s3cret"), ErrPersistence)
	})

	t.Run("clear reauth", func(t *testing.T) {
		svc, vault, credentials, groups := newTestCredentialSvc(t)
		vault.EXPECT().Encrypt(gomock.Any()).Return([]byte("sealed"), 1, nil)
		credentials.EXPECT().SaveCredential(gomock.Any(), gomock.Any()).Return(nil)
		groups.EXPECT().ClearReauth(gomock.Any(), "alice").Return(errors.New("read-only"))

		assert.ErrorIs(t, svc.StoreCredential(context.Background(), "alice", "s3cret"), ErrPersistence)
	})
}

// ── Account ──────────────────────────────────────────────────────────────────

func TestCredentialService_Account_Success(t *testing.T) {
	svc, vault, credentials, _ := newTestCredentialSvc(t)
	ctx := context.Background()

	credentials.EXPECT().GetCredential(ctx, "alice").Return(models.Credential{
		AccountID: "alice", Ciphertext: []byte("sealed"), KeyVersion: 3,
	}, nil)
	vault.EXPECT().Decrypt([]byte("sealed"), 3).Return([]byte("s3cret"), nil)

	account, err := svc.Account(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.Account{ID: "alice", Secret: "s3cret"}, account)
	assert.NotContains(t, account.String(), "s3cret")
}

func TestCredentialService_Account_Errors(t *testing.T) {
	tests := []struct {
		name       string
		storeErr   error
		decryptErr error
		wantErr    error
		reauth     bool
	}{
		{"missing", store.ErrNotFound, nil, ErrNoCredential, true},
		{"store failure", errors.New("timeout"), nil, ErrPersistence, false},
		{"decryption failure", nil, crypto.ErrDecryptionFailed, ErrCredentialSealed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, vault, credentials, _ := newTestCredentialSvc(t)

			credentials.EXPECT().GetCredential(gomock.Any(), "alice").Return(models.Credential{AccountID: "alice", KeyVersion: 1}, tt.storeErr)
			if tt.storeErr == nil {
				vault.EXPECT().Decrypt(gomock.Any(), 1).Return(nil, tt.decryptErr)
			}

			_, err := svc.Account(context.Background(), "alice")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.reauth, errors.Is(err, ErrCredential))
		})
	}
}
