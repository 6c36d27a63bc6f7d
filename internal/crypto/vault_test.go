package crypto

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeys(t *testing.T, versions ...int) map[int][]byte {
	t.Helper()
	keys := make(map[int][]byte, len(versions))
	for _, v := range versions {
		keys[v] = bytes.Repeat([]byte{byte(v)}, MinKeyMaterial)
	}
	return keys
}

func newTestVault(t *testing.T, versions ...int) *KeyVault {
	t.Helper()
	v, err := NewVaultFromKeys(testKeys(t, versions...))
	require.NoError(t, err)
	return v
}

func TestVault_RoundTrip(t *testing.T) {
	v := newTestVault(t, 1)

	secrets := [][]byte{
		[]byte("session=abc123"),
		{},
		bytes.Repeat([]byte("x"), 4096),
	}
	for _, secret := range secrets {
		ct, version, err := v.Encrypt(secret)
		require.NoError(t, err)
		assert.Equal(t, 1, version)

		pt, err := v.Decrypt(ct, version)
		require.NoError(t, err)
		assert.Equal(t, string(secret), string(pt))
	}
}

func TestVault_EncryptIsRandomized(t *testing.T) {
	v := newTestVault(t, 1)

	a, _, err := v.Encrypt([]byte("same"))
	require.NoError(t, err)
	b, _, err := v.Encrypt([]byte("same"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVault_TamperedCiphertext(t *testing.T) {
	v := newTestVault(t, 1)
	ct, version, err := v.Encrypt([]byte("token"))
	require.NoError(t, err)

	for i := range ct {
		tampered := bytes.Clone(ct)
		tampered[i] ^= 0x01

		_, err := v.Decrypt(tampered, version)
		require.ErrorIs(t, err, ErrDecryptionFailed, "byte %d", i)
	}
}

func TestVault_TruncatedCiphertext(t *testing.T) {
	v := newTestVault(t, 1)

	_, err := v.Decrypt([]byte{1, 2, 3}, 1)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestVault_UnknownVersion(t *testing.T) {
	v := newTestVault(t, 1)
	ct, _, err := v.Encrypt([]byte("token"))
	require.NoError(t, err)

	_, err = v.Decrypt(ct, 2)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestVault_WrongKey(t *testing.T) {
	v1 := newTestVault(t, 1)
	other, err := NewVaultFromKeys(map[int][]byte{1: bytes.Repeat([]byte{0xFF}, MinKeyMaterial)})
	require.NoError(t, err)

	ct, version, err := v1.Encrypt([]byte("token"))
	require.NoError(t, err)

	_, err = other.Decrypt(ct, version)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestVault_VersionIsBound(t *testing.T) {
	// identical material under two versions still derives distinct keys
	material := bytes.Repeat([]byte{7}, MinKeyMaterial)
	v, err := NewVaultFromKeys(map[int][]byte{1: material, 2: material})
	require.NoError(t, err)

	ct, version, err := v.Encrypt([]byte("token"))
	require.NoError(t, err)
	require.Equal(t, 2, version)

	_, err = v.Decrypt(ct, 1)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestVault_Rotation(t *testing.T) {
	old := newTestVault(t, 1)
	ct, version, err := old.Encrypt([]byte("legacy"))
	require.NoError(t, err)

	rotated := newTestVault(t, 1, 2)
	assert.Equal(t, 2, rotated.CurrentVersion())
	assert.Equal(t, []int{1, 2}, rotated.Versions())

	pt, err := rotated.Decrypt(ct, version)
	require.NoError(t, err)
	assert.Equal(t, "legacy", string(pt))

	_, newVersion, err := rotated.Encrypt([]byte("fresh"))
	require.NoError(t, err)
	assert.Equal(t, 2, newVersion)
}

func TestNewVaultFromKeys_Errors(t *testing.T) {
	tests := []struct {
		name string
		keys map[int][]byte
	}{
		{name: "empty", keys: map[int][]byte{}},
		{name: "short key", keys: map[int][]byte{1: []byte("short")}},
		{name: "zero version", keys: map[int][]byte{0: bytes.Repeat([]byte{1}, MinKeyMaterial)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVaultFromKeys(tt.keys)
			assert.Nil(t, v)
			assert.ErrorIs(t, err, ErrKeyUnavailable)
		})
	}
}

func TestNewVault_MissingFile(t *testing.T) {
	v, err := NewVault(filepath.Join(t.TempDir(), "missing.key"))
	assert.Nil(t, v)
	assert.ErrorIs(t, err, ErrKeyUnavailable)
}

func TestNewVault_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.key")
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{9}, 48))
	require.NoError(t, os.WriteFile(path, []byte(key+"\n"), 0o600))

	v, err := NewVault(path)
	require.NoError(t, err)
	assert.Equal(t, 1, v.CurrentVersion())
}
