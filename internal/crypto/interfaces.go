package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/vault_mock.go -package=mock

// Vault seals third-party credentials at rest. Key material is loaded once
// and is read-only afterwards, so a Vault is safe for concurrent use.
type Vault interface {
	// Encrypt seals plaintext with the newest key version and returns the
	// ciphertext (nonce || sealed data) together with that version.
	Encrypt(plaintext []byte) (ciphertext []byte, keyVersion int, err error)

	// Decrypt opens ciphertext sealed with keyVersion. Any integrity failure,
	// unknown version or truncated input returns ErrDecryptionFailed.
	Decrypt(ciphertext []byte, keyVersion int) ([]byte, error)

	// CurrentVersion reports the key version used by Encrypt.
	CurrentVersion() int
}
