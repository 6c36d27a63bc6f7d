package crypto

import "errors"

var (
	// ErrKeyUnavailable is returned when the key file is missing, unreadable
	// or holds no usable key. It is fatal at startup.
	ErrKeyUnavailable = errors.New("vault key unavailable")

	// ErrDecryptionFailed is returned when a ciphertext cannot be opened:
	// tampering, a key mismatch or an unknown key version.
	ErrDecryptionFailed = errors.New("decryption failed")
)
