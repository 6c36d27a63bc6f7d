// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"golang.org/x/crypto/hkdf"
)

// MinKeyMaterial is the minimum decoded length of a key file entry.
const MinKeyMaterial = 32

// KeyVault is the AES-256-GCM implementation of [Vault]. Each key version
// in the key file is expanded with HKDF-SHA256 into its own AES key, and the
// version number is bound to every ciphertext as additional data.
type KeyVault struct {
	aeads   map[int]cipher.AEAD
	current int
}

// NewVault reads the key file at path and builds a [KeyVault] from it.
// Every failure wraps [ErrKeyUnavailable].
func NewVault(path string) (*KeyVault, error) {
	keys, err := ReadKeyFile(path)
	if err != nil {
		return nil, err
	}
	return NewVaultFromKeys(keys)
}

// NewVaultFromKeys builds a [KeyVault] from raw key material indexed by
// version. The highest version becomes the encryption key.
func NewVaultFromKeys(keys map[int][]byte) (*KeyVault, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no keys", ErrKeyUnavailable)
	}

	v := &KeyVault{aeads: make(map[int]cipher.AEAD, len(keys))}
	for version, material := range keys {
		if version < 1 {
			return nil, fmt.Errorf("%w: invalid key version %d", ErrKeyUnavailable, version)
		}
		if len(material) < MinKeyMaterial {
			return nil, fmt.Errorf("%w: key version %d is shorter than %d bytes", ErrKeyUnavailable, version, MinKeyMaterial)
		}

		aead, err := newAEAD(material, version)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrKeyUnavailable, err)
		}
		v.aeads[version] = aead
		if version > v.current {
			v.current = version
		}
	}

	return v, nil
}

func newAEAD(material []byte, version int) (cipher.AEAD, error) {
	info := fmt.Sprintf("list-sync vault v%d", version)
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, material, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt implements [Vault].
func (v *KeyVault) Encrypt(plaintext []byte) ([]byte, int, error) {
	aead := v.aeads[v.current]

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, 0, fmt.Errorf("generate nonce: %w", err)
	}

	// nonce || ciphertext
	sealed := aead.Seal(nonce, nonce, plaintext, versionAAD(v.current))
	return sealed, v.current, nil
}

// Decrypt implements [Vault].
func (v *KeyVault) Decrypt(ciphertext []byte, keyVersion int) ([]byte, error) {
	aead, ok := v.aeads[keyVersion]
	if !ok {
		return nil, fmt.Errorf("%w: unknown key version %d", ErrDecryptionFailed, keyVersion)
	}

	nonceSize := aead.NonceSize()
	if len(ciphertext) < nonceSize+aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := aead.Open(nil, nonce, sealed, versionAAD(keyVersion))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// CurrentVersion implements [Vault].
func (v *KeyVault) CurrentVersion() int {
	return v.current
}

// Versions returns the loaded key versions in ascending order.
func (v *KeyVault) Versions() []int {
	versions := make([]int, 0, len(v.aeads))
	for version := range v.aeads {
		versions = append(versions, version)
	}
	sort.Ints(versions)
	return versions
}

func versionAAD(version int) []byte {
	aad := make([]byte, 8)
	binary.BigEndian.PutUint64(aad, uint64(version))
	return aad
}
