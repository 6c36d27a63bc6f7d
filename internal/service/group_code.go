package service

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	groupCodeLength   = 8
	groupCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// newGroupCode returns a random join code of groupCodeLength characters
// drawn from groupCodeAlphabet.
func newGroupCode() (string, error) {
	var b strings.Builder
	b.Grow(groupCodeLength)

	limit := big.NewInt(int64(len(groupCodeAlphabet)))
	for range groupCodeLength {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(groupCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// normalizeCode makes join codes case and whitespace insensitive.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
