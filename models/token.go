package models

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Token wraps a parsed or freshly signed API token.
//
// The "sub" claim carries the account identifier the caller acts as. AccountID
// is a cached copy of that claim.
type Token struct {
	*jwt.Token `json:"-"`

	jwt.RegisteredClaims

	// SignedString is the compact JWS form sent in the Authorization header.
	SignedString string `json:"token"`

	AccountID string `json:"account_id"`
}

// GetAccountID returns the account identifier from the "sub" claim.
func (t *Token) GetAccountID() (string, error) {
	sub, err := t.GetSubject()
	if err != nil {
		return "", fmt.Errorf("error extracting account ID from token: %w", err)
	}
	if sub == "" {
		return "", errors.New("token has an empty subject")
	}

	return sub, nil
}

// String returns the compact JWS serialization of the token.
func (t *Token) String() string {
	return t.SignedString
}
