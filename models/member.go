package models

import (
	"fmt"
	"time"
)

// ListRef identifies exactly one external list.
type ListRef struct {
	ListID string `json:"list_id"`
	Owner  string `json:"owner"`
	URL    string `json:"url,omitempty"`
}

// String returns "owner/list_id".
func (l ListRef) String() string {
	return l.Owner + "/" + l.ListID
}

// Member binds an account and one of its lists to a sync group.
type Member struct {
	ID          int64     `json:"id"`
	GroupID     int64     `json:"group_id"`
	AccountID   string    `json:"account_id"`
	DisplayName string    `json:"display_name"`
	List        ListRef   `json:"list"`
	JoinedAt    time.Time `json:"joined_at"`

	// NeedsReauth is raised when the account credential was rejected or could
	// not be decrypted. It is cleared by a successful cycle or a new credential.
	NeedsReauth bool   `json:"needs_reauth"`
	LastError   string `json:"last_error,omitempty"`
}

// NewMember is the input for creating or joining a group.
type NewMember struct {
	AccountID   string  `json:"account_id"`
	DisplayName string  `json:"display_name"`
	List        ListRef `json:"list"`
}

// Account is an account with its credential decrypted. It only lives inside
// a single adapter call.
type Account struct {
	ID     string
	Secret string
}

// String implements fmt.Stringer without exposing the secret.
func (a Account) String() string {
	return fmt.Sprintf("Account{ID: %s}", a.ID)
}

// Credential is the persisted, sealed credential of an account.
type Credential struct {
	AccountID  string    `json:"account_id"`
	Ciphertext []byte    `json:"-"`
	KeyVersion int       `json:"key_version"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MemberRemoval reports the consequences of removing a member.
type MemberRemoval struct {
	Member        Member `json:"member"`
	GroupDeleted  bool   `json:"group_deleted"`
	MasterRemoved bool   `json:"master_removed"`
}
