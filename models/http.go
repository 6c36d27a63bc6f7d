package models

// JoinGroupRequest is the body of POST /api/groups/join. The joining account
// is taken from the bearer token.
type JoinGroupRequest struct {
	Code        string  `json:"code"`
	DisplayName string  `json:"display_name,omitempty"`
	List        ListRef `json:"list"`
}

// CreateGroupBody is the body of POST /api/groups.
type CreateGroupBody struct {
	Name          string   `json:"name"`
	Mode          SyncMode `json:"mode"`
	DisplayName   string   `json:"display_name,omitempty"`
	List          ListRef  `json:"list"`
	OwnerAsMaster bool     `json:"owner_as_master"`
}

// StoreCredentialRequest is the body of PUT /api/credentials.
type StoreCredentialRequest struct {
	Secret string `json:"secret"`
}

// SyncTriggerResponse is returned by POST /api/groups/{groupID}/sync.
type SyncTriggerResponse struct {
	GroupID  int64  `json:"group_id"`
	Accepted bool   `json:"accepted"`
	Message  string `json:"message,omitempty"`
}

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}
