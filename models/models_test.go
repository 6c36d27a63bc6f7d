package models

import (
	"fmt"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

func TestSyncGroup_ReadyToSync(t *testing.T) {
	members := []Member{{ID: 1}, {ID: 2}}

	tests := []struct {
		name  string
		group SyncGroup
		want  bool
	}{
		{name: "master slave with master", group: SyncGroup{Mode: ModeMasterSlave, MasterMemberID: ptr(1), Members: members}, want: true},
		{name: "master slave without master", group: SyncGroup{Mode: ModeMasterSlave, Members: members}, want: false},
		{name: "master left", group: SyncGroup{Mode: ModeMasterSlave, MasterMemberID: ptr(1), NeedsMaster: true, Members: members}, want: false},
		{name: "collaborative", group: SyncGroup{Mode: ModeCollaborative, Members: members}, want: true},
		{name: "no members", group: SyncGroup{Mode: ModeCollaborative}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.group.ReadyToSync())
		})
	}
}

func TestSyncGroup_IsMaster(t *testing.T) {
	g := SyncGroup{MasterMemberID: ptr(3)}

	assert.True(t, g.IsMaster(3))
	assert.False(t, g.IsMaster(4))
	assert.False(t, SyncGroup{}.IsMaster(0))
}

func TestSyncMode_Valid(t *testing.T) {
	assert.True(t, ModeMasterSlave.Valid())
	assert.True(t, ModeCollaborative.Valid())
	assert.False(t, SyncMode("master_slave").Valid())
	assert.False(t, SyncMode("").Valid())
}

func TestHealthReport_Healthy(t *testing.T) {
	assert.True(t, HealthReport{}.Healthy())
	assert.True(t, HealthReport{Groups: []GroupHealth{{Status: HealthHealthy}}}.Healthy())
	assert.False(t, HealthReport{Groups: []GroupHealth{{Status: HealthHealthy}, {Status: HealthDegraded}}}.Healthy())
}

func TestMemberOperations_Empty(t *testing.T) {
	assert.True(t, MemberOperations{MemberID: 1}.Empty())
	assert.False(t, MemberOperations{Add: []string{"A"}}.Empty())
	assert.False(t, MemberOperations{Remove: []string{"B"}}.Empty())
}

func TestAccount_StringHidesSecret(t *testing.T) {
	a := Account{ID: "alice", Secret: "hunter2"}

	assert.Equal(t, "Account{ID: alice}", a.String())
	assert.NotContains(t, fmt.Sprintf("%v", a), "hunter2")
}

func TestListRef_String(t *testing.T) {
	assert.Equal(t, "alice/watchlist", ListRef{Owner: "alice", ListID: "watchlist"}.String())
}

func TestAppBuildInfo_String(t *testing.T) {
	assert.Equal(t, "version=1.0.0 date=N/A commit=abc", NewAppBuildInfo("1.0.0", "", "abc").String())
}

func TestToken_GetAccountID(t *testing.T) {
	tok := &Token{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}}
	id, err := tok.GetAccountID()
	require.NoError(t, err)
	assert.Equal(t, "alice", id)

	_, err = (&Token{}).GetAccountID()
	assert.Error(t, err)
}
