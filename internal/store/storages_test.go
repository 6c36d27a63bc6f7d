package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-list-sync/internal/config"
	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/models"
)

func TestIsPostgresDSN(t *testing.T) {
	assert.True(t, IsPostgresDSN("postgres://u:p@localhost:5432/db"))
	assert.True(t, IsPostgresDSN("postgresql://localhost/db"))
	assert.False(t, IsPostgresDSN("/var/lib/list-sync/state.db"))
	assert.False(t, IsPostgresDSN("file:state.db"))
}

func TestNewStorages_Memory(t *testing.T) {
	s, err := NewStorages(context.Background(), config.Storage{}, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, "memory", s.Backend)
	assert.NoError(t, s.Close())
}

func TestNewStorages_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := NewStorages(ctx, config.Storage{DB: config.DB{DSN: path}}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	assert.Equal(t, "sqlite", s.Backend)

	g, err := s.Groups.CreateGroup(ctx,
		models.SyncGroup{Code: "ABCD1234", Name: "films", Mode: models.ModeCollaborative, CreatedAt: testCreated},
		testMember("alice", "watchlist", testJoined), false)
	require.NoError(t, err)

	bob, err := s.Groups.AddMember(ctx, g.ID, testMember("bob", "watchlist", testJoined.Add(time.Minute)))
	require.NoError(t, err)

	_, err = s.Groups.AddMember(ctx, g.ID, testMember("bob", "other", testJoined.Add(2*time.Minute)))
	assert.ErrorIs(t, err, ErrMemberAlreadyExists)

	_, err = s.Cycles.CommitCycle(ctx, models.CycleCommit{
		GroupID:   g.ID,
		Baselines: []models.MemberBaseline{{MemberID: bob.ID, Items: []string{"A", "B"}}},
		Result: models.SyncOperationResult{
			CycleID: "c1", Status: models.StatusSuccess, StartedAt: testCreated, FinishedAt: testCreated,
		},
		MaxHistory: 10,
		Target:     []string{"A", "B"},
		HasTarget:  true,
	})
	require.NoError(t, err)

	baselines, err := s.Cycles.Baselines(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, baselines[bob.ID])

	target, ok, err := s.Cycles.LastTarget(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, target)

	history, err := s.Cycles.History(ctx, g.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "c1", history[0].CycleID)
}
