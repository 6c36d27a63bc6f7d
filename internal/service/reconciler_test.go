// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"

	"github.com/MKhiriev/go-list-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func snap(id int64, current, baseline []string) models.MemberSnapshot {
	return models.MemberSnapshot{MemberID: id, Current: current, Baseline: baseline}
}

func items(s ...string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func opsFor(t *testing.T, plan models.ReconcilePlan, memberID int64) models.MemberOperations {
	t.Helper()
	for _, op := range plan.Operations {
		if op.MemberID == memberID {
			return op
		}
	}
	t.Fatalf("no operations for member %d", memberID)
	return models.MemberOperations{}
}

// apply returns current with ops applied, sorted.
func apply(current []string, op models.MemberOperations) []string {
	set := newItemSet(current...)
	for _, item := range op.Remove {
		delete(set, item)
	}
	for _, item := range op.Add {
		set[item] = struct{}{}
	}
	return set.sorted()
}

// ─────────────────────────────────────────────────────────────────────────────
// MASTER_SLAVE
// ─────────────────────────────────────────────────────────────────────────────

func TestReconcile_MasterSlave_Example(t *testing.T) {
	r := NewReconciler()

	plan, err := r.Reconcile(context.Background(), models.ReconcileInput{
		Mode:     models.ModeMasterSlave,
		MasterID: 1,
		Members: []models.MemberSnapshot{
			snap(1, items("A", "B", "D"), items("A", "B", "C")),
			snap(2, items("A", "B", "C"), items("A", "B", "C")),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, items("A", "B", "D"), plan.Target)
	assert.Equal(t, items("D"), plan.Additions)
	assert.Equal(t, items("C"), plan.Removals)

	master := opsFor(t, plan, 1)
	assert.True(t, master.Empty())

	slave := opsFor(t, plan, 2)
	assert.Equal(t, items("D"), slave.Add)
	assert.Equal(t, items("C"), slave.Remove)
	assert.Equal(t, plan.Target, apply(items("A", "B", "C"), slave))
}

func TestReconcile_MasterSlave_SlaveEditsAreOverwritten(t *testing.T) {
	r := NewReconciler()

	plan, err := r.Reconcile(context.Background(), models.ReconcileInput{
		Mode:     models.ModeMasterSlave,
		MasterID: 10,
		Members: []models.MemberSnapshot{
			snap(20, items("A", "X"), items("A", "B")), // slave added X, removed B
			snap(10, items("A", "B"), items("A", "B")),
			snap(30, items(), items()), // new slave with nothing yet
		},
	})
	require.NoError(t, err)

	assert.Equal(t, items("A", "B"), plan.Target)
	assert.Empty(t, plan.Additions)
	assert.Empty(t, plan.Removals)

	slave := opsFor(t, plan, 20)
	assert.Equal(t, items("B"), slave.Add)
	assert.Equal(t, items("X"), slave.Remove)

	fresh := opsFor(t, plan, 30)
	assert.Equal(t, items("A", "B"), fresh.Add)
	assert.Empty(t, fresh.Remove)

	// operations follow input order
	require.Len(t, plan.Operations, 3)
	assert.Equal(t, int64(20), plan.Operations[0].MemberID)
	assert.Equal(t, int64(10), plan.Operations[1].MemberID)
	assert.Equal(t, int64(30), plan.Operations[2].MemberID)
}

func TestReconcile_MasterSlave_MasterMissing(t *testing.T) {
	r := NewReconciler()

	_, err := r.Reconcile(context.Background(), models.ReconcileInput{
		Mode:     models.ModeMasterSlave,
		MasterID: 99,
		Members:  []models.MemberSnapshot{snap(1, items("A"), items("A"))},
	})
	assert.ErrorIs(t, err, ErrInvalidMaster)
	assert.ErrorIs(t, err, ErrValidation)
}

// ─────────────────────────────────────────────────────────────────────────────
// COLLABORATIVE
// ─────────────────────────────────────────────────────────────────────────────

func TestReconcile_Collaborative_Example(t *testing.T) {
	r := NewReconciler()

	plan, err := r.Reconcile(context.Background(), models.ReconcileInput{
		Mode: models.ModeCollaborative,
		Members: []models.MemberSnapshot{
			snap(1, items("A", "B", "C"), items("A", "B")),
			snap(2, items("A"), items("A", "B")),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, items("A", "C"), plan.Target)
	assert.Equal(t, items("C"), plan.Additions)
	assert.Equal(t, items("B"), plan.Removals)

	m1 := opsFor(t, plan, 1)
	assert.Empty(t, m1.Add)
	assert.Equal(t, items("B"), m1.Remove)

	m2 := opsFor(t, plan, 2)
	assert.Equal(t, items("C"), m2.Add)
	assert.Empty(t, m2.Remove)
}

func TestReconcile_Collaborative_RemovalDominates(t *testing.T) {
	r := NewReconciler()

	// member 1 removed X while member 2, who never had it, added it
	plan, err := r.Reconcile(context.Background(), models.ReconcileInput{
		Mode: models.ModeCollaborative,
		Members: []models.MemberSnapshot{
			snap(1, items("A"), items("A", "X")),
			snap(2, items("A", "X"), items("A")),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, items("A"), plan.Target)
	assert.Empty(t, plan.Additions)
	assert.Equal(t, items("X"), plan.Removals)
	assert.Equal(t, items("X"), opsFor(t, plan, 2).Remove)
	assert.True(t, opsFor(t, plan, 1).Empty())
}

func TestReconcile_Collaborative_Convergence(t *testing.T) {
	r := NewReconciler()

	members := []models.MemberSnapshot{
		snap(1, items("A", "B", "E"), items("A", "B", "C")),
		snap(2, items("B", "C", "F"), items("A", "B", "C")),
		snap(3, items("A", "C"), items("A", "C", "D")),
	}
	plan, err := r.Reconcile(context.Background(), models.ReconcileInput{
		Mode:    models.ModeCollaborative,
		Members: members,
	})
	require.NoError(t, err)

	// union of baselines {A,B,C,D} ∪ additions {E,F} minus removals {A,C,D}
	assert.Equal(t, items("B", "E", "F"), plan.Target)

	for _, m := range members {
		got := apply(m.Current, opsFor(t, plan, m.MemberID))
		assert.Equal(t, plan.Target, got, "member %d", m.MemberID)
	}
}

func TestReconcile_Collaborative_SingleMember(t *testing.T) {
	r := NewReconciler()

	plan, err := r.Reconcile(context.Background(), models.ReconcileInput{
		Mode:    models.ModeCollaborative,
		Members: []models.MemberSnapshot{snap(1, items("A", "B"), items("B", "C"))},
	})
	require.NoError(t, err)

	assert.Equal(t, items("A", "B"), plan.Target)
	assert.True(t, opsFor(t, plan, 1).Empty())
}

func TestReconcile_Collaborative_LaggingMemberFollowsLastTarget(t *testing.T) {
	r := NewReconciler()

	// member 1 removed B in a cycle member 2 missed; member 2 still holds
	// the stale baseline {A,B}
	plan, err := r.Reconcile(context.Background(), models.ReconcileInput{
		Mode: models.ModeCollaborative,
		Members: []models.MemberSnapshot{
			snap(1, items("A"), items("A")),
			snap(2, items("A", "B"), items("A", "B")),
		},
		LastTarget:    items("A"),
		HasLastTarget: true,
	})
	require.NoError(t, err)

	assert.Equal(t, items("A"), plan.Target)
	assert.Empty(t, plan.Additions)
	assert.Empty(t, plan.Removals)
	assert.True(t, opsFor(t, plan, 1).Empty())
	assert.Equal(t, items("B"), opsFor(t, plan, 2).Remove)
}

func TestReconcile_Collaborative_LastTargetKeepsNewEdits(t *testing.T) {
	r := NewReconciler()

	members := []models.MemberSnapshot{
		snap(1, items("A", "C"), items("A")),
		snap(2, items("B"), items("A", "B")),
		snap(3, items(), items()),
	}
	plan, err := r.Reconcile(context.Background(), models.ReconcileInput{
		Mode:          models.ModeCollaborative,
		Members:       members,
		LastTarget:    items("A", "D"),
		HasLastTarget: true,
	})
	require.NoError(t, err)

	// last target {A,D} ∪ additions {C} minus removals {A}
	assert.Equal(t, items("C", "D"), plan.Target)
	for _, m := range members {
		got := apply(m.Current, opsFor(t, plan, m.MemberID))
		assert.Equal(t, plan.Target, got, "member %d", m.MemberID)
	}
}

func TestReconcile_Collaborative_EmptyLastTarget(t *testing.T) {
	r := NewReconciler()

	// an empty committed target is not the same as no target: the stale
	// baseline {A} must not come back
	plan, err := r.Reconcile(context.Background(), models.ReconcileInput{
		Mode: models.ModeCollaborative,
		Members: []models.MemberSnapshot{
			snap(1, items(), items()),
			snap(2, items("A"), items("A")),
		},
		LastTarget:    items(),
		HasLastTarget: true,
	})
	require.NoError(t, err)

	assert.Empty(t, plan.Target)
	assert.Equal(t, items("A"), opsFor(t, plan, 2).Remove)
}

// ─────────────────────────────────────────────────────────────────────────────
// Shared properties
// ─────────────────────────────────────────────────────────────────────────────

func TestReconcile_IdempotentAfterConvergence(t *testing.T) {
	r := NewReconciler()

	for _, mode := range []models.SyncMode{models.ModeMasterSlave, models.ModeCollaborative} {
		t.Run(string(mode), func(t *testing.T) {
			first, err := r.Reconcile(context.Background(), models.ReconcileInput{
				Mode:     mode,
				MasterID: 1,
				Members: []models.MemberSnapshot{
					snap(1, items("A", "B", "D"), items("A", "B", "C")),
					snap(2, items("A", "B", "C", "E"), items("A", "B", "C")),
				},
			})
			require.NoError(t, err)

			// every member now holds the target and records it as baseline
			second, err := r.Reconcile(context.Background(), models.ReconcileInput{
				Mode:     mode,
				MasterID: 1,
				Members: []models.MemberSnapshot{
					snap(1, first.Target, first.Target),
					snap(2, first.Target, first.Target),
				},
			})
			require.NoError(t, err)

			assert.Equal(t, first.Target, second.Target)
			for _, op := range second.Operations {
				assert.True(t, op.Empty(), "member %d", op.MemberID)
			}
		})
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	r := NewReconciler()
	input := models.ReconcileInput{
		Mode: models.ModeCollaborative,
		Members: []models.MemberSnapshot{
			snap(1, items("z", "y", "x", "n"), items("x", "m")),
			snap(2, items("m", "q", "a"), items("x", "m")),
		},
	}

	want, err := r.Reconcile(context.Background(), input)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		got, err := r.Reconcile(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.IsIncreasing(t, want.Target)
}

func TestReconcile_InvalidMode(t *testing.T) {
	_, err := NewReconciler().Reconcile(context.Background(), models.ReconcileInput{Mode: "BROADCAST"})
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestReconcile_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReconciler().Reconcile(ctx, models.ReconcileInput{
		Mode:    models.ModeCollaborative,
		Members: []models.MemberSnapshot{snap(1, items("A"), items())},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReconcile_NoMembers(t *testing.T) {
	plan, err := NewReconciler().Reconcile(context.Background(), models.ReconcileInput{Mode: models.ModeCollaborative})
	require.NoError(t, err)
	assert.Empty(t, plan.Target)
	assert.Empty(t, plan.Operations)
}
