// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/MKhiriev/go-list-sync/models"
)

// reconciler is the concrete implementation of Reconciler. It is stateless:
// the plan depends on the input only, and every set in the output is sorted
// so identical inputs always yield identical plans.
type reconciler struct{}

// NewReconciler constructs a Reconciler.
func NewReconciler() Reconciler {
	return &reconciler{}
}

// Reconcile implements Reconciler.
//
// Only successfully fetched members take part; a member missing from
// input.Members is left alone. ctx is checked between members so that very
// large groups can be abandoned early.
func (r *reconciler) Reconcile(ctx context.Context, input models.ReconcileInput) (models.ReconcilePlan, error) {
	switch input.Mode {
	case models.ModeMasterSlave:
		return r.masterSlave(ctx, input)
	case models.ModeCollaborative:
		return r.collaborative(ctx, input)
	default:
		return models.ReconcilePlan{}, fmt.Errorf("%w: %q", ErrInvalidMode, input.Mode)
	}
}

// masterSlave makes the master's current content the target. Slaves get
// whatever operations bring them to that exact content, so their own edits
// are overwritten.
func (r *reconciler) masterSlave(ctx context.Context, input models.ReconcileInput) (models.ReconcilePlan, error) {
	idx := slices.IndexFunc(input.Members, func(m models.MemberSnapshot) bool {
		return m.MemberID == input.MasterID
	})
	if idx < 0 {
		return models.ReconcilePlan{}, fmt.Errorf("%w: master %d has no snapshot", ErrInvalidMaster, input.MasterID)
	}
	master := input.Members[idx]

	target := newItemSet(master.Current...)
	base := newItemSet(master.Baseline...)

	plan := models.ReconcilePlan{
		Target:     target.sorted(),
		Additions:  target.minus(base).sorted(),
		Removals:   base.minus(target).sorted(),
		Operations: make([]models.MemberOperations, 0, len(input.Members)),
	}

	for _, m := range input.Members {
		if err := ctx.Err(); err != nil {
			return models.ReconcilePlan{}, err
		}
		if m.MemberID == input.MasterID {
			plan.Operations = append(plan.Operations, models.MemberOperations{MemberID: m.MemberID})
			continue
		}
		plan.Operations = append(plan.Operations, converge(m, target))
	}

	return plan, nil
}

// collaborative merges every member's changes relative to its own baseline.
//
//	additions = ∪ (current_i − baseline_i)
//	removals  = ∪ (baseline_i − current_i)
//	target    = (last target ∪ additions) − removals
//
// An item both added and removed in the same cycle ends up removed. The
// last committed target stands in for the baselines of members that missed
// earlier cycles, so an item such a member still holds is not brought back
// after the others removed it. Without a committed target the union of all
// baselines is used.
func (r *reconciler) collaborative(ctx context.Context, input models.ReconcileInput) (models.ReconcilePlan, error) {
	additions := newItemSet()
	removals := newItemSet()
	known := newItemSet()

	for _, m := range input.Members {
		if err := ctx.Err(); err != nil {
			return models.ReconcilePlan{}, err
		}
		current := newItemSet(m.Current...)
		base := newItemSet(m.Baseline...)

		additions.addAll(current.minus(base))
		removals.addAll(base.minus(current))
		if !input.HasLastTarget {
			known.addAll(base)
		}
	}
	if input.HasLastTarget {
		known.addAll(newItemSet(input.LastTarget...))
	}

	known.addAll(additions)
	target := known.minus(removals)

	plan := models.ReconcilePlan{
		Target:     target.sorted(),
		Additions:  additions.minus(removals).sorted(),
		Removals:   removals.sorted(),
		Operations: make([]models.MemberOperations, 0, len(input.Members)),
	}
	for _, m := range input.Members {
		plan.Operations = append(plan.Operations, converge(m, target))
	}

	return plan, nil
}

func converge(m models.MemberSnapshot, target itemSet) models.MemberOperations {
	current := newItemSet(m.Current...)
	return models.MemberOperations{
		MemberID: m.MemberID,
		Add:      target.minus(current).sorted(),
		Remove:   current.minus(target).sorted(),
	}
}

type itemSet map[string]struct{}

func newItemSet(items ...string) itemSet {
	s := make(itemSet, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

func (s itemSet) addAll(other itemSet) {
	for item := range other {
		s[item] = struct{}{}
	}
}

func (s itemSet) minus(other itemSet) itemSet {
	out := make(itemSet)
	for item := range s {
		if _, ok := other[item]; !ok {
			out[item] = struct{}{}
		}
	}
	return out
}

// sorted returns the items in ascending order, never nil.
func (s itemSet) sorted() []string {
	out := make([]string, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	slices.Sort(out)
	return out
}
