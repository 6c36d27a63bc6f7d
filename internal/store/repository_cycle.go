// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/models"
)

// cycleRepository is the SQL implementation of [CycleRepository] over the
// "member_baselines", "group_targets" and "sync_history" tables.
type cycleRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewCycleRepository constructs a [CycleRepository] backed by db.
func NewCycleRepository(db *DB, logger *logger.Logger) CycleRepository {
	logger.Debug().Msg("creating cycle repository")
	return &cycleRepository{
		db:     db,
		logger: logger,
	}
}

// resultDetails is the JSON form of the per-member part of a result.
type resultDetails struct {
	Members  []models.MemberResult  `json:"members"`
	Failures []models.MemberFailure `json:"failures,omitempty"`
}

func (r *cycleRepository) Baselines(ctx context.Context, groupID int64) (map[int64][]string, error) {
	log := logger.FromContext(ctx)

	rows, err := query(ctx, r.db, buildSelectBaselinesQuery(r.db.builder, groupID))
	if err != nil {
		log.Err(err).Str("func", "*cycleRepository.Baselines").Int64("group_id", groupID).Msg("error selecting baselines")
		return nil, err
	}
	defer rows.Close()

	baselines := make(map[int64][]string)
	for rows.Next() {
		var (
			memberID int64
			item     string
		)
		if err := rows.Scan(&memberID, &item); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		baselines[memberID] = append(baselines[memberID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return baselines, nil
}

func (r *cycleRepository) LastTarget(ctx context.Context, groupID int64) ([]string, bool, error) {
	row, err := queryRow(ctx, r.db, buildSelectTargetQuery(r.db.builder, groupID))
	if err != nil {
		return nil, false, err
	}

	var items []byte
	err = row.Scan(&items)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*cycleRepository.LastTarget").Int64("group_id", groupID).Msg("error selecting group target")
		return nil, false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	var target []string
	if err := json.Unmarshal(items, &target); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrEncodingDetails, err)
	}
	return target, true, nil
}

func (r *cycleRepository) CommitCycle(ctx context.Context, commit models.CycleCommit) (int64, error) {
	log := logger.FromContext(ctx)

	details, err := json.Marshal(resultDetails{Members: commit.Result.Members, Failures: commit.Result.Failures})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEncodingDetails, err)
	}

	var target []byte
	if commit.HasTarget {
		items := commit.Target
		if items == nil {
			items = []string{}
		}
		if target, err = json.Marshal(items); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrEncodingDetails, err)
		}
	}

	var resultID int64
	err = r.db.inTx(ctx, func(tx *sql.Tx) error {
		present, err := r.memberIDs(ctx, tx, commit.GroupID)
		if err != nil {
			return err
		}

		for _, baseline := range commit.Baselines {
			if _, ok := present[baseline.MemberID]; !ok {
				continue
			}
			if err := r.replaceBaseline(ctx, tx, baseline); err != nil {
				return err
			}
		}

		for _, flags := range commit.Flags {
			if _, ok := present[flags.MemberID]; !ok {
				continue
			}
			update := r.db.builder.Update(tableMembers).
				Set("needs_reauth", flags.NeedsReauth).
				Set("last_error", flags.LastError).
				Where(sq.Eq{"id": flags.MemberID})
			if _, err := exec(ctx, tx, update); err != nil {
				return err
			}
		}

		// a group without members was deleted during the cycle
		if commit.HasTarget && len(present) > 0 {
			if _, err := exec(ctx, tx, buildUpsertTargetQuery(r.db.builder, commit.GroupID, target, utcNow())); err != nil {
				return err
			}
		}

		res := commit.Result
		row, err := queryRow(ctx, tx, buildInsertHistoryQuery(r.db.builder, commit.GroupID, res.CycleID, string(res.Status), res.StartedAt, res.FinishedAt, details))
		if err != nil {
			return err
		}
		if err := row.Scan(&resultID); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}

		if commit.MaxHistory > 0 {
			if _, err := exec(ctx, tx, buildTrimHistoryQuery(r.db.builder, commit.GroupID, commit.MaxHistory)); err != nil {
				return err
			}
		}

		stamp := r.db.builder.Update(tableGroups).
			Set("last_sync_at", res.FinishedAt).
			Set("last_sync_status", string(res.Status)).
			Where(sq.Eq{"id": commit.GroupID})
		result, err := exec(ctx, tx, stamp)
		if err != nil {
			return err
		}
		return expectAffected(result, ErrGroupNotFound)
	})
	if err != nil {
		log.Err(err).Str("func", "*cycleRepository.CommitCycle").Int64("group_id", commit.GroupID).Msg("error committing cycle")
		return 0, err
	}

	return resultID, nil
}

func (r *cycleRepository) memberIDs(ctx context.Context, tx *sql.Tx, groupID int64) (map[int64]struct{}, error) {
	rows, err := query(ctx, tx, r.db.builder.Select("id").From(tableMembers).Where(sq.Eq{"group_id": groupID}))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return ids, nil
}

func (r *cycleRepository) replaceBaseline(ctx context.Context, tx *sql.Tx, baseline models.MemberBaseline) error {
	if _, err := exec(ctx, tx, r.db.builder.Delete(tableBaselines).Where(sq.Eq{"member_id": baseline.MemberID})); err != nil {
		return err
	}

	for start := 0; start < len(baseline.Items); start += baselineInsertChunk {
		end := min(start+baselineInsertChunk, len(baseline.Items))
		if _, err := exec(ctx, tx, buildInsertBaselineQuery(r.db.builder, baseline.MemberID, baseline.Items[start:end])); err != nil {
			return err
		}
	}
	return nil
}

func (r *cycleRepository) History(ctx context.Context, groupID int64, limit int) ([]models.SyncOperationResult, error) {
	log := logger.FromContext(ctx)

	rows, err := query(ctx, r.db, buildSelectHistoryQuery(r.db.builder, groupID, limit))
	if err != nil {
		log.Err(err).Str("func", "*cycleRepository.History").Int64("group_id", groupID).Msg("error selecting history")
		return nil, err
	}
	defer rows.Close()

	results := make([]models.SyncOperationResult, 0, limit)
	for rows.Next() {
		var (
			res     models.SyncOperationResult
			status  string
			details []byte
		)
		if err := rows.Scan(&res.ID, &res.GroupID, &res.CycleID, &status, &res.StartedAt, &res.FinishedAt, &details); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		res.Status = models.SyncStatus(status)

		var d resultDetails
		if err := json.Unmarshal(details, &d); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncodingDetails, err)
		}
		res.Members, res.Failures = d.Members, d.Failures
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return results, nil
}
