package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/models"
)

// groupRepository is the SQL implementation of [GroupRepository] over the
// "sync_groups" and "group_members" tables.
type groupRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewGroupRepository constructs a [GroupRepository] backed by db.
func NewGroupRepository(db *DB, logger *logger.Logger) GroupRepository {
	logger.Debug().Msg("creating group repository")
	return &groupRepository{
		db:     db,
		logger: logger,
	}
}

func (r *groupRepository) CreateGroup(ctx context.Context, group models.SyncGroup, owner models.Member, ownerAsMaster bool) (models.SyncGroup, error) {
	log := logger.FromContext(ctx)

	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		row, err := queryRow(ctx, tx, buildInsertGroupQuery(r.db.builder, group.Code, group.Name, string(group.Mode), group.CreatedAt))
		if err != nil {
			return err
		}
		if err := row.Scan(&group.ID); err != nil {
			if r.db.classify(err) == Conflict {
				return ErrGroupCodeTaken
			}
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}

		owner, err = r.insertMember(ctx, tx, group.ID, owner)
		if err != nil {
			return err
		}

		if ownerAsMaster {
			if _, err := exec(ctx, tx, buildUpdateGroupModeQuery(r.db.builder, group.ID, string(group.Mode), &owner.ID)); err != nil {
				return err
			}
			group.MasterMemberID = &owner.ID
		}
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*groupRepository.CreateGroup").Str("code", group.Code).Msg("error creating group")
		return models.SyncGroup{}, err
	}

	group.Members = []models.Member{owner}
	return group, nil
}

func (r *groupRepository) insertMember(ctx context.Context, run runner, groupID int64, member models.Member) (models.Member, error) {
	row, err := queryRow(ctx, run, buildInsertMemberQuery(r.db.builder, groupID,
		member.AccountID, member.DisplayName, member.List.ListID, member.List.Owner, member.List.URL, member.JoinedAt))
	if err != nil {
		return models.Member{}, err
	}
	if err := row.Scan(&member.ID); err != nil {
		if r.db.classify(err) == Conflict {
			return models.Member{}, ErrMemberAlreadyExists
		}
		return models.Member{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	member.GroupID = groupID
	return member, nil
}

func (r *groupRepository) GetGroup(ctx context.Context, groupID int64) (models.SyncGroup, error) {
	return r.getOne(ctx, sq.Eq{"id": groupID})
}

func (r *groupRepository) GetGroupByCode(ctx context.Context, code string) (models.SyncGroup, error) {
	return r.getOne(ctx, sq.Eq{"code": code})
}

func (r *groupRepository) getOne(ctx context.Context, where sq.Eq) (models.SyncGroup, error) {
	groups, err := r.list(ctx, r.db, buildSelectGroupsQuery(r.db.builder).Where(where))
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*groupRepository.getOne").Any("where", where).Msg("error loading group")
		return models.SyncGroup{}, err
	}
	if len(groups) == 0 {
		return models.SyncGroup{}, ErrGroupNotFound
	}
	return groups[0], nil
}

func (r *groupRepository) ListGroups(ctx context.Context) ([]models.SyncGroup, error) {
	groups, err := r.list(ctx, r.db, buildSelectGroupsQuery(r.db.builder))
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*groupRepository.ListGroups").Msg("error listing groups")
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) ListGroupsForAccount(ctx context.Context, accountID string) ([]models.SyncGroup, error) {
	sub := r.db.builder.Select("group_id").From(tableMembers).Where(sq.Eq{"account_id": accountID})
	subSQL, subArgs, err := sub.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	q := buildSelectGroupsQuery(r.db.builder).Where(sq.Expr("id IN ("+subSQL+")", subArgs...))
	groups, err := r.list(ctx, r.db, q)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*groupRepository.ListGroupsForAccount").Str("account_id", accountID).Msg("error listing groups")
		return nil, err
	}
	return groups, nil
}

// list loads the groups selected by q together with their members. The
// group rows are closed before members are queried so that a single
// connection (a transaction or SQLite) is never asked to serve two result
// sets at once.
func (r *groupRepository) list(ctx context.Context, run runner, q sq.SelectBuilder) ([]models.SyncGroup, error) {
	groups, err := r.scanGroups(ctx, run, q)
	if err != nil || len(groups) == 0 {
		return groups, err
	}

	ids := make([]int64, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	members, err := r.members(ctx, run, ids)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		groups[i].Members = orderMembers(members[groups[i].ID], groups[i].MasterMemberID)
	}

	return groups, nil
}

func (r *groupRepository) scanGroups(ctx context.Context, run runner, q sq.SelectBuilder) ([]models.SyncGroup, error) {
	rows, err := query(ctx, run, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.SyncGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return groups, nil
}

func (r *groupRepository) members(ctx context.Context, run runner, groupIDs []int64) (map[int64][]models.Member, error) {
	rows, err := query(ctx, run, buildSelectMembersQuery(r.db.builder).Where(sq.Eq{"group_id": groupIDs}))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]models.Member, len(groupIDs))
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.GroupID, &m.AccountID, &m.DisplayName, &m.List.ListID, &m.List.Owner,
			&m.List.URL, &m.JoinedAt, &m.NeedsReauth, &m.LastError); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		out[m.GroupID] = append(out[m.GroupID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return out, nil
}

func scanGroup(rows *sql.Rows) (models.SyncGroup, error) {
	var (
		g        models.SyncGroup
		mode     string
		status   string
		masterID sql.NullInt64
		lastSync sql.NullTime
	)
	if err := rows.Scan(&g.ID, &g.Code, &g.Name, &mode, &masterID, &g.NeedsMaster, &lastSync, &status, &g.CreatedAt); err != nil {
		return models.SyncGroup{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	g.Mode = models.SyncMode(mode)
	g.LastSyncStatus = models.SyncStatus(status)
	g.State = models.StateIdle
	if masterID.Valid {
		id := masterID.Int64
		g.MasterMemberID = &id
	}
	if lastSync.Valid {
		t := lastSync.Time
		g.LastSyncAt = &t
	}
	return g, nil
}

// orderMembers puts the master first and keeps join order for the rest.
func orderMembers(members []models.Member, masterID *int64) []models.Member {
	slices.SortStableFunc(members, func(a, b models.Member) int {
		aMaster := masterID != nil && a.ID == *masterID
		bMaster := masterID != nil && b.ID == *masterID
		switch {
		case aMaster && !bMaster:
			return -1
		case bMaster && !aMaster:
			return 1
		}
		if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return members
}

func (r *groupRepository) SetMode(ctx context.Context, groupID int64, mode models.SyncMode, masterID *int64) error {
	res, err := exec(ctx, r.db, buildUpdateGroupModeQuery(r.db.builder, groupID, string(mode), masterID))
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*groupRepository.SetMode").Int64("group_id", groupID).Msg("error updating group mode")
		return err
	}
	return expectAffected(res, ErrGroupNotFound)
}

func (r *groupRepository) AddMember(ctx context.Context, groupID int64, member models.Member) (models.Member, error) {
	log := logger.FromContext(ctx)

	var added models.Member
	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		if err := groupExists(ctx, tx, r.db.builder, groupID); err != nil {
			return err
		}
		var err error
		added, err = r.insertMember(ctx, tx, groupID, member)
		return err
	})
	if err != nil {
		log.Err(err).Str("func", "*groupRepository.AddMember").Int64("group_id", groupID).Msg("error adding member")
		return models.Member{}, err
	}
	return added, nil
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, memberID int64) (models.MemberRemoval, error) {
	log := logger.FromContext(ctx)

	var removal models.MemberRemoval
	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		groups, err := r.list(ctx, tx, buildSelectGroupsQuery(r.db.builder).Where(sq.Eq{"id": groupID}))
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			return ErrGroupNotFound
		}
		group := groups[0]

		idx := slices.IndexFunc(group.Members, func(m models.Member) bool { return m.ID == memberID })
		if idx < 0 {
			return ErrMemberNotFound
		}
		removal.Member = group.Members[idx]

		if _, err := exec(ctx, tx, r.db.builder.Delete(tableBaselines).Where(sq.Eq{"member_id": memberID})); err != nil {
			return err
		}
		if _, err := exec(ctx, tx, r.db.builder.Delete(tableMembers).Where(sq.Eq{"id": memberID})); err != nil {
			return err
		}

		if len(group.Members) == 1 {
			if _, err := exec(ctx, tx, r.db.builder.Delete(tableHistory).Where(sq.Eq{"group_id": groupID})); err != nil {
				return err
			}
			if _, err := exec(ctx, tx, r.db.builder.Delete(tableGroups).Where(sq.Eq{"id": groupID})); err != nil {
				return err
			}
			removal.GroupDeleted = true
			return nil
		}

		if group.IsMaster(memberID) {
			update := r.db.builder.Update(tableGroups).
				Set("master_member_id", nil).
				Set("needs_master", group.Mode == models.ModeMasterSlave).
				Where(sq.Eq{"id": groupID})
			if _, err := exec(ctx, tx, update); err != nil {
				return err
			}
			removal.MasterRemoved = true
		}
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*groupRepository.RemoveMember").Int64("group_id", groupID).Int64("member_id", memberID).Msg("error removing member")
		return models.MemberRemoval{}, err
	}
	return removal, nil
}

func (r *groupRepository) ClearReauth(ctx context.Context, accountID string) error {
	update := r.db.builder.Update(tableMembers).
		Set("needs_reauth", false).
		Set("last_error", "").
		Where(sq.Eq{"account_id": accountID, "needs_reauth": true})
	if _, err := exec(ctx, r.db, update); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*groupRepository.ClearReauth").Str("account_id", accountID).Msg("error clearing reauth flag")
		return err
	}
	return nil
}

func groupExists(ctx context.Context, run runner, b sq.StatementBuilderType, groupID int64) error {
	row, err := queryRow(ctx, run, b.Select("id").From(tableGroups).Where(sq.Eq{"id": groupID}))
	if err != nil {
		return err
	}
	var id int64
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return nil
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
