package store

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	tableGroups      = "sync_groups"
	tableMembers     = "group_members"
	tableBaselines   = "member_baselines"
	tableCredentials = "credentials"
	tableHistory     = "sync_history"
	tableTargets     = "group_targets"

	// baselineInsertChunk bounds the rows of one multi-row INSERT so that
	// the bind variable limit of SQLite is never reached.
	baselineInsertChunk = 400
)

var (
	groupColumns = []string{
		"id", "code", "name", "mode", "master_member_id", "needs_master",
		"last_sync_at", "last_sync_status", "created_at",
	}
	memberColumns = []string{
		"id", "group_id", "account_id", "display_name", "list_id", "list_owner",
		"list_url", "joined_at", "needs_reauth", "last_error",
	}
	historyColumns = []string{
		"id", "group_id", "cycle_id", "status", "started_at", "finished_at", "details",
	}
)

func buildInsertGroupQuery(b sq.StatementBuilderType, code, name, mode string, createdAt any) sq.InsertBuilder {
	return b.Insert(tableGroups).
		Columns("code", "name", "mode", "needs_master", "last_sync_status", "created_at").
		Values(code, name, mode, false, "", createdAt).
		Suffix("RETURNING id")
}

func buildSelectGroupsQuery(b sq.StatementBuilderType) sq.SelectBuilder {
	return b.Select(groupColumns...).From(tableGroups).OrderBy("id")
}

func buildSelectMembersQuery(b sq.StatementBuilderType) sq.SelectBuilder {
	return b.Select(memberColumns...).From(tableMembers).OrderBy("joined_at", "id")
}

func buildInsertMemberQuery(b sq.StatementBuilderType, groupID int64, accountID, displayName, listID, listOwner, listURL string, joinedAt any) sq.InsertBuilder {
	return b.Insert(tableMembers).
		Columns("group_id", "account_id", "display_name", "list_id", "list_owner", "list_url", "joined_at", "needs_reauth", "last_error").
		Values(groupID, accountID, displayName, listID, listOwner, listURL, joinedAt, false, "").
		Suffix("RETURNING id")
}

func buildUpdateGroupModeQuery(b sq.StatementBuilderType, groupID int64, mode string, masterID *int64) sq.UpdateBuilder {
	return b.Update(tableGroups).
		Set("mode", mode).
		Set("master_member_id", masterID).
		Set("needs_master", false).
		Where(sq.Eq{"id": groupID})
}

func buildSelectBaselinesQuery(b sq.StatementBuilderType, groupID int64) sq.SelectBuilder {
	return b.Select("mb.member_id", "mb.item_id").
		From(tableBaselines + " mb").
		Join(tableMembers + " gm ON gm.id = mb.member_id").
		Where(sq.Eq{"gm.group_id": groupID}).
		OrderBy("mb.member_id", "mb.item_id")
}

func buildInsertBaselineQuery(b sq.StatementBuilderType, memberID int64, items []string) sq.InsertBuilder {
	q := b.Insert(tableBaselines).Columns("member_id", "item_id")
	for _, item := range items {
		q = q.Values(memberID, item)
	}
	return q
}

func buildInsertHistoryQuery(b sq.StatementBuilderType, groupID int64, cycleID, status string, startedAt, finishedAt any, details []byte) sq.InsertBuilder {
	return b.Insert(tableHistory).
		Columns("group_id", "cycle_id", "status", "started_at", "finished_at", "details").
		Values(groupID, cycleID, status, startedAt, finishedAt, string(details)).
		Suffix("RETURNING id")
}

// buildTrimHistoryQuery deletes every result of the group except the keep
// newest ones.
func buildTrimHistoryQuery(b sq.StatementBuilderType, groupID int64, keep int) sq.DeleteBuilder {
	return b.Delete(tableHistory).
		Where(sq.Eq{"group_id": groupID}).
		Where(sq.Expr(
			"id NOT IN (SELECT id FROM "+tableHistory+" WHERE group_id = ? ORDER BY id DESC LIMIT ?)",
			groupID, keep,
		))
}

func buildSelectHistoryQuery(b sq.StatementBuilderType, groupID int64, limit int) sq.SelectBuilder {
	return b.Select(historyColumns...).
		From(tableHistory).
		Where(sq.Eq{"group_id": groupID}).
		OrderBy("id DESC").
		Limit(uint64(limit))
}

func buildSelectTargetQuery(b sq.StatementBuilderType, groupID int64) sq.SelectBuilder {
	return b.Select("items").From(tableTargets).Where(sq.Eq{"group_id": groupID})
}

func buildUpsertTargetQuery(b sq.StatementBuilderType, groupID int64, items []byte, updatedAt any) sq.InsertBuilder {
	return b.Insert(tableTargets).
		Columns("group_id", "items", "updated_at").
		Values(groupID, string(items), updatedAt).
		Suffix("ON CONFLICT (group_id) DO UPDATE SET items = excluded.items, updated_at = excluded.updated_at")
}

func buildUpsertCredentialQuery(b sq.StatementBuilderType, accountID string, ciphertext []byte, keyVersion int, updatedAt any) sq.InsertBuilder {
	return b.Insert(tableCredentials).
		Columns("account_id", "ciphertext", "key_version", "updated_at").
		Values(accountID, ciphertext, keyVersion, updatedAt).
		Suffix("ON CONFLICT (account_id) DO UPDATE SET " +
			"ciphertext = excluded.ciphertext, key_version = excluded.key_version, updated_at = excluded.updated_at")
}

func buildSelectCredentialQuery(b sq.StatementBuilderType, accountID string) sq.SelectBuilder {
	return b.Select("account_id", "ciphertext", "key_version", "updated_at").
		From(tableCredentials).
		Where(sq.Eq{"account_id": accountID})
}
