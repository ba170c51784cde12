package gen

import (
	"context"
	"database/sql"
	"time"
)

const createAuditEntry = `INSERT INTO audit_entries (
    id, activity, type, object_id, object_type, object_before, object_after,
    request_method, request_url, route_normalized_path, route_prefix, user_id, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateAuditEntry(ctx context.Context, arg AuditEntry) error {
	_, err := q.db.ExecContext(ctx, createAuditEntry,
		arg.ID,
		arg.Activity,
		arg.Type,
		arg.ObjectID,
		arg.ObjectType,
		arg.ObjectBefore,
		arg.ObjectAfter,
		arg.RequestMethod,
		arg.RequestUrl,
		arg.RouteNormalizedPath,
		arg.RoutePrefix,
		arg.UserID,
		arg.CreatedAt,
	)
	return err
}

const auditEntryFilter = `
WHERE (?1 = '' OR object_id = ?1)
  AND (?2 = '' OR type = ?2)
  AND (?3 = '' OR user_id = ?3)`

const listAuditEntries = `SELECT id, activity, type, object_id, object_type, object_before, object_after,
       request_method, request_url, route_normalized_path, route_prefix, user_id, created_at
FROM audit_entries` + auditEntryFilter + `
ORDER BY created_at DESC, id DESC
LIMIT ?4 OFFSET ?5`

type ListAuditEntriesParams struct {
	ObjectID string
	Type     string
	UserID   string
	Limit    int64
	Offset   int64
}

func (q *Queries) ListAuditEntries(ctx context.Context, arg ListAuditEntriesParams) ([]AuditEntry, error) {
	rows, err := q.db.QueryContext(ctx, listAuditEntries,
		arg.ObjectID,
		arg.Type,
		arg.UserID,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []AuditEntry
	for rows.Next() {
		var i AuditEntry
		if err := rows.Scan(
			&i.ID,
			&i.Activity,
			&i.Type,
			&i.ObjectID,
			&i.ObjectType,
			&i.ObjectBefore,
			&i.ObjectAfter,
			&i.RequestMethod,
			&i.RequestUrl,
			&i.RouteNormalizedPath,
			&i.RoutePrefix,
			&i.UserID,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countAuditEntries = `SELECT COUNT(*) FROM audit_entries` + auditEntryFilter

func (q *Queries) CountAuditEntries(ctx context.Context, objectID, typ, userID string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countAuditEntries, objectID, typ, userID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteAuditEntriesBefore = `DELETE FROM audit_entries WHERE created_at < ?`

func (q *Queries) DeleteAuditEntriesBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAuditEntriesBefore, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// NullString is a helper for optional text columns.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
