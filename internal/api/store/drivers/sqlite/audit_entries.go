package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aussiebroadwan/storefront/internal/api/domain"
	"github.com/aussiebroadwan/storefront/internal/api/store/drivers/sqlite/gen"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

type auditEntriesRepo struct {
	q *gen.Queries
}

func (r *auditEntriesRepo) CreateAuditEntry(ctx context.Context, e domain.AuditEntry) error {
	before, err := marshalObject(e.ObjectBefore)
	if err != nil {
		return fmt.Errorf("encode object before: %w", err)
	}
	after, err := marshalObject(e.ObjectAfter)
	if err != nil {
		return fmt.Errorf("encode object after: %w", err)
	}

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return r.q.CreateAuditEntry(ctx, gen.AuditEntry{
		ID:                  e.ID,
		Activity:            e.Activity,
		Type:                string(e.Type),
		ObjectID:            gen.NullString(e.ObjectID),
		ObjectType:          gen.NullString(e.ObjectType),
		ObjectBefore:        before,
		ObjectAfter:         after,
		RequestMethod:       e.RequestMethod,
		RequestUrl:          e.RequestURL,
		RouteNormalizedPath: e.RouteNormalizedPath,
		RoutePrefix:         e.RoutePrefix,
		UserID:              gen.NullString(e.UserID),
		CreatedAt:           createdAt.UTC(),
	})
}

func (r *auditEntriesRepo) ListAuditEntries(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEntry, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	limit = min(limit, maxAuditLimit)
	offset := max(f.Offset, 0)

	rows, err := r.q.ListAuditEntries(ctx, gen.ListAuditEntriesParams{
		ObjectID: f.ObjectID,
		Type:     string(f.Type),
		UserID:   f.UserID,
		Limit:    int64(limit),
		Offset:   int64(offset),
	})
	if err != nil {
		return nil, 0, err
	}

	total, err := r.q.CountAuditEntries(ctx, f.ObjectID, string(f.Type), f.UserID)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]domain.AuditEntry, 0, len(rows))
	for _, row := range rows {
		e, err := mapAuditEntry(row)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, int(total), nil
}

func (r *auditEntriesRepo) DeleteAuditEntriesBefore(ctx context.Context, before time.Time) (int64, error) {
	return r.q.DeleteAuditEntriesBefore(ctx, before.UTC())
}

func marshalObject(m map[string]any) (sql.NullString, error) {
	if m == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func unmarshalObject(ns sql.NullString) (map[string]any, error) {
	if !ns.Valid {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(ns.String), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func mapAuditEntry(row gen.AuditEntry) (domain.AuditEntry, error) {
	before, err := unmarshalObject(row.ObjectBefore)
	if err != nil {
		return domain.AuditEntry{}, fmt.Errorf("decode object before of %s: %w", row.ID, err)
	}
	after, err := unmarshalObject(row.ObjectAfter)
	if err != nil {
		return domain.AuditEntry{}, fmt.Errorf("decode object after of %s: %w", row.ID, err)
	}

	return domain.AuditEntry{
		ID:                  row.ID,
		Activity:            row.Activity,
		Type:                domain.AuditType(row.Type),
		ObjectID:            mapNullString(row.ObjectID),
		ObjectType:          mapNullString(row.ObjectType),
		ObjectBefore:        before,
		ObjectAfter:         after,
		RequestMethod:       row.RequestMethod,
		RequestURL:          row.RequestUrl,
		RouteNormalizedPath: row.RouteNormalizedPath,
		RoutePrefix:         row.RoutePrefix,
		UserID:              mapNullString(row.UserID),
		CreatedAt:           row.CreatedAt,
	}, nil
}
