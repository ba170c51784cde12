package gen

import (
	"context"
	"time"
)

const createBackupCode = `INSERT INTO backup_codes (user_id, code_hash, created_at) VALUES (?, ?, ?)`

type CreateBackupCodeParams struct {
	UserID    string
	CodeHash  string
	CreatedAt time.Time
}

func (q *Queries) CreateBackupCode(ctx context.Context, arg CreateBackupCodeParams) error {
	_, err := q.db.ExecContext(ctx, createBackupCode, arg.UserID, arg.CodeHash, arg.CreatedAt)
	return err
}

const deleteBackupCode = `DELETE FROM backup_codes WHERE user_id = ? AND code_hash = ?`

type DeleteBackupCodeParams struct {
	UserID   string
	CodeHash string
}

func (q *Queries) DeleteBackupCode(ctx context.Context, arg DeleteBackupCodeParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteBackupCode, arg.UserID, arg.CodeHash)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAllBackupCodes = `DELETE FROM backup_codes WHERE user_id = ?`

func (q *Queries) DeleteAllBackupCodes(ctx context.Context, userID string) error {
	_, err := q.db.ExecContext(ctx, deleteAllBackupCodes, userID)
	return err
}

const countUserBackupCodes = `SELECT COUNT(*) FROM backup_codes WHERE user_id = ?`

func (q *Queries) CountUserBackupCodes(ctx context.Context, userID string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countUserBackupCodes, userID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
