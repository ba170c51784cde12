package gen

import (
	"context"
	"database/sql"
	"time"
)

const userColumns = `id, email, name, password_hash, roles, mfa_method, mfa_secret, mfa_phone_number,
login_attempts, last_login_attempt_at, temp_token_id, auth_token_id, access_confirmed_at,
created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.Name,
		&i.PasswordHash,
		&i.Roles,
		&i.MfaMethod,
		&i.MfaSecret,
		&i.MfaPhoneNumber,
		&i.LoginAttempts,
		&i.LastLoginAttemptAt,
		&i.TempTokenID,
		&i.AuthTokenID,
		&i.AccessConfirmedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.DeletedAt,
	)
	return i, err
}

const getUserByID = `SELECT ` + userColumns + `
FROM users
WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByEmail = `SELECT ` + userColumns + `
FROM users
WHERE email = ? COLLATE NOCASE AND deleted_at IS NULL`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const listUsers = `SELECT ` + userColumns + `
FROM users
WHERE deleted_at IS NULL
  AND (?1 = '' OR (' ' || roles || ' ') LIKE ('% ' || ?1 || ' %'))
ORDER BY created_at, id`

func (q *Queries) ListUsers(ctx context.Context, role string) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []User
	for rows.Next() {
		i, err := scanUser(rows)
		if err != nil {
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

const createUser = `INSERT INTO users (
    id, email, name, password_hash, roles, mfa_method, mfa_secret, mfa_phone_number,
    login_attempts, last_login_attempt_at, temp_token_id, auth_token_id, access_confirmed_at,
    created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type CreateUserParams struct {
	ID                 string
	Email              string
	Name               string
	PasswordHash       string
	Roles              string
	MfaMethod          string
	MfaSecret          sql.NullString
	MfaPhoneNumber     sql.NullString
	LoginAttempts      int64
	LastLoginAttemptAt sql.NullTime
	TempTokenID        sql.NullString
	AuthTokenID        sql.NullString
	AccessConfirmedAt  sql.NullTime
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, createUser,
		arg.ID,
		arg.Email,
		arg.Name,
		arg.PasswordHash,
		arg.Roles,
		arg.MfaMethod,
		arg.MfaSecret,
		arg.MfaPhoneNumber,
		arg.LoginAttempts,
		arg.LastLoginAttemptAt,
		arg.TempTokenID,
		arg.AuthTokenID,
		arg.AccessConfirmedAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const updateUser = `UPDATE users
SET email = ?,
    name = ?,
    password_hash = ?,
    roles = ?,
    mfa_method = ?,
    mfa_secret = ?,
    mfa_phone_number = ?,
    login_attempts = ?,
    last_login_attempt_at = ?,
    temp_token_id = ?,
    auth_token_id = ?,
    access_confirmed_at = ?,
    updated_at = ?
WHERE id = ? AND deleted_at IS NULL`

type UpdateUserParams struct {
	Email              string
	Name               string
	PasswordHash       string
	Roles              string
	MfaMethod          string
	MfaSecret          sql.NullString
	MfaPhoneNumber     sql.NullString
	LoginAttempts      int64
	LastLoginAttemptAt sql.NullTime
	TempTokenID        sql.NullString
	AuthTokenID        sql.NullString
	AccessConfirmedAt  sql.NullTime
	UpdatedAt          time.Time
	ID                 string
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateUser,
		arg.Email,
		arg.Name,
		arg.PasswordHash,
		arg.Roles,
		arg.MfaMethod,
		arg.MfaSecret,
		arg.MfaPhoneNumber,
		arg.LoginAttempts,
		arg.LastLoginAttemptAt,
		arg.TempTokenID,
		arg.AuthTokenID,
		arg.AccessConfirmedAt,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const softDeleteUser = `UPDATE users
SET deleted_at = ?, updated_at = ?, auth_token_id = NULL, temp_token_id = NULL
WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) SoftDeleteUser(ctx context.Context, id string, now time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, softDeleteUser, now, now, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
