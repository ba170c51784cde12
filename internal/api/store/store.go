package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/storefront/internal/api/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and so a Tx-scoped Store can't start another transaction.
type Store interface {
	Users() Users
	BackupCodes() BackupCodes
	AuditEntries() AuditEntries

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a live (not deleted) user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up a live user, ignoring case.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsers returns live users, oldest first. An empty role lists everyone.
	ListUsers(ctx context.Context, role string) ([]domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser writes every mutable column of u and bumps updated_at.
	// Returns ErrAlreadyExists when the new email is taken.
	UpdateUser(ctx context.Context, u domain.User) error

	// DeleteUser soft deletes the user, freeing its email.
	DeleteUser(ctx context.Context, userID string) error
}

type BackupCodes interface {
	// ReplaceBackupCodes drops the user's codes and stores the given hashes.
	ReplaceBackupCodes(ctx context.Context, userID string, codeHashes []string) error

	// ConsumeBackupCode deletes a matching code and reports whether one existed.
	ConsumeBackupCode(ctx context.Context, userID string, codeHash string) (bool, error)

	// DeleteAllBackupCodes removes all backup codes for a user.
	DeleteAllBackupCodes(ctx context.Context, userID string) error

	// CountBackupCodes returns the number of unused backup codes for a user.
	CountBackupCodes(ctx context.Context, userID string) (int, error)
}

type AuditEntries interface {
	CreateAuditEntry(ctx context.Context, e domain.AuditEntry) error

	// ListAuditEntries returns matching entries newest first, plus the total
	// number of matches ignoring limit and offset.
	ListAuditEntries(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEntry, int, error)

	// DeleteAuditEntriesBefore is housekeeping for the retention period.
	DeleteAuditEntriesBefore(ctx context.Context, before time.Time) (int64, error)
}
