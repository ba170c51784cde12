package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/api/domain"
	"github.com/aussiebroadwan/storefront/internal/api/store"
	"github.com/aussiebroadwan/storefront/internal/api/store/drivers/sqlite"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newUser(email string, roles ...string) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: "$argon2id$placeholder",
		Roles:        roles,
	}
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Ping(context.Background()))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	u := newUser("Alice@Example.com", "admin", "editor")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	t.Run("lookup by email ignores case", func(t *testing.T) {
		got, err := st.Users().GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.Equal(t, []string{"admin", "editor"}, got.Roles)
		require.Equal(t, domain.MFAMethodNone, got.MFAMethod)
		require.Nil(t, got.LastLoginAttemptAt)
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := st.Users().CreateUser(ctx, newUser("ALICE@example.com"))
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("update round trips mutable fields", func(t *testing.T) {
		got, err := st.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)

		now := time.Now().UTC().Truncate(time.Second)
		got.LoginAttempts = 3
		got.LastLoginAttemptAt = &now
		got.TempTokenID = "temp-1"
		got.AuthTokenID = "auth-1"
		got.MFAMethod = domain.MFAMethodSMS
		got.MFASecret = "SECRET"
		got.MFAPhoneNumber = "+61400000000"
		require.NoError(t, st.Users().UpdateUser(ctx, got))

		again, err := st.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, 3, again.LoginAttempts)
		require.NotNil(t, again.LastLoginAttemptAt)
		require.True(t, now.Equal(*again.LastLoginAttemptAt))
		require.Equal(t, "temp-1", again.TempTokenID)
		require.Equal(t, "auth-1", again.AuthTokenID)
		require.Equal(t, domain.MFAMethodSMS, again.MFAMethod)
		require.Equal(t, "SECRET", again.MFASecret)

		again.TempTokenID = ""
		require.NoError(t, st.Users().UpdateUser(ctx, again))
		cleared, err := st.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Empty(t, cleared.TempTokenID)
	})

	t.Run("list filters by role", func(t *testing.T) {
		require.NoError(t, st.Users().CreateUser(ctx, newUser("bob@example.com")))

		all, err := st.Users().ListUsers(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 2)

		admins, err := st.Users().ListUsers(ctx, "admin")
		require.NoError(t, err)
		require.Len(t, admins, 1)
		require.Equal(t, u.ID, admins[0].ID)

		none, err := st.Users().ListUsers(ctx, "edit")
		require.NoError(t, err)
		require.Empty(t, none)
	})

	t.Run("soft delete frees the email", func(t *testing.T) {
		require.NoError(t, st.Users().DeleteUser(ctx, u.ID))

		_, err := st.Users().GetUserByID(ctx, u.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, st.Users().DeleteUser(ctx, u.ID), store.ErrNotFound)
		require.ErrorIs(t, st.Users().UpdateUser(ctx, u), store.ErrNotFound)

		require.NoError(t, st.Users().CreateUser(ctx, newUser("alice@example.com")))
	})
}

func TestBackupCodes(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	u := newUser("codes@example.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	codes := st.BackupCodes()
	require.NoError(t, codes.ReplaceBackupCodes(ctx, u.ID, []string{"h1", "h2", "h3"}))

	n, err := codes.CountBackupCodes(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	ok, err := codes.ConsumeBackupCode(ctx, u.ID, "h2")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = codes.ConsumeBackupCode(ctx, u.ID, "h2")
	require.NoError(t, err)
	require.False(t, ok, "a backup code can only be used once")

	require.NoError(t, codes.ReplaceBackupCodes(ctx, u.ID, []string{"h4"}))
	n, err = codes.CountBackupCodes(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	err = codes.ReplaceBackupCodes(ctx, u.ID, []string{"h5", "h5"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	require.NoError(t, codes.DeleteAllBackupCodes(ctx, u.ID))
	n, err = codes.CountBackupCodes(ctx, u.ID)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestAuditEntries(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	repo := st.AuditEntries()

	base := time.Now().UTC().Add(-48 * time.Hour)
	for i, e := range []domain.AuditEntry{
		{Activity: "created user", Type: domain.AuditTypeAdmin, ObjectID: "u1", UserID: "admin"},
		{Activity: "updated user", Type: domain.AuditTypeAdmin, ObjectID: "u1", UserID: "admin",
			ObjectBefore: map[string]any{"email": "a@example.com"},
			ObjectAfter:  map[string]any{"email": "b@example.com"}},
		{Activity: "enabled MFA", Type: domain.AuditTypeSecurity, ObjectID: "u2", UserID: "u2"},
	} {
		e.ID = idx.New().String()
		e.RequestMethod = "PATCH"
		e.RequestURL = "/1/users/u1?x=1"
		e.RouteNormalizedPath = "/1/users/:userId"
		e.RoutePrefix = "/1/users"
		e.CreatedAt = base.Add(time.Duration(i) * 24 * time.Hour)
		require.NoError(t, repo.CreateAuditEntry(ctx, e))
	}

	t.Run("newest first", func(t *testing.T) {
		entries, total, err := repo.ListAuditEntries(ctx, domain.AuditFilter{})
		require.NoError(t, err)
		require.Equal(t, 3, total)
		require.Equal(t, "enabled MFA", entries[0].Activity)
		require.Equal(t, "created user", entries[2].Activity)
	})

	t.Run("filters and decodes diffs", func(t *testing.T) {
		entries, total, err := repo.ListAuditEntries(ctx, domain.AuditFilter{ObjectID: "u1", Limit: 1})
		require.NoError(t, err)
		require.Equal(t, 2, total)
		require.Len(t, entries, 1)
		require.Equal(t, "updated user", entries[0].Activity)
		require.Equal(t, map[string]any{"email": "a@example.com"}, entries[0].ObjectBefore)
		require.Equal(t, map[string]any{"email": "b@example.com"}, entries[0].ObjectAfter)
		require.Equal(t, "/1/users/:userId", entries[0].RouteNormalizedPath)

		entries, _, err = repo.ListAuditEntries(ctx, domain.AuditFilter{Type: domain.AuditTypeSecurity})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Nil(t, entries[0].ObjectBefore)
	})

	t.Run("retention", func(t *testing.T) {
		n, err := repo.DeleteAuditEntriesBefore(ctx, base.Add(36*time.Hour))
		require.NoError(t, err)
		require.EqualValues(t, 2, n)

		_, total, err := repo.ListAuditEntries(ctx, domain.AuditFilter{})
		require.NoError(t, err)
		require.Equal(t, 1, total)
	})
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := newUser("tx@example.com")

	err := st.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, u))
		return store.ErrAlreadyExists
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = st.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}
