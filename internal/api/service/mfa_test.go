package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/api/audit"
	"github.com/aussiebroadwan/storefront/internal/api/domain"
	"github.com/aussiebroadwan/storefront/internal/api/store"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testSecret = "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"

func mfaUser(method domain.MFAMethod) func(u *domain.User) {
	return func(u *domain.User) {
		u.MFAMethod = method
		u.MFASecret = testSecret
		if method == domain.MFAMethodSMS {
			u.MFAPhoneNumber = "+61400000000"
		}
	}
}

var errDiskFull = errors.New("disk full")

// failingUpdateStore fails every user update made inside a transaction.
type failingUpdateStore struct {
	store.Store
}

func (s failingUpdateStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(failingUpdateTx{innerTx: tx})
	})
}

// innerTx names the embedded store.Tx so it does not shadow the Tx method.
type innerTx = store.Tx

type failingUpdateTx struct {
	innerTx
}

func (tx failingUpdateTx) Users() store.Users { return failingUsers{Users: tx.innerTx.Users()} }

type failingUsers struct {
	store.Users
}

func (failingUsers) UpdateUser(context.Context, domain.User) error { return errDiskFull }

func TestMFAVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("totp code", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, mfaUser(domain.MFAMethodOTP))
		claims := env.tempToken(t, u, jwtx.TypeMFA)

		code, err := GenerateCode(testSecret, env.clock.Now())
		require.NoError(t, err)

		token, err := env.mfa.Verify(ctx, claims, code)
		require.NoError(t, err)
		env.requireUserToken(t, token, u.ID)
		require.Empty(t, env.reload(t, u.ID).TempTokenID)

		_, err = env.mfa.Verify(ctx, claims, code)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("backup code is single use", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, mfaUser(domain.MFAMethodOTP))
		require.NoError(t, env.store.BackupCodes().ReplaceBackupCodes(ctx, u.ID, []string{
			hashBackupCode("12345-16123"),
			hashBackupCode("99999-00000"),
		}))

		_, err := env.mfa.Verify(ctx, env.tempToken(t, u, jwtx.TypeMFA), "12345-16123")
		require.NoError(t, err)

		n, err := env.store.BackupCodes().CountBackupCodes(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, 1, n)

		_, err = env.mfa.Verify(ctx, env.tempToken(t, env.reload(t, u.ID), jwtx.TypeMFA), "12345-16123")
		require.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("bad code counts the attempt", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, func(u *domain.User) {
			mfaUser(domain.MFAMethodOTP)(u)
			u.LoginAttempts = 1
		})

		_, err := env.mfa.Verify(ctx, env.tempToken(t, u, jwtx.TypeMFA), "000000x")
		require.ErrorIs(t, err, ErrInvalidCode)

		u = env.reload(t, u.ID)
		require.Equal(t, 2, u.LoginAttempts)
		require.NotEmpty(t, u.TempTokenID)
	})

	t.Run("too many attempts", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, func(u *domain.User) {
			mfaUser(domain.MFAMethodOTP)(u)
			u.LoginAttempts = 10
			u.LastLoginAttemptAt = ptr(env.clock.Now())
		})

		code, err := GenerateCode(testSecret, env.clock.Now())
		require.NoError(t, err)

		_, err = env.mfa.Verify(ctx, env.tempToken(t, u, jwtx.TypeMFA), code)
		require.ErrorIs(t, err, ErrTooManyAttempts)
		require.Equal(t, 10, env.reload(t, u.ID).LoginAttempts)
	})

	t.Run("backup code survives a failed session save", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, mfaUser(domain.MFAMethodOTP))
		require.NoError(t, env.store.BackupCodes().ReplaceBackupCodes(ctx, u.ID, []string{hashBackupCode("12345-16123")}))
		claims := env.tempToken(t, u, jwtx.TypeMFA)

		broken := *env.mfa
		broken.Store = failingUpdateStore{Store: env.store}
		_, err := broken.Verify(ctx, claims, "12345-16123")
		require.ErrorIs(t, err, errDiskFull)

		n, err := env.store.BackupCodes().CountBackupCodes(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, 1, n)
		require.Empty(t, env.reload(t, u.ID).AuthTokenID)

		token, err := env.mfa.Verify(ctx, claims, "12345-16123")
		require.NoError(t, err)
		env.requireUserToken(t, token, u.ID)
	})

	t.Run("superseded token", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, mfaUser(domain.MFAMethodOTP))
		old := env.tempToken(t, u, jwtx.TypeMFA)
		env.tempToken(t, env.reload(t, u.ID), jwtx.TypeMFA)

		code, err := GenerateCode(testSecret, env.clock.Now())
		require.NoError(t, err)

		_, err = env.mfa.Verify(ctx, old, code)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestMFASendToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	u := env.createUser(t, mfaUser(domain.MFAMethodSMS))
	require.NoError(t, env.mfa.SendToken(ctx, env.tempToken(t, u, jwtx.TypeMFA)))

	code, err := GenerateCode(testSecret, env.clock.Now())
	require.NoError(t, err)

	msg, ok := env.sms.Last()
	require.True(t, ok)
	require.Equal(t, "+61400000000", msg.To)
	require.Equal(t, "Your Storefront verification code is: "+code, msg.Body)

	otpUser := env.createUser(t, mfaUser(domain.MFAMethodOTP))
	err = env.mfa.SendToken(ctx, env.tempToken(t, otpUser, jwtx.TypeMFA))
	require.ErrorIs(t, err, ErrMFANotSupported)
	require.Len(t, env.sms.Sent(), 1)
}

func TestMFAEnrollment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	rc := audit.RequestContext{Method: "POST", URL: "/1/mfa/enable", RouteTemplate: "/1/mfa/enable", RoutePrefix: "/1/mfa"}

	u := env.createUser(t, nil)
	rc.ActorID = u.ID

	_, err := env.mfa.Config(ctx, u.ID, domain.MFAMethodOTP)
	require.ErrorIs(t, err, ErrAccessNotConfirmed)

	require.NoError(t, env.auth.ConfirmAccess(ctx, u.ID, testPassword))

	_, err = env.mfa.Config(ctx, u.ID, "email")
	require.ErrorIs(t, err, ErrInvalidMFAMethod)

	setup, err := env.mfa.Config(ctx, u.ID, domain.MFAMethodOTP)
	require.NoError(t, err)
	require.Len(t, setup.Secret, 32)
	require.Contains(t, setup.URI, "otpauth://totp/")

	code, err := GenerateCode(setup.Secret, env.clock.Now())
	require.NoError(t, err)
	require.NoError(t, env.mfa.CheckCode(ctx, u.ID, setup.Secret, code))
	require.ErrorIs(t, env.mfa.CheckCode(ctx, u.ID, setup.Secret, "nope"), ErrInvalidCode)

	codes, err := env.mfa.GenerateBackupCodes(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, codes, 10)

	require.NoError(t, env.mfa.Enable(ctx, rc, u.ID, EnableInput{
		Method:      domain.MFAMethodOTP,
		Secret:      setup.Secret,
		BackupCodes: codes,
	}))

	u = env.reload(t, u.ID)
	require.Equal(t, domain.MFAMethodOTP, u.MFAMethod)
	require.Equal(t, setup.Secret, u.MFASecret)

	n, err := env.store.BackupCodes().CountBackupCodes(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 10, n)

	page, err := env.audit.List(ctx, domain.AuditFilter{ObjectID: u.ID})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, "enabled MFA", page.Entries[0].Activity)
	require.Equal(t, domain.AuditTypeSecurity, page.Entries[0].Type)
	require.Equal(t, map[string]any{"mfaMethod": ""}, page.Entries[0].ObjectBefore)
	require.Equal(t, map[string]any{"mfaMethod": "otp"}, page.Entries[0].ObjectAfter)

	token, err := env.auth.Login(ctx, u.Email, testPassword)
	require.NoError(t, err)
	_, err = env.tokens.ParseToken(token, jwtx.TypeMFA)
	require.NoError(t, err)

	t.Run("duplicate backup codes are stored once", func(t *testing.T) {
		require.NoError(t, env.auth.ConfirmAccess(ctx, u.ID, testPassword))
		require.NoError(t, env.mfa.Enable(ctx, rc, u.ID, EnableInput{
			Method:      domain.MFAMethodOTP,
			Secret:      setup.Secret,
			BackupCodes: []string{"12345-67890", "12345-67890", " 12345-67890 ", "55555-00000"},
		}))

		n, err := env.store.BackupCodes().CountBackupCodes(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, 2, n)
	})

	t.Run("confirmation expires", func(t *testing.T) {
		env.clock.Advance(DefaultConfirmWindow)
		require.ErrorIs(t, env.mfa.Disable(ctx, rc, u.ID), ErrAccessNotConfirmed)
	})

	t.Run("disable", func(t *testing.T) {
		require.NoError(t, env.auth.ConfirmAccess(ctx, u.ID, testPassword))
		require.NoError(t, env.mfa.Disable(ctx, rc, u.ID))

		u := env.reload(t, u.ID)
		require.Equal(t, domain.MFAMethodNone, u.MFAMethod)
		require.Empty(t, u.MFASecret)

		n, err := env.store.BackupCodes().CountBackupCodes(ctx, u.ID)
		require.NoError(t, err)
		require.Zero(t, n)

		page, err := env.audit.List(ctx, domain.AuditFilter{ObjectID: u.ID})
		require.NoError(t, err)
		require.Equal(t, 2, page.Total)
		require.Equal(t, "disabled MFA", page.Entries[0].Activity)
	})
}

func TestMFASendSetupCode(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.createUser(t, func(u *domain.User) {
		u.AccessConfirmedAt = ptr(env.clock.Now().Add(-time.Minute))
	})

	require.ErrorIs(t, env.mfa.SendSetupCode(ctx, u.ID, testSecret, ""), ErrInvalidRequest)
	require.NoError(t, env.mfa.SendSetupCode(ctx, u.ID, testSecret, "+61400000001"))

	msg, ok := env.sms.Last()
	require.True(t, ok)
	require.Equal(t, "+61400000001", msg.To)
}
