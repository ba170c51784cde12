package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/api/domain"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	token, err := env.auth.Register(ctx, RegisterInput{Email: "new@example.com", Name: "New", Password: testPassword})
	require.NoError(t, err)

	u, err := env.store.Users().GetUserByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	require.Equal(t, "New", u.Name)
	env.requireUserToken(t, token, u.ID)

	t.Run("email taken", func(t *testing.T) {
		_, err := env.auth.Register(ctx, RegisterInput{Email: "NEW@example.com", Name: "Dup", Password: testPassword})
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := env.auth.Register(ctx, RegisterInput{Email: "weak@example.com", Password: "12345"})
		require.ErrorIs(t, err, ErrWeakPassword)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a session token", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, nil)

		token, err := env.auth.Login(ctx, u.Email, testPassword)
		require.NoError(t, err)
		env.requireUserToken(t, token, u.ID)
	})

	t.Run("unknown email", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.auth.Login(ctx, "nobody@example.com", testPassword)
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("bad password counts the attempt", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, nil)

		_, err := env.auth.Login(ctx, u.Email, "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		u = env.reload(t, u.ID)
		require.Equal(t, 1, u.LoginAttempts)
		require.NotNil(t, u.LastLoginAttemptAt)
		require.Empty(t, u.AuthTokenID)
	})

	t.Run("success resets attempts", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, func(u *domain.User) { u.LoginAttempts = 2 })

		_, err := env.auth.Login(ctx, u.Email, testPassword)
		require.NoError(t, err)
		require.Zero(t, env.reload(t, u.ID).LoginAttempts)
	})

	t.Run("mfa users keep their attempts until verified", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, func(u *domain.User) {
			mfaUser(domain.MFAMethodOTP)(u)
			u.LoginAttempts = 2
			u.LastLoginAttemptAt = ptr(env.clock.Now())
		})

		raw, err := env.auth.Login(ctx, u.Email, testPassword)
		require.NoError(t, err)
		require.Equal(t, 2, env.reload(t, u.ID).LoginAttempts)

		claims, err := env.tokens.ParseToken(raw, jwtx.TypeMFA)
		require.NoError(t, err)
		_, err = env.mfa.Verify(ctx, claims, "00000-00000")
		require.ErrorIs(t, err, ErrInvalidCode)
		require.Equal(t, 3, env.reload(t, u.ID).LoginAttempts)

		// The password alone no longer buys fresh guesses
		_, err = env.auth.Login(ctx, u.Email, testPassword)
		require.ErrorIs(t, err, ErrTooManyAttempts)

		env.clock.Advance(time.Minute)
		raw, err = env.auth.Login(ctx, u.Email, testPassword)
		require.NoError(t, err)
		claims, err = env.tokens.ParseToken(raw, jwtx.TypeMFA)
		require.NoError(t, err)

		code, err := GenerateCode(testSecret, env.clock.Now())
		require.NoError(t, err)
		_, err = env.mfa.Verify(ctx, claims, code)
		require.NoError(t, err)
		require.Zero(t, env.reload(t, u.ID).LoginAttempts)
	})

	t.Run("mfa users get an mfa token", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, func(u *domain.User) {
			u.MFAMethod = domain.MFAMethodOTP
			u.MFASecret = "JBSWY3DPEHPK3PXP"
		})

		token, err := env.auth.Login(ctx, u.Email, testPassword)
		require.NoError(t, err)

		claims, err := env.tokens.ParseToken(token, jwtx.TypeMFA)
		require.NoError(t, err)

		u = env.reload(t, u.ID)
		require.Equal(t, u.TempTokenID, claims.ID)
		require.Empty(t, u.AuthTokenID)
	})
}

func TestLoginThrottle(t *testing.T) {
	ctx := context.Background()

	t.Run("fourth attempt waits a minute", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, func(u *domain.User) {
			u.LoginAttempts = 3
			u.LastLoginAttemptAt = ptr(env.clock.Now())
		})

		_, err := env.auth.Login(ctx, u.Email, "wrong-password")
		require.ErrorIs(t, err, ErrTooManyAttempts)
		require.Equal(t, 3, env.reload(t, u.ID).LoginAttempts)

		_, err = env.auth.Login(ctx, u.Email, testPassword)
		require.ErrorIs(t, err, ErrTooManyAttempts)

		env.clock.Advance(time.Minute)
		_, err = env.auth.Login(ctx, u.Email, testPassword)
		require.NoError(t, err)
	})

	t.Run("tenth attempt waits an hour", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, func(u *domain.User) {
			u.LoginAttempts = 10
			u.LastLoginAttemptAt = ptr(env.clock.Now())
		})

		env.clock.Advance(59 * time.Minute)
		_, err := env.auth.Login(ctx, u.Email, testPassword)
		require.ErrorIs(t, err, ErrTooManyAttempts)

		env.clock.Advance(time.Minute)
		_, err = env.auth.Login(ctx, u.Email, testPassword)
		require.NoError(t, err)

		env.clock.Advance(time.Second)
		_, err = env.auth.Login(ctx, u.Email, testPassword)
		require.NoError(t, err)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.createUser(t, nil)

	token, err := env.auth.Login(ctx, u.Email, testPassword)
	require.NoError(t, err)

	_, _, err = env.tokens.Authenticate(ctx, token)
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, u.ID))
	require.Empty(t, env.reload(t, u.ID).AuthTokenID)

	_, _, err = env.tokens.Authenticate(ctx, token)
	require.ErrorIs(t, err, ErrBadToken)
}

func TestConfirmAccess(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.createUser(t, nil)

	require.NoError(t, env.auth.ConfirmAccess(ctx, u.ID, testPassword))
	u = env.reload(t, u.ID)
	require.NotNil(t, u.AccessConfirmedAt)
	require.WithinDuration(t, env.clock.Now(), *u.AccessConfirmedAt, time.Second)

	t.Run("bad password", func(t *testing.T) {
		err := env.auth.ConfirmAccess(ctx, u.ID, "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		require.Equal(t, 1, env.reload(t, u.ID).LoginAttempts)
	})

	t.Run("throttled", func(t *testing.T) {
		locked := env.createUser(t, func(u *domain.User) {
			u.LoginAttempts = 9
			u.LastLoginAttemptAt = ptr(env.clock.Now())
		})

		err := env.auth.ConfirmAccess(ctx, locked.ID, testPassword)
		require.ErrorIs(t, err, ErrTooManyAttempts)
		require.Nil(t, env.reload(t, locked.ID).AccessConfirmedAt)
	})
}

func TestRequestPassword(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.createUser(t, nil)

	require.NoError(t, env.auth.RequestPassword(ctx, u.Email))

	u = env.reload(t, u.ID)
	require.NotEmpty(t, u.TempTokenID)

	sent := env.mail.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, []string{u.Email}, sent[0].To)
	require.Contains(t, sent[0].Body, "https://storefront.test/set-password?token=")
	require.Contains(t, sent[0].Subject, "Storefront")

	t.Run("unknown email", func(t *testing.T) {
		err := env.auth.RequestPassword(ctx, "nobody@example.com")
		require.ErrorIs(t, err, ErrUnknownEmail)
	})
}

func TestSetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("sets the password once", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, func(u *domain.User) { u.LoginAttempts = 5 })
		claims := env.tempToken(t, u, jwtx.TypePassword)

		token, err := env.auth.SetPassword(ctx, claims, "new-password")
		require.NoError(t, err)
		env.requireUserToken(t, token, u.ID)

		u = env.reload(t, u.ID)
		require.Empty(t, u.TempTokenID)
		require.Zero(t, u.LoginAttempts)

		_, err = env.auth.Login(ctx, u.Email, "new-password")
		require.NoError(t, err)

		_, err = env.auth.SetPassword(ctx, claims, "another-password")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("weak password keeps the token", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, nil)
		claims := env.tempToken(t, u, jwtx.TypePassword)

		_, err := env.auth.SetPassword(ctx, claims, "short")
		require.ErrorIs(t, err, ErrWeakPassword)
		require.Equal(t, claims.ID, env.reload(t, u.ID).TempTokenID)

		_, err = env.auth.SetPassword(ctx, claims, "long-enough")
		require.NoError(t, err)
	})

	t.Run("superseded token", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, nil)
		old := env.tempToken(t, u, jwtx.TypePassword)
		current := env.tempToken(t, env.reload(t, u.ID), jwtx.TypePassword)

		_, err := env.auth.SetPassword(ctx, old, "new-password")
		require.ErrorIs(t, err, ErrInvalidToken)
		require.Equal(t, current.ID, env.reload(t, u.ID).TempTokenID)
	})

	t.Run("deleted user", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.createUser(t, nil)
		claims := env.tempToken(t, u, jwtx.TypePassword)
		require.NoError(t, env.store.Users().DeleteUser(ctx, u.ID))

		_, err := env.auth.SetPassword(ctx, claims, "new-password")
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestParseToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.createUser(t, nil)

	_, err := env.tokens.ParseToken("badtoken", jwtx.TypePassword)
	require.ErrorIs(t, err, ErrBadToken)

	raw, err := env.tokens.IssueTemporaryToken(ctx, &u, jwtx.TypeMFA)
	require.NoError(t, err)

	_, err = env.tokens.ParseToken(raw, jwtx.TypePassword)
	require.ErrorIs(t, err, ErrBadToken)

	_, err = env.tokens.ParseToken(raw[:len(raw)-2]+"xx", jwtx.TypeMFA)
	require.ErrorIs(t, err, ErrBadToken)

	_, err = env.tokens.IssueTemporaryToken(ctx, &u, jwtx.TypeUser)
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "not a temporary token type"))
}
