package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/api/domain"
	"github.com/aussiebroadwan/storefront/internal/api/mail"
	"github.com/aussiebroadwan/storefront/internal/api/store"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

const minPasswordLength = 6

// AuthService implements registration, login and password recovery.
type AuthService struct {
	Store  store.Store
	Tokens *TokenService
	Mail   mail.Sender
	Policy Policy

	AppName string
	AppURL  string // base of the links sent by email

	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) policy() Policy {
	if len(s.Policy.Tiers) == 0 {
		return DefaultPolicy
	}
	return s.Policy
}

// RegisterInput is a self service sign up.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	u, err := newUser(ctx, s.Store, in.Email, in.Name, in.Password, nil, s.now())
	if err != nil {
		return "", err
	}

	slogx.FromContext(ctx).Info("user registered", "user_id", u.ID)
	return s.Tokens.IssueAuthToken(ctx, &u)
}

// newUser validates and inserts a user. It is shared by registration and
// admin creation.
func newUser(ctx context.Context, st store.Store, email, name, password string, roles []string, now time.Time) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.User{}, ErrInvalidRequest
	}
	if len(password) < minPasswordLength {
		return domain.User{}, ErrWeakPassword
	}
	if !validRoles(roles) {
		return domain.User{}, ErrInvalidRole
	}

	_, err := st.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.User{}, ErrEmailTaken
	case !errors.Is(err, store.ErrNotFound):
		return domain.User{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now = now.UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := st.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login checks a password. Users without MFA get a session token, the
// others an "mfa" token to exchange through MFAService.Verify.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}

	if err := s.checkPassword(ctx, &u, password); err != nil {
		log.Warn("login rejected", "user_id", u.ID, "err", err)
		return "", err
	}

	// MFA users keep their failed attempts until Verify succeeds, so both
	// factors share one throttle.
	if u.MFAMethod != domain.MFAMethodNone {
		log.Info("login requires mfa", "user_id", u.ID, "method", u.MFAMethod)
		return s.Tokens.IssueTemporaryToken(ctx, &u, jwtx.TypeMFA)
	}

	RecordSuccess(&u)
	log.Info("user logged in", "user_id", u.ID)
	return s.Tokens.IssueAuthToken(ctx, &u)
}

// checkPassword runs a throttled password check. A failure is persisted
// right away. On success the attempt counter is left for the caller to
// reset.
func (s *AuthService) checkPassword(ctx context.Context, u *domain.User, password string) error {
	now := s.now()
	if err := s.policy().Check(u.LoginAttempts, u.LastLoginAttemptAt, now); err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		RecordFailure(u, now)
		if err := s.Store.Users().UpdateUser(ctx, *u); err != nil {
			return fmt.Errorf("save login attempt: %w", err)
		}
		return ErrInvalidCredentials
	}
	return nil
}

// Logout ends the current session. The token stops working immediately.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	u, err := getUser(ctx, s.Store, userID)
	if err != nil {
		return err
	}

	u.AuthTokenID = ""
	if err := s.Store.Users().UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("clear auth token id: %w", err)
	}
	return nil
}

// ConfirmAccess re-checks the password of a signed in user, unlocking
// sensitive settings for a while.
func (s *AuthService) ConfirmAccess(ctx context.Context, userID, password string) error {
	u, err := getUser(ctx, s.Store, userID)
	if err != nil {
		return err
	}

	if err := s.checkPassword(ctx, &u, password); err != nil {
		return err
	}

	RecordSuccess(&u)
	now := s.now().UTC()
	u.AccessConfirmedAt = &now
	if err := s.Store.Users().UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("save access confirmation: %w", err)
	}
	return nil
}

// RequestPassword emails a single use link to set a new password.
func (s *AuthService) RequestPassword(ctx context.Context, email string) error {
	u, err := s.Store.Users().GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return ErrUnknownEmail
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	token, err := s.Tokens.IssueTemporaryToken(ctx, &u, jwtx.TypePassword)
	if err != nil {
		return err
	}

	params := mail.ResetPasswordParams{
		AppName:     s.AppName,
		Name:        u.Name,
		Link:        s.AppURL + "/set-password?token=" + url.QueryEscape(token),
		ExpireHours: int(s.Tokens.ttl(jwtx.TypePassword).Hours()),
	}
	if err := mail.SendResetPasswordLink(ctx, s.Mail, u.Email, params); err != nil {
		return fmt.Errorf("send reset password mail: %w", err)
	}

	slogx.FromContext(ctx).Info("password reset requested", "user_id", u.ID)
	return nil
}

// SetPassword consumes a "password" token. A rejected password leaves the
// token usable.
func (s *AuthService) SetPassword(ctx context.Context, claims jwtx.Claims, password string) (string, error) {
	u, err := s.Tokens.ResolveTemporaryToken(ctx, claims)
	if err != nil {
		return "", err
	}

	if len(password) < minPasswordLength {
		return "", ErrWeakPassword
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	u.PasswordHash = hash
	u.TempTokenID = ""
	RecordSuccess(&u)

	slogx.FromContext(ctx).Info("password changed", "user_id", u.ID)
	return s.Tokens.IssueAuthToken(ctx, &u)
}

func getUser(ctx context.Context, st store.Store, userID string) (domain.User, error) {
	u, err := st.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}
