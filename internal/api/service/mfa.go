package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/api/audit"
	"github.com/aussiebroadwan/storefront/internal/api/domain"
	"github.com/aussiebroadwan/storefront/internal/api/sms"
	"github.com/aussiebroadwan/storefront/internal/api/store"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// DefaultConfirmWindow is how long a confirm-access unlocks MFA settings.
const DefaultConfirmWindow = 30 * time.Minute

// MFAService completes MFA logins and manages a user's second factor.
type MFAService struct {
	Store  store.Store
	Tokens *TokenService
	SMS    sms.Sender
	Audit  *audit.Recorder
	Policy Policy

	AppName       string
	ConfirmWindow time.Duration

	Now func() time.Time
}

func (s *MFAService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *MFAService) policy() Policy {
	if len(s.Policy.Tiers) == 0 {
		return DefaultPolicy
	}
	return s.Policy
}

// Verify exchanges an "mfa" token and a code for a session token. The code
// is either a TOTP code of the user's secret or one of their backup codes;
// a backup code can only be used once. The failed attempts left by the
// password step are only cleared here.
func (s *MFAService) Verify(ctx context.Context, claims jwtx.Claims, code string) (string, error) {
	log := slogx.FromContext(ctx)

	u, err := s.Tokens.ResolveTemporaryToken(ctx, claims)
	if err != nil {
		return "", err
	}

	now := s.now()
	if err := s.policy().Check(u.LoginAttempts, u.LastLoginAttemptAt, now); err != nil {
		log.Warn("mfa verify throttled", "user_id", u.ID, "attempts", u.LoginAttempts)
		return "", err
	}

	var token string
	matched := false
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		ok, err := matchCode(ctx, tx, u, code, now)
		if err != nil {
			return err
		}
		if !ok {
			RecordFailure(&u, now)
			if err := tx.Users().UpdateUser(ctx, u); err != nil {
				return fmt.Errorf("save mfa attempt: %w", err)
			}
			return nil
		}

		matched = true
		RecordSuccess(&u)
		u.TempTokenID = ""
		token, err = s.Tokens.WithStore(tx).IssueAuthToken(ctx, &u)
		return err
	})
	if err != nil {
		return "", err
	}
	if !matched {
		log.Warn("mfa code rejected", "user_id", u.ID, "attempts", u.LoginAttempts)
		return "", ErrInvalidCode
	}

	log.Info("mfa verified", "user_id", u.ID)
	return token, nil
}

// matchCode checks code against the TOTP secret, then the backup codes. A
// matching backup code is deleted through st.
func matchCode(ctx context.Context, st store.Store, u domain.User, code string, now time.Time) (bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return false, nil
	}
	if u.MFASecret != "" && ValidateCode(u.MFASecret, code, now) {
		return true, nil
	}

	used, err := st.BackupCodes().ConsumeBackupCode(ctx, u.ID, hashBackupCode(code))
	if err != nil {
		return false, fmt.Errorf("consume backup code: %w", err)
	}
	if used {
		slogx.FromContext(ctx).Info("backup code used", "user_id", u.ID)
	}
	return used, nil
}

// SendToken texts the current code to a user logging in with SMS.
func (s *MFAService) SendToken(ctx context.Context, claims jwtx.Claims) error {
	u, err := s.Tokens.ResolveTemporaryToken(ctx, claims)
	if err != nil {
		return err
	}

	if u.MFAMethod != domain.MFAMethodSMS || u.MFASecret == "" || u.MFAPhoneNumber == "" {
		return ErrMFANotSupported
	}
	return s.sendCode(ctx, u.MFASecret, u.MFAPhoneNumber)
}

func (s *MFAService) sendCode(ctx context.Context, secret, phoneNumber string) error {
	code, err := GenerateCode(secret, s.now())
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Your %s verification code is: %s", s.AppName, code)
	if err := s.SMS.Send(ctx, phoneNumber, body); err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	return nil
}

// confirmedUser loads a user that re-entered their password recently.
func (s *MFAService) confirmedUser(ctx context.Context, userID string) (domain.User, error) {
	u, err := getUser(ctx, s.Store, userID)
	if err != nil {
		return domain.User{}, err
	}

	window := s.ConfirmWindow
	if window <= 0 {
		window = DefaultConfirmWindow
	}
	if !u.AccessConfirmedWithin(window, s.now()) {
		return domain.User{}, ErrAccessNotConfirmed
	}
	return u, nil
}

// Config returns a new candidate secret for method.
func (s *MFAService) Config(ctx context.Context, userID string, method domain.MFAMethod) (domain.MFASetup, error) {
	u, err := s.confirmedUser(ctx, userID)
	if err != nil {
		return domain.MFASetup{}, err
	}
	if !method.Valid() {
		return domain.MFASetup{}, ErrInvalidMFAMethod
	}
	return GenerateSecret(s.AppName, u.Email)
}

// SendSetupCode texts the code of a candidate secret while setting up SMS.
func (s *MFAService) SendSetupCode(ctx context.Context, userID, secret, phoneNumber string) error {
	if _, err := s.confirmedUser(ctx, userID); err != nil {
		return err
	}
	if secret == "" || phoneNumber == "" {
		return ErrInvalidRequest
	}
	return s.sendCode(ctx, secret, phoneNumber)
}

// CheckCode lets a user prove they can produce codes before enabling MFA.
func (s *MFAService) CheckCode(ctx context.Context, userID, secret, code string) error {
	if _, err := s.confirmedUser(ctx, userID); err != nil {
		return err
	}
	if !ValidateCode(secret, code, s.now()) {
		return ErrInvalidCode
	}
	return nil
}

// GenerateBackupCodes returns codes for the user to write down. They are
// stored by Enable.
func (s *MFAService) GenerateBackupCodes(ctx context.Context, userID string) ([]string, error) {
	if _, err := s.confirmedUser(ctx, userID); err != nil {
		return nil, err
	}
	return GenerateBackupCodes()
}

// EnableInput is a configuration produced by Config and CheckCode.
type EnableInput struct {
	Method      domain.MFAMethod
	Secret      string
	PhoneNumber string
	BackupCodes []string
}

// Enable stores the second factor and replaces the user's backup codes.
func (s *MFAService) Enable(ctx context.Context, rc audit.RequestContext, userID string, in EnableInput) error {
	u, err := s.confirmedUser(ctx, userID)
	if err != nil {
		return err
	}
	if !in.Method.Valid() {
		return ErrInvalidMFAMethod
	}
	if in.Secret == "" || (in.Method == domain.MFAMethodSMS && in.PhoneNumber == "") {
		return ErrInvalidRequest
	}

	before := audit.Take(&u)
	u.MFAMethod = in.Method
	u.MFASecret = normalizeSecret(in.Secret)
	u.MFAPhoneNumber = ""
	if in.Method == domain.MFAMethodSMS {
		u.MFAPhoneNumber = in.PhoneNumber
	}

	hashes := make([]string, 0, len(in.BackupCodes))
	seen := make(map[string]struct{}, len(in.BackupCodes))
	for _, c := range in.BackupCodes {
		c = strings.TrimSpace(c)
		if _, dup := seen[c]; dup || c == "" {
			continue
		}
		seen[c] = struct{}{}
		hashes = append(hashes, hashBackupCode(c))
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateUser(ctx, u); err != nil {
			return fmt.Errorf("save mfa settings: %w", err)
		}
		if err := tx.BackupCodes().ReplaceBackupCodes(ctx, u.ID, hashes); err != nil {
			return fmt.Errorf("save backup codes: %w", err)
		}

		change := audit.Diff(before, &u, "mfaMethod", "mfaPhoneNumber")
		_, err := s.Audit.WithStore(tx).Append(ctx, rc, audit.Entry{
			Activity: "enabled MFA",
			Type:     domain.AuditTypeSecurity,
			Object:   &u,
			Change:   &change,
		})
		return err
	})
}

// Disable turns MFA off and drops the backup codes.
func (s *MFAService) Disable(ctx context.Context, rc audit.RequestContext, userID string) error {
	u, err := s.confirmedUser(ctx, userID)
	if err != nil {
		return err
	}

	before := audit.Take(&u)
	u.MFAMethod = domain.MFAMethodNone
	u.MFASecret = ""
	u.MFAPhoneNumber = ""

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateUser(ctx, u); err != nil {
			return fmt.Errorf("clear mfa settings: %w", err)
		}
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, u.ID); err != nil {
			return fmt.Errorf("delete backup codes: %w", err)
		}

		change := audit.Diff(before, &u, "mfaMethod", "mfaPhoneNumber")
		_, err := s.Audit.WithStore(tx).Append(ctx, rc, audit.Entry{
			Activity: "disabled MFA",
			Type:     domain.AuditTypeSecurity,
			Object:   &u,
			Change:   &change,
		})
		return err
	})
}
