package apisdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Session represents an authenticated session holding a "user" token.
// Sessions are invalidated server-side by Logout or by a newer login.
type Session struct {
	client *SDKClient
	token  string
}

// Token returns the session token.
func (s *Session) Token() string {
	return s.token
}

func (s *Session) call(ctx context.Context, method, path string, body, target any) error {
	return s.client.call(ctx, method, path, s.token, body, target)
}

// Logout invalidates this session token.
func (s *Session) Logout(ctx context.Context) error {
	return s.call(ctx, http.MethodPost, "/1/auth/logout", nil, nil)
}

// ConfirmAccess re-checks the password, unlocking MFA management for 30 minutes.
func (s *Session) ConfirmAccess(ctx context.Context, password string) error {
	return s.call(ctx, http.MethodPost, "/1/auth/confirm-access", PasswordRequest{Password: password}, nil)
}

// ============================================================================
// Profile
// ============================================================================

// Me returns the caller's profile.
func (s *Session) Me(ctx context.Context) (*User, error) {
	var resp DataResponse[User]
	if err := s.call(ctx, http.MethodGet, "/1/users/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// UpdateMe changes the caller's profile.
func (s *Session) UpdateMe(ctx context.Context, req UpdateMeRequest) (*User, error) {
	var resp DataResponse[User]
	if err := s.call(ctx, http.MethodPatch, "/1/users/me", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ============================================================================
// MFA management (requires ConfirmAccess within the last 30 minutes)
// ============================================================================

// ConfigureMFA returns a candidate secret for method.
func (s *Session) ConfigureMFA(ctx context.Context, req MFAConfigRequest) (*MFAConfigResponse, error) {
	var resp DataResponse[MFAConfigResponse]
	if err := s.call(ctx, http.MethodPost, "/1/mfa/config", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// SendMFASetupCode texts a code for a candidate secret.
func (s *Session) SendMFASetupCode(ctx context.Context, req MFASendCodeRequest) error {
	return s.call(ctx, http.MethodPost, "/1/mfa/send-code", req, nil)
}

// CheckMFACode validates a code against a candidate secret.
func (s *Session) CheckMFACode(ctx context.Context, secret, code string) error {
	return s.call(ctx, http.MethodPost, "/1/mfa/check-code", MFACheckCodeRequest{Secret: secret, Code: code}, nil)
}

// GenerateBackupCodes returns a fresh set of backup codes. They are only
// stored once passed to EnableMFA.
func (s *Session) GenerateBackupCodes(ctx context.Context) ([]string, error) {
	var resp DataResponse[[]string]
	if err := s.call(ctx, http.MethodPost, "/1/mfa/generate-backup-codes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// EnableMFA persists a configured method.
func (s *Session) EnableMFA(ctx context.Context, req MFAEnableRequest) error {
	return s.call(ctx, http.MethodPost, "/1/mfa/enable", req, nil)
}

// DisableMFA removes the caller's second factor.
func (s *Session) DisableMFA(ctx context.Context) error {
	return s.call(ctx, http.MethodDelete, "/1/mfa/disable", nil, nil)
}

// ============================================================================
// Administration (requires the admin role)
// ============================================================================

// ListUsers lists accounts, optionally only those holding role.
func (s *Session) ListUsers(ctx context.Context, role string) (*ListResponse[User], error) {
	path := "/1/users"
	if role != "" {
		path += "?" + url.Values{"role": {role}}.Encode()
	}

	var resp ListResponse[User]
	if err := s.call(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateUser creates an account.
func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var resp DataResponse[User]
	if err := s.call(ctx, http.MethodPost, "/1/users", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetUser fetches an account by id.
func (s *Session) GetUser(ctx context.Context, userID string) (*User, error) {
	var resp DataResponse[User]
	if err := s.call(ctx, http.MethodGet, "/1/users/"+url.PathEscape(userID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// UpdateUser patches an account.
func (s *Session) UpdateUser(ctx context.Context, userID string, req UpdateUserRequest) (*User, error) {
	var resp DataResponse[User]
	if err := s.call(ctx, http.MethodPatch, "/1/users/"+url.PathEscape(userID), req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// DeleteUser soft-deletes an account.
func (s *Session) DeleteUser(ctx context.Context, userID string) error {
	return s.call(ctx, http.MethodDelete, "/1/users/"+url.PathEscape(userID), nil, nil)
}

// ListAuditEntries returns recorded changes, newest first.
func (s *Session) ListAuditEntries(ctx context.Context, filter AuditEntryFilter) (*ListResponse[AuditEntry], error) {
	q := url.Values{}
	if filter.ObjectID != "" {
		q.Set("objectId", filter.ObjectID)
	}
	if filter.Type != "" {
		q.Set("type", filter.Type)
	}
	if filter.UserID != "" {
		q.Set("userId", filter.UserID)
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}

	path := "/1/audit-entries"
	if len(q) > 0 {
		path = fmt.Sprintf("%s?%s", path, q.Encode())
	}

	var resp ListResponse[AuditEntry]
	if err := s.call(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
