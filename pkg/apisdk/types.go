package apisdk

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ============================================================================
// Envelopes
// ============================================================================

// DataResponse is the success envelope: {"data": ...}.
type DataResponse[T any] struct {
	Data T `json:"data"`
}

// ListResponse is the success envelope of paginated listings.
type ListResponse[T any] struct {
	Data []T      `json:"data"`
	Meta ListMeta `json:"meta"`
}

// ListMeta describes the page returned by a listing.
type ListMeta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ============================================================================
// Authentication
// ============================================================================

// RegisterRequest creates a new account and signs it in.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest authenticates with email and password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PasswordRequest carries a password for confirm-access and set-password.
type PasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// RequestPasswordRequest asks for a password reset link.
type RequestPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CodeRequest carries a one-time code (TOTP, SMS or backup code).
type CodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// TokenResponse holds a signed JWT. Depending on the flow it is a session
// token ("user") or a temporary token ("mfa", "password").
type TokenResponse struct {
	Token string `json:"token"`
}

// Type returns the "type" claim of the token without verifying it.
// Clients use it to tell whether a login needs an MFA step.
func (t TokenResponse) Type() string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.Token, claims); err != nil {
		return ""
	}
	typ, _ := claims["type"].(string)
	return typ
}

// Token types carried in the "type" claim.
const (
	TokenTypeUser     = "user"
	TokenTypeMFA      = "mfa"
	TokenTypePassword = "password"
)

// ============================================================================
// MFA management
// ============================================================================

// MFA methods.
const (
	MFAMethodNone = ""
	MFAMethodOTP  = "otp"
	MFAMethodSMS  = "sms"
)

// MFAConfigRequest starts setting up a method.
type MFAConfigRequest struct {
	Method      string `json:"method" validate:"required,oneof=otp sms"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// MFAConfigResponse is a fresh candidate secret. Nothing is stored until
// the method is enabled.
type MFAConfigResponse struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
}

// MFASendCodeRequest asks the server to text a setup code.
type MFASendCodeRequest struct {
	Secret      string `json:"secret" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
}

// MFACheckCodeRequest checks a code against a candidate secret.
type MFACheckCodeRequest struct {
	Secret string `json:"secret" validate:"required"`
	Code   string `json:"code" validate:"required"`
}

// MFAEnableRequest persists a configured method.
type MFAEnableRequest struct {
	Method      string   `json:"method" validate:"required,oneof=otp sms"`
	Secret      string   `json:"secret" validate:"required"`
	PhoneNumber string   `json:"phoneNumber,omitempty" validate:"required_if=Method sms"`
	BackupCodes []string `json:"backupCodes" validate:"unique,dive,required"`
}

// ============================================================================
// Users
// ============================================================================

// User is the public view of an account.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Roles          []string  `json:"roles"`
	MFAMethod      string    `json:"mfaMethod"`
	MFAPhoneNumber string    `json:"mfaPhoneNumber,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// UpdateMeRequest changes the caller's own profile.
type UpdateMeRequest struct {
	Name *string `json:"name,omitempty" validate:"omitnil,min=1"`
}

// CreateUserRequest is used by admins to create accounts.
type CreateUserRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Name     string   `json:"name"`
	Password string   `json:"password" validate:"required"`
	Roles    []string `json:"roles,omitempty" validate:"dive,role"`
}

// UpdateUserRequest patches an account. Nil fields are left untouched.
type UpdateUserRequest struct {
	Email *string   `json:"email,omitempty" validate:"omitnil,email"`
	Name  *string   `json:"name,omitempty"`
	Roles *[]string `json:"roles,omitempty" validate:"omitnil,dive,role"`
}

// ============================================================================
// Audit
// ============================================================================

// AuditEntry is one recorded change.
type AuditEntry struct {
	ID                  string         `json:"id"`
	Activity            string         `json:"activity"`
	Type                string         `json:"type"`
	ObjectID            string         `json:"objectId,omitempty"`
	ObjectType          string         `json:"objectType,omitempty"`
	ObjectBefore        map[string]any `json:"objectBefore,omitempty"`
	ObjectAfter         map[string]any `json:"objectAfter,omitempty"`
	RequestMethod       string         `json:"requestMethod"`
	RequestURL          string         `json:"requestUrl"`
	RouteNormalizedPath string         `json:"routeNormalizedPath"`
	RoutePrefix         string         `json:"routePrefix"`
	UserID              string         `json:"userId,omitempty"`
	CreatedAt           time.Time      `json:"createdAt"`
}

// AuditEntryFilter narrows ListAuditEntries. Zero values are ignored.
type AuditEntryFilter struct {
	ObjectID string
	Type     string
	UserID   string
	Limit    int
	Offset   int
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency checked by /readyz.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}
