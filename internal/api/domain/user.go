package domain

import (
	"slices"
	"time"
)

type User struct {
	ID             string
	Email          string // unique among live users, compared case-insensitively
	Name           string
	PasswordHash   string // argon2 encoded
	Roles          []string
	MFAMethod      MFAMethod
	MFASecret      string // base32 TOTP secret, empty when MFA is off
	MFAPhoneNumber string

	LoginAttempts      int
	LastLoginAttemptAt *time.Time

	TempTokenID       string // jti of the outstanding password/mfa token, empty if none
	AuthTokenID       string // jti of the current session token, empty when logged out
	AccessConfirmedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// AccessConfirmedWithin reports whether the password was re-entered less
// than d ago.
func (u *User) AccessConfirmedWithin(d time.Duration, now time.Time) bool {
	return u.AccessConfirmedAt != nil && now.Sub(*u.AccessConfirmedAt) < d
}

func (u *User) AuditObjectID() string   { return u.ID }
func (u *User) AuditObjectType() string { return "User" }

// AuditValues exposes the fields an audit diff may watch. Secrets and
// counters are not included.
func (u *User) AuditValues() map[string]any {
	return map[string]any{
		"email":          u.Email,
		"name":           u.Name,
		"roles":          slices.Clone(u.Roles),
		"mfaMethod":      string(u.MFAMethod),
		"mfaPhoneNumber": u.MFAPhoneNumber,
	}
}
