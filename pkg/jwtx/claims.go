package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the "type" claim. A verifier only accepts the type
// a route expects, so a password reset token can never open a session.
const (
	TypeUser     = "user"
	TypeMFA      = "mfa"
	TypePassword = "password"
)

// KindUser is the payload "kid" claim stamped on every token issued for a
// user account. It is unrelated to the "kid" header that selects the key.
const KindUser = "user"

// Default token lifetimes.
const (
	DefaultAuthTokenTTL     = 30 * 24 * time.Hour
	DefaultPasswordTokenTTL = 24 * time.Hour
	DefaultMFATokenTTL      = time.Hour
)

// Claims are the claims of every token the API issues.
//
// Subject is the user id and ID (jti) is the token id that must match the
// value stored on the user (AuthTokenID for sessions, TempTokenID for
// temporary tokens).
type Claims struct {
	jwt.RegisteredClaims

	// Type discriminates session tokens from temporary ones ("user", "mfa", "password").
	Type string `json:"type"`

	// Kind identifies the account class the token was issued for.
	Kind string `json:"kid,omitempty"`
}

// NewClaims builds minimally-correct claims for the given token type.
func NewClaims(subject, tokenID, tokenType, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        tokenID,
		},
		Type: tokenType,
		Kind: KindUser,
	}
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateType checks the token was minted for the expected purpose.
func (c *Claims) ValidateType(expected string) error {
	if c.Type != expected {
		return ErrTokenType
	}
	return nil
}

// ValidateExpiry ensures the token hasn’t expired (exp) and isn’t before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryAt(time.Now().UTC())
}

// ValidateExpiryAt is ValidateExpiry against a caller supplied clock.
func (c *Claims) ValidateExpiryAt(now time.Time) error {
	// Check expired (exp)
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	// Check if a valid token isn't used before it is valid (nbf)
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
