package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/storefront/internal/api/domain"
	"github.com/aussiebroadwan/storefront/internal/api/store"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
)

// TokenService issues and checks the JWTs handed to users. Every token
// carries a jti that must match the id stored on the user, so issuing a
// new token revokes the previous one of the same family.
type TokenService struct {
	Store  store.Store
	Keys   *jwtx.KeyManager
	Issuer string

	AuthTokenTTL     time.Duration
	PasswordTokenTTL time.Duration
	MFATokenTTL      time.Duration

	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenService) ttl(tokenType string) time.Duration {
	var d, def time.Duration
	switch tokenType {
	case jwtx.TypeUser:
		d, def = s.AuthTokenTTL, jwtx.DefaultAuthTokenTTL
	case jwtx.TypePassword:
		d, def = s.PasswordTokenTTL, jwtx.DefaultPasswordTokenTTL
	default:
		d, def = s.MFATokenTTL, jwtx.DefaultMFATokenTTL
	}
	if d <= 0 {
		return def
	}
	return d
}

// WithStore returns a copy of s that reads and writes through st, so tokens
// can be issued inside a transaction.
func (s *TokenService) WithStore(st store.Store) *TokenService {
	c := *s
	c.Store = st
	return &c
}

// IssueAuthToken starts a new session for u, ending any previous one. u
// is saved as a whole, so pending changes to it are persisted too.
func (s *TokenService) IssueAuthToken(ctx context.Context, u *domain.User) (string, error) {
	u.AuthTokenID = idx.New().String()
	if err := s.Store.Users().UpdateUser(ctx, *u); err != nil {
		return "", fmt.Errorf("save auth token id: %w", err)
	}
	return s.sign(u.ID, u.AuthTokenID, jwtx.TypeUser)
}

// IssueTemporaryToken signs a single use token of the given type ("mfa" or
// "password"). It replaces any temporary token issued before.
func (s *TokenService) IssueTemporaryToken(ctx context.Context, u *domain.User, tokenType string) (string, error) {
	if tokenType != jwtx.TypeMFA && tokenType != jwtx.TypePassword {
		return "", fmt.Errorf("not a temporary token type: %q", tokenType)
	}

	u.TempTokenID = idx.New().String()
	if err := s.Store.Users().UpdateUser(ctx, *u); err != nil {
		return "", fmt.Errorf("save temp token id: %w", err)
	}
	return s.sign(u.ID, u.TempTokenID, tokenType)
}

func (s *TokenService) sign(userID, tokenID, tokenType string) (string, error) {
	signer := s.Keys.GetSigner()
	if signer == nil {
		return "", errors.New("no signing key available")
	}

	claims := jwtx.NewClaims(userID, tokenID, tokenType, s.Issuer, s.ttl(tokenType), s.now())
	token, err := signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return token, nil
}

// ParseToken verifies the signature, expiry and type of raw.
func (s *TokenService) ParseToken(raw, tokenType string) (jwtx.Claims, error) {
	claims, err := s.Keys.Verifier.Verify(raw)
	if err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrBadToken, err)
	}
	if err := claims.ValidateType(tokenType); err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrBadToken, err)
	}
	return claims, nil
}

// ResolveTemporaryToken loads the user a verified temporary token was
// issued for. The token must be the latest one issued to that user.
func (s *TokenService) ResolveTemporaryToken(ctx context.Context, claims jwtx.Claims) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrInvalidToken
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}

	if claims.ID == "" || claims.ID != u.TempTokenID {
		return domain.User{}, ErrInvalidToken
	}
	return u, nil
}

// Authenticate checks a session token and returns its user. Tokens of a
// session that was logged out or replaced are rejected.
func (s *TokenService) Authenticate(ctx context.Context, raw string) (domain.User, jwtx.Claims, error) {
	claims, err := s.ParseToken(raw, jwtx.TypeUser)
	if err != nil {
		return domain.User{}, jwtx.Claims{}, err
	}

	u, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, jwtx.Claims{}, fmt.Errorf("%w: user not found", ErrBadToken)
	}
	if err != nil {
		return domain.User{}, jwtx.Claims{}, fmt.Errorf("load user: %w", err)
	}

	if claims.ID == "" || claims.ID != u.AuthTokenID {
		return domain.User{}, jwtx.Claims{}, fmt.Errorf("%w: session ended", ErrBadToken)
	}
	return u, claims, nil
}
