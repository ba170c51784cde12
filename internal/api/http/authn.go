package http

import (
	"context"

	"github.com/aussiebroadwan/storefront/internal/api/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
)

// sessionAuthenticator accepts "user" tokens of a live session.
func sessionAuthenticator(tokens *service.TokenService) httpx.Authenticator {
	return httpx.AuthenticatorFunc(func(ctx context.Context, raw string) (httpx.Principal, error) {
		u, claims, err := tokens.Authenticate(ctx, raw)
		if err != nil {
			return httpx.Principal{}, authError(err)
		}
		return httpx.Principal{UserID: u.ID, Roles: u.Roles, Claims: claims}, nil
	})
}

// temporaryAuthenticator only verifies a temporary token's signature and
// type. The service consuming it checks it is still the user's current one.
func temporaryAuthenticator(tokens *service.TokenService, tokenType string) httpx.Authenticator {
	return httpx.AuthenticatorFunc(func(_ context.Context, raw string) (httpx.Principal, error) {
		claims, err := tokens.ParseToken(raw, tokenType)
		if err != nil {
			return httpx.Principal{}, authError(err)
		}
		return httpx.Principal{UserID: claims.Subject, Claims: claims}, nil
	})
}

func authError(err error) error {
	if api := apiError(err); api != nil {
		return api
	}
	return err
}
