package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// Authenticator turns a raw bearer token into the calling Principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Principal, error)
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, token string) (Principal, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, token string) (Principal, error) {
	return f(ctx, token)
}

// StatusError is implemented by errors that know which response they map to.
// Errors that don't implement it are answered with 401 "bad jwt token".
type StatusError interface {
	error
	HTTPStatus() int
	PublicMessage() string
}

// AuthnMiddleware requires a bearer token accepted by a and injects the
// resulting Principal into the request context.
func AuthnMiddleware(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				writeBearerError(w, http.StatusUnauthorized, "no jwt token found in request")
				return
			}

			p, err := a.Authenticate(ctx, raw)
			if err != nil {
				log.Warn("bearer authentication failed", "err", err)

				var se StatusError
				if errors.As(err, &se) {
					writeBearerError(w, se.HTTPStatus(), se.PublicMessage())
					return
				}
				writeBearerError(w, http.StatusUnauthorized, "bad jwt token")
				return
			}

			ctx = slogx.WithUserID(WithPrincipal(ctx, p), p.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	return raw, raw != ""
}

// RFC 6750 style challenge plus the JSON error envelope.
func writeBearerError(w http.ResponseWriter, code int, desc string) {
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	}
	WriteError(w, code, desc)
}
