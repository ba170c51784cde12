package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/api/service"
	"github.com/aussiebroadwan/storefront/internal/api/store"
	"github.com/aussiebroadwan/storefront/pkg/apisdk"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// serviceErrors maps service errors to the responses the API answers with.
var serviceErrors = []struct {
	err error
	api *apisdk.APIError
}{
	{service.ErrInvalidRequest, apisdk.ErrInvalidRequest},
	{service.ErrInvalidCredentials, apisdk.ErrInvalidCredentials},
	{service.ErrTooManyAttempts, apisdk.ErrTooManyAttempts},
	{service.ErrBadToken, apisdk.ErrBadToken},
	{service.ErrInvalidToken, apisdk.ErrInvalidToken},
	{service.ErrInvalidCode, apisdk.ErrInvalidCode},
	{service.ErrUnknownEmail, apisdk.ErrUnknownEmail},
	{service.ErrWeakPassword, apisdk.ErrWeakPassword},
	{service.ErrEmailTaken, apisdk.ErrEmailTaken},
	{service.ErrAccessNotConfirmed, apisdk.ErrAccessNotConfirmed},
	{service.ErrMFANotSupported, apisdk.ErrMFANotSupported},
	{service.ErrInvalidMFAMethod, apisdk.ErrInvalidMFAMethod},
	{service.ErrInvalidRole, apisdk.ErrInvalidRole},
	{service.ErrNotFound, apisdk.ErrNotFound},
	{service.ErrForbidden, apisdk.ErrForbidden},
	{store.ErrNotFound, apisdk.ErrNotFound},
}

// apiError returns the API error for err, or nil if err is unexpected.
func apiError(err error) *apisdk.APIError {
	var api *apisdk.APIError
	if errors.As(err, &api) {
		return api
	}
	for _, e := range serviceErrors {
		if errors.Is(err, e.err) {
			return e.api
		}
	}
	return nil
}

// writeServiceError answers with the mapped error, or 500 when err is not
// one the API knows about.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	if api := apiError(err); api != nil {
		log.Warn("request rejected", "status", api.StatusCode, "err", err)
		api.WriteError(w)
		return
	}

	log.Error("request failed", "err", err)
	apisdk.ErrServerError.WriteError(w)
}
