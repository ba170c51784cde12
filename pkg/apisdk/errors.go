package apisdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/storefront/pkg/httpx"
)

// APIError is the error half of the response envelope:
//
//	{"error": {"message": "Not a valid code", "status": 400}}
//
// The server writes it with WriteError and the SDK returns it from every
// call that does not succeed, so callers can compare status and message.
type APIError struct {
	StatusCode int    `json:"status"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// HTTPStatus lets the authn middleware answer with this error's status.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// PublicMessage is the message written to the response envelope.
func (e *APIError) PublicMessage() string {
	return e.Message
}

// WriteError writes the envelope for this error.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Message)
}

// Is reports whether target carries the same status and message, so
// errors.Is works against the predefined errors below.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Message == t.Message
}

// NewAPIError creates an APIError with the given status code and message.
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{StatusCode: statusCode, Message: message}
}

// Errors the API answers with. Messages are part of the contract.
var (
	ErrInvalidRequest     = NewAPIError(http.StatusBadRequest, "invalid request body")
	ErrInvalidCredentials = NewAPIError(http.StatusUnauthorized, "email password combination does not match")
	ErrTooManyAttempts    = NewAPIError(http.StatusUnauthorized, "Too many attempts")
	ErrBadToken           = NewAPIError(http.StatusUnauthorized, "bad jwt token")
	ErrMissingToken       = NewAPIError(http.StatusUnauthorized, "no jwt token found in request")
	ErrInvalidToken       = NewAPIError(http.StatusBadRequest, "Invalid token")
	ErrInvalidCode        = NewAPIError(http.StatusBadRequest, "Not a valid code")
	ErrUnknownEmail       = NewAPIError(http.StatusBadRequest, "Unknown email address")
	ErrWeakPassword       = NewAPIError(http.StatusBadRequest, "Password must be at least 6 characters")
	ErrEmailTaken         = NewAPIError(http.StatusBadRequest, "A user with that email already exists")
	ErrMFANotSupported    = NewAPIError(http.StatusBadRequest, "MFA method does not support sending codes")
	ErrInvalidMFAMethod   = NewAPIError(http.StatusBadRequest, "Unknown MFA method")
	ErrInvalidRole        = NewAPIError(http.StatusBadRequest, "Roles must be non-empty and contain no spaces")
	ErrAccessNotConfirmed = NewAPIError(http.StatusForbidden, "Access has not been confirmed recently")
	ErrForbidden          = NewAPIError(http.StatusForbidden, "You don't have the right permissions")
	ErrNotFound           = NewAPIError(http.StatusNotFound, "Not found")
	ErrRateLimited        = NewAPIError(http.StatusTooManyRequests, "Too many requests. Please try again later.")
	ErrServerError        = NewAPIError(http.StatusInternalServerError, "Internal server error")
)

// parseErrorResponse turns a non-2xx response body into an *APIError.
// Bodies that are not an error envelope fall back to the status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		if envelope.Error.StatusCode == 0 {
			envelope.Error.StatusCode = resp.StatusCode
		}
		return envelope.Error
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

// MFARequiredError is returned by AuthenticateWithPassword when the login
// produced a temporary "mfa" token instead of a session.
type MFARequiredError struct {
	MFAToken string
}

// Error implements the error interface.
func (e *MFARequiredError) Error() string {
	return "MFA required to complete login"
}
