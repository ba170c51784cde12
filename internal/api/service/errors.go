package service

import "errors"

// Errors returned by the services. The HTTP layer maps each of them to a
// status and message; anything else is an internal error.
var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidCredentials = errors.New("email password combination does not match")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrBadToken           = errors.New("bad jwt token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCode        = errors.New("not a valid code")
	ErrUnknownEmail       = errors.New("unknown email address")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrEmailTaken         = errors.New("a user with that email already exists")
	ErrAccessNotConfirmed = errors.New("access has not been confirmed recently")
	ErrMFANotSupported    = errors.New("mfa method does not support sending codes")
	ErrInvalidMFAMethod   = errors.New("unknown mfa method")
	ErrInvalidRole        = errors.New("roles must be non-empty and contain no spaces")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
)
