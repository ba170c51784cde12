/*
Package apisdk provides a client SDK for the storefront admin API and the
response types shared with the server.

# SDKClient vs Session

  - SDKClient: unauthenticated operations (register, login, password
    reset, MFA challenge) that produce Sessions
  - Session: operations made with a "user" token

	client := apisdk.NewSDKClient("https://api.example.com")

	session, err := client.AuthenticateWithPassword(ctx, email, password)
	var mfa *apisdk.MFARequiredError
	if errors.As(err, &mfa) {
		session, err = client.VerifyMFA(ctx, mfa.MFAToken, code)
	}

	me, err := session.Me(ctx)

# Errors

Every failed call returns an *APIError carrying the status and message
from the error envelope. The predefined errors compare with errors.Is:

	if errors.Is(err, apisdk.ErrTooManyAttempts) {
		// back off
	}
*/
package apisdk
