package apisdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the storefront admin API.
// It provides access to unauthenticated operations and can create authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new API client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSession wraps an existing session token.
func (c *SDKClient) NewSession(token string) *Session {
	return &Session{client: c, token: token}
}

// Register creates an account and returns a session for it.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	var resp DataResponse[TokenResponse]
	if err := c.call(ctx, http.MethodPost, "/1/auth/register", "", req, &resp); err != nil {
		return nil, err
	}
	return c.NewSession(resp.Data.Token), nil
}

// Login authenticates with email and password. For accounts with MFA
// enabled the returned token is a temporary "mfa" token (see
// TokenResponse.Type) that must be exchanged with VerifyMFA.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var resp DataResponse[TokenResponse]
	if err := c.call(ctx, http.MethodPost, "/1/auth/login", "", LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// AuthenticateWithPassword logs in and returns a session. It fails with
// ErrMFARequired when the account needs a second factor.
func (c *SDKClient) AuthenticateWithPassword(ctx context.Context, email, password string) (*Session, error) {
	tok, err := c.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if tok.Type() == TokenTypeMFA {
		return nil, &MFARequiredError{MFAToken: tok.Token}
	}
	return c.NewSession(tok.Token), nil
}

// RequestPassword asks the server to email a password reset link.
func (c *SDKClient) RequestPassword(ctx context.Context, email string) error {
	return c.call(ctx, http.MethodPost, "/1/auth/request-password", "", RequestPasswordRequest{Email: email}, nil)
}

// SetPassword consumes a "password" temporary token.
func (c *SDKClient) SetPassword(ctx context.Context, passwordToken, password string) (*Session, error) {
	var resp DataResponse[TokenResponse]
	if err := c.call(ctx, http.MethodPost, "/1/auth/set-password", passwordToken, PasswordRequest{Password: password}, &resp); err != nil {
		return nil, err
	}
	return c.NewSession(resp.Data.Token), nil
}

// VerifyMFA exchanges an "mfa" temporary token and a code for a session.
func (c *SDKClient) VerifyMFA(ctx context.Context, mfaToken, code string) (*Session, error) {
	var resp DataResponse[TokenResponse]
	if err := c.call(ctx, http.MethodPost, "/1/auth/mfa/verify", mfaToken, CodeRequest{Code: code}, &resp); err != nil {
		return nil, err
	}
	return c.NewSession(resp.Data.Token), nil
}

// SendMFAToken asks the server to text a login code to an sms user.
func (c *SDKClient) SendMFAToken(ctx context.Context, mfaToken string) error {
	return c.call(ctx, http.MethodPost, "/1/auth/mfa/send-token", mfaToken, nil, nil)
}
