package http

import (
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/api/service"
	"github.com/aussiebroadwan/storefront/pkg/apisdk"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
)

// AuthHandler serves the /1/auth routes.
type AuthHandler struct {
	Auth *service.AuthService
	MFA  *service.MFAService
}

func writeToken(w http.ResponseWriter, token string) {
	httpx.WriteData(w, http.StatusOK, apisdk.TokenResponse{Token: token})
}

// HandleRegister handles POST /1/auth/register
//
//	@Summary		Register
//	@Description	Creates an account and returns a session token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		apisdk.RegisterRequest							true	"New account"
//	@Success		200		{object}	apisdk.DataResponse[apisdk.TokenResponse]	"Session token"
//	@Failure		400		{object}	httpx.ErrorBody									"Invalid body, weak password or email taken"
//	@Failure		429		{object}	httpx.ErrorBody									"Rate limited"
//	@Router			/1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req apisdk.RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	token, err := h.Auth.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeToken(w, token)
}

// HandleLogin handles POST /1/auth/login
//
//	@Summary		Login
//	@Description	Checks email and password. The token's "type" claim is "user" for a session,
//	@Description	or "mfa" when the account needs a second factor (see /1/auth/mfa/verify).
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		apisdk.LoginRequest							true	"Credentials"
//	@Success		200		{object}	apisdk.DataResponse[apisdk.TokenResponse]	"Session or mfa token"
//	@Failure		401		{object}	httpx.ErrorBody								"Bad credentials or too many attempts"
//	@Failure		429		{object}	httpx.ErrorBody								"Rate limited"
//	@Router			/1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req apisdk.LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	token, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeToken(w, token)
}

// HandleLogout handles POST /1/auth/logout
//
//	@Summary		Logout
//	@Description	Ends the current session. The token is rejected from now on.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid or missing token"
//	@Router			/1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.UserIDFromContext(r.Context())
	if err := h.Auth.Logout(r.Context(), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteNoContent(w)
}

// HandleConfirmAccess handles POST /1/auth/confirm-access
//
//	@Summary		Confirm access
//	@Description	Re-checks the password. MFA settings can be changed for 30 minutes afterwards.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	apisdk.PasswordRequest	true	"Current password"
//	@Success		204
//	@Failure		401	{object}	httpx.ErrorBody	"Bad password or too many attempts"
//	@Router			/1/auth/confirm-access [post].
func (h *AuthHandler) HandleConfirmAccess(w http.ResponseWriter, r *http.Request) {
	var req apisdk.PasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	userID, _ := httpx.UserIDFromContext(r.Context())
	if err := h.Auth.ConfirmAccess(r.Context(), userID, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteNoContent(w)
}

// HandleRequestPassword handles POST /1/auth/request-password
//
//	@Summary		Request password reset
//	@Description	Emails a single use link to choose a new password.
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	apisdk.RequestPasswordRequest	true	"Account email"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorBody	"Unknown email address"
//	@Router			/1/auth/request-password [post].
func (h *AuthHandler) HandleRequestPassword(w http.ResponseWriter, r *http.Request) {
	var req apisdk.RequestPasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.Auth.RequestPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteNoContent(w)
}

// HandleSetPassword handles POST /1/auth/set-password
//
//	@Summary		Set password
//	@Description	Consumes a "password" token from the reset email and starts a session.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		apisdk.PasswordRequest						true	"New password"
//	@Success		200		{object}	apisdk.DataResponse[apisdk.TokenResponse]	"Session token"
//	@Failure		400		{object}	httpx.ErrorBody								"Invalid token or weak password"
//	@Failure		401		{object}	httpx.ErrorBody								"Bad jwt token"
//	@Router			/1/auth/set-password [post].
func (h *AuthHandler) HandleSetPassword(w http.ResponseWriter, r *http.Request) {
	var req apisdk.PasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	claims, _ := httpx.ClaimsFromContext(r.Context())
	token, err := h.Auth.SetPassword(r.Context(), claims, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeToken(w, token)
}

// HandleMFAVerify handles POST /1/auth/mfa/verify
//
//	@Summary		Verify MFA code
//	@Description	Exchanges an "mfa" token and a TOTP, SMS or backup code for a session token.
//	@Description	Backup codes can be used once.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		apisdk.CodeRequest							true	"Code"
//	@Success		200		{object}	apisdk.DataResponse[apisdk.TokenResponse]	"Session token"
//	@Failure		400		{object}	httpx.ErrorBody								"Not a valid code"
//	@Failure		401		{object}	httpx.ErrorBody								"Bad jwt token or too many attempts"
//	@Router			/1/auth/mfa/verify [post].
func (h *AuthHandler) HandleMFAVerify(w http.ResponseWriter, r *http.Request) {
	var req apisdk.CodeRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	claims, _ := httpx.ClaimsFromContext(r.Context())
	token, err := h.MFA.Verify(r.Context(), claims, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeToken(w, token)
}

// HandleMFASendToken handles POST /1/auth/mfa/send-token
//
//	@Summary		Send MFA code
//	@Description	Texts the current code to users with SMS MFA.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorBody	"MFA method does not support sending codes"
//	@Failure		401	{object}	httpx.ErrorBody	"Bad jwt token"
//	@Router			/1/auth/mfa/send-token [post].
func (h *AuthHandler) HandleMFASendToken(w http.ResponseWriter, r *http.Request) {
	claims, _ := httpx.ClaimsFromContext(r.Context())
	if err := h.MFA.SendToken(r.Context(), claims); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteNoContent(w)
}
