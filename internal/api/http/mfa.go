package http

import (
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/api/audit"
	"github.com/aussiebroadwan/storefront/internal/api/domain"
	"github.com/aussiebroadwan/storefront/internal/api/service"
	"github.com/aussiebroadwan/storefront/pkg/apisdk"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
)

const mfaPrefix = "/1/mfa"

// MFAHandler serves the /1/mfa routes. All of them need a session whose
// access was confirmed recently.
type MFAHandler struct {
	MFA *service.MFAService
}

// HandleConfig handles POST /1/mfa/config
//
//	@Summary		Configure MFA
//	@Description	Returns a new candidate secret and otpauth:// URI. Nothing is stored until /1/mfa/enable.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		apisdk.MFAConfigRequest							true	"Method"
//	@Success		200		{object}	apisdk.DataResponse[apisdk.MFAConfigResponse]	"Candidate secret"
//	@Failure		400		{object}	httpx.ErrorBody									"Unknown method"
//	@Failure		403		{object}	httpx.ErrorBody									"Access not confirmed"
//	@Router			/1/mfa/config [post].
func (h *MFAHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	var req apisdk.MFAConfigRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	userID, _ := httpx.UserIDFromContext(r.Context())
	setup, err := h.MFA.Config(r.Context(), userID, domain.MFAMethod(req.Method))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, apisdk.MFAConfigResponse{Secret: setup.Secret, URI: setup.URI})
}

// HandleSendCode handles POST /1/mfa/send-code
//
//	@Summary		Send setup code
//	@Description	Texts the code of a candidate secret while setting up SMS.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	apisdk.MFASendCodeRequest	true	"Candidate secret and phone number"
//	@Success		204
//	@Failure		403	{object}	httpx.ErrorBody	"Access not confirmed"
//	@Router			/1/mfa/send-code [post].
func (h *MFAHandler) HandleSendCode(w http.ResponseWriter, r *http.Request) {
	var req apisdk.MFASendCodeRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	userID, _ := httpx.UserIDFromContext(r.Context())
	if err := h.MFA.SendSetupCode(r.Context(), userID, req.Secret, req.PhoneNumber); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteNoContent(w)
}

// HandleCheckCode handles POST /1/mfa/check-code
//
//	@Summary		Check setup code
//	@Description	Checks a code against a candidate secret.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	apisdk.MFACheckCodeRequest	true	"Candidate secret and code"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorBody	"Not a valid code"
//	@Failure		403	{object}	httpx.ErrorBody	"Access not confirmed"
//	@Router			/1/mfa/check-code [post].
func (h *MFAHandler) HandleCheckCode(w http.ResponseWriter, r *http.Request) {
	var req apisdk.MFACheckCodeRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	userID, _ := httpx.UserIDFromContext(r.Context())
	if err := h.MFA.CheckCode(r.Context(), userID, req.Secret, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteNoContent(w)
}

// HandleGenerateBackupCodes handles POST /1/mfa/generate-backup-codes
//
//	@Summary		Generate backup codes
//	@Description	Returns ten codes to hand to the user. They are stored by /1/mfa/enable.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	apisdk.DataResponse[[]string]	"Backup codes"
//	@Failure		403	{object}	httpx.ErrorBody					"Access not confirmed"
//	@Router			/1/mfa/generate-backup-codes [post].
func (h *MFAHandler) HandleGenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.UserIDFromContext(r.Context())
	codes, err := h.MFA.GenerateBackupCodes(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, codes)
}

// HandleEnable handles POST /1/mfa/enable
//
//	@Summary		Enable MFA
//	@Description	Stores the method, secret and backup codes.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	apisdk.MFAEnableRequest	true	"Configured method"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorBody	"Invalid configuration"
//	@Failure		403	{object}	httpx.ErrorBody	"Access not confirmed"
//	@Router			/1/mfa/enable [post].
func (h *MFAHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	var req apisdk.MFAEnableRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	userID, _ := httpx.UserIDFromContext(r.Context())
	err := h.MFA.Enable(r.Context(), audit.FromRequest(r, mfaPrefix), userID, service.EnableInput{
		Method:      domain.MFAMethod(req.Method),
		Secret:      req.Secret,
		PhoneNumber: req.PhoneNumber,
		BackupCodes: req.BackupCodes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteNoContent(w)
}

// HandleDisable handles DELETE /1/mfa/disable
//
//	@Summary		Disable MFA
//	@Tags			MFA
//	@Security		BearerAuth
//	@Success		204
//	@Failure		403	{object}	httpx.ErrorBody	"Access not confirmed"
//	@Router			/1/mfa/disable [delete].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.UserIDFromContext(r.Context())
	if err := h.MFA.Disable(r.Context(), audit.FromRequest(r, mfaPrefix), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteNoContent(w)
}
