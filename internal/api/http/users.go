package http

import (
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/api/audit"
	"github.com/aussiebroadwan/storefront/internal/api/domain"
	"github.com/aussiebroadwan/storefront/internal/api/service"
	"github.com/aussiebroadwan/storefront/pkg/apisdk"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

const usersPrefix = "/1/users"

// UsersHandler serves /1/users. Everything but /me is for admins.
type UsersHandler struct {
	Users *service.UserService
}

func toAPIUser(u domain.User) apisdk.User {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return apisdk.User{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Roles:          roles,
		MFAMethod:      string(u.MFAMethod),
		MFAPhoneNumber: u.MFAPhoneNumber,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func writeUser(w http.ResponseWriter, u domain.User) {
	httpx.WriteData(w, http.StatusOK, toAPIUser(u))
}

// pathUserID reads {userId}. Values that are not ids answer 404, the same
// as ids that match no user.
func pathUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := idx.Parse(r.PathValue("userId"))
	if err != nil {
		slogx.FromContext(r.Context()).Debug("malformed user id", "err", err)
		apisdk.ErrNotFound.WriteError(w)
		return "", false
	}
	return id.String(), true
}

// HandleMe handles GET /1/users/me
//
//	@Summary		Current user
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	apisdk.DataResponse[apisdk.User]
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid or missing token"
//	@Router			/1/users/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.UserIDFromContext(r.Context())
	u, err := h.Users.Me(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeUser(w, u)
}

// HandleUpdateMe handles PATCH /1/users/me
//
//	@Summary		Update current user
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		apisdk.UpdateMeRequest	true	"Profile changes"
//	@Success		200		{object}	apisdk.DataResponse[apisdk.User]
//	@Router			/1/users/me [patch].
func (h *UsersHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req apisdk.UpdateMeRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	userID, _ := httpx.UserIDFromContext(r.Context())
	u, err := h.Users.UpdateMe(r.Context(), userID, service.UpdateMeInput{Name: req.Name})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeUser(w, u)
}

// HandleList handles GET /1/users
//
//	@Summary		List users
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			role	query		string	false	"Only users holding this role"
//	@Success		200		{object}	apisdk.ListResponse[apisdk.User]
//	@Failure		403		{object}	httpx.ErrorBody	"Not an admin"
//	@Router			/1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]apisdk.User, 0, len(users))
	for _, u := range users {
		out = append(out, toAPIUser(u))
	}
	httpx.WriteJSON(w, http.StatusOK, apisdk.ListResponse[apisdk.User]{
		Data: out,
		Meta: apisdk.ListMeta{Total: len(out), Limit: len(out)},
	})
}

// HandleGet handles GET /1/users/{userId}
//
//	@Summary		Get user
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			userId	path		string	true	"User id"
//	@Success		200		{object}	apisdk.DataResponse[apisdk.User]
//	@Failure		404		{object}	httpx.ErrorBody	"Not found"
//	@Router			/1/users/{userId} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	u, err := h.Users.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeUser(w, u)
}

// HandleCreate handles POST /1/users
//
//	@Summary		Create user
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		apisdk.CreateUserRequest	true	"New account"
//	@Success		200		{object}	apisdk.DataResponse[apisdk.User]
//	@Failure		400		{object}	httpx.ErrorBody	"Invalid body or email taken"
//	@Router			/1/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req apisdk.CreateUserRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	u, err := h.Users.Create(r.Context(), audit.FromRequest(r, usersPrefix), service.CreateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeUser(w, u)
}

// HandleUpdate handles PATCH /1/users/{userId}
//
//	@Summary		Update user
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			userId	path		string						true	"User id"
//	@Param			request	body		apisdk.UpdateUserRequest	true	"Changes"
//	@Success		200		{object}	apisdk.DataResponse[apisdk.User]
//	@Failure		404		{object}	httpx.ErrorBody	"Not found"
//	@Router			/1/users/{userId} [patch].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	var req apisdk.UpdateUserRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	u, err := h.Users.Update(r.Context(), audit.FromRequest(r, usersPrefix), userID, service.UpdateUserInput{
		Email: req.Email,
		Name:  req.Name,
		Roles: req.Roles,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeUser(w, u)
}

// HandleDelete handles DELETE /1/users/{userId}
//
//	@Summary		Delete user
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			userId	path	string	true	"User id"
//	@Success		204
//	@Failure		404	{object}	httpx.ErrorBody	"Not found"
//	@Router			/1/users/{userId} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	if err := h.Users.Delete(r.Context(), audit.FromRequest(r, usersPrefix), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteNoContent(w)
}
