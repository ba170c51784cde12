package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/storefront/internal/api/domain"
	"github.com/aussiebroadwan/storefront/internal/api/service"
	"github.com/aussiebroadwan/storefront/pkg/apisdk"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/idx"
)

type AuditHandler struct {
	Audit *service.AuditService
}

// HandleList handles GET /1/audit-entries
//
//	@Summary		List audit entries
//	@Description	Newest first. limit defaults to 50 and is capped at 500.
//	@Tags			Audit
//	@Security		BearerAuth
//	@Produce		json
//	@Param			objectId	query		string	false	"Audited object id"
//	@Param			type		query		string	false	"security, admin or user"
//	@Param			userId		query		string	false	"Acting user id"
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Entries to skip"
//	@Success		200			{object}	apisdk.ListResponse[apisdk.AuditEntry]
//	@Failure		400			{object}	httpx.ErrorBody	"Bad query"
//	@Failure		403			{object}	httpx.ErrorBody	"Not an admin"
//	@Router			/1/audit-entries [get].
func (h *AuditHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.AuditFilter{Type: domain.AuditType(q.Get("type"))}

	var err error
	if f.ObjectID, err = idParam(q.Get("objectId")); err != nil {
		apisdk.NewAPIError(http.StatusBadRequest, `"objectId" must be a valid id`).WriteError(w)
		return
	}
	if f.UserID, err = idParam(q.Get("userId")); err != nil {
		apisdk.NewAPIError(http.StatusBadRequest, `"userId" must be a valid id`).WriteError(w)
		return
	}
	if f.Limit, err = intParam(q.Get("limit")); err != nil {
		apisdk.NewAPIError(http.StatusBadRequest, `"limit" must be a number`).WriteError(w)
		return
	}
	if f.Offset, err = intParam(q.Get("offset")); err != nil {
		apisdk.NewAPIError(http.StatusBadRequest, `"offset" must be a number`).WriteError(w)
		return
	}

	page, err := h.Audit.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]apisdk.AuditEntry, 0, len(page.Entries))
	for _, e := range page.Entries {
		out = append(out, apisdk.AuditEntry{
			ID:                  e.ID,
			Activity:            e.Activity,
			Type:                string(e.Type),
			ObjectID:            e.ObjectID,
			ObjectType:          e.ObjectType,
			ObjectBefore:        e.ObjectBefore,
			ObjectAfter:         e.ObjectAfter,
			RequestMethod:       e.RequestMethod,
			RequestURL:          e.RequestURL,
			RouteNormalizedPath: e.RouteNormalizedPath,
			RoutePrefix:         e.RoutePrefix,
			UserID:              e.UserID,
			CreatedAt:           e.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, apisdk.ListResponse[apisdk.AuditEntry]{
		Data: out,
		Meta: apisdk.ListMeta{Total: page.Total, Limit: page.Limit, Offset: page.Offset},
	})
}

func idParam(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	id, err := idx.Parse(s)
	return id.String(), err
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
