package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/service"
	"github.com/aussiebroadwan/tenantry/pkg/httpx"
	"github.com/aussiebroadwan/tenantry/pkg/tenantsdk"
)

type InvitationMarkUsedHandler struct {
	InvitationService *service.InvitationService
}

// ServeHTTP godoc
//
//	@Summary		Mark Invitation Used
//	@Description	Retire an invitation. Succeeds whatever state the invitation is in, including unknown tokens.
//	@Tags			Invitations
//	@Accept			json
//	@Param			request	body	tenantsdk.MarkUsedRequest	true	"Token"
//	@Success		204
//	@Failure		400	{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		401	{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		503	{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invitations/mark-used [post].
func (h *InvitationMarkUsedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req tenantsdk.MarkUsedRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Token == "" {
		writeBadRequest(w, "token is required")
		return
	}

	if err := h.InvitationService.MarkUsed(r.Context(), req.Token); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
