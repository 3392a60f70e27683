package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/service"
	"github.com/aussiebroadwan/tenantry/pkg/httpx"
	"github.com/aussiebroadwan/tenantry/pkg/tenantsdk"
)

type InvitationPendingHandler struct {
	InvitationService *service.InvitationService
}

// ServeHTTP godoc
//
//	@Summary		List Pending Invitations
//	@Description	List live invitations addressed to the email in the caller's identity token. Tokens are never included.
//	@Tags			Invitations
//	@Produce		json
//	@Success		200	{object}	tenantsdk.ListPendingInvitationsResponse
//	@Failure		400	{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		401	{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		503	{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/invitations/pending [get].
func (h *InvitationPendingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	email := httpx.EmailFromContext(r.Context())
	if email == "" {
		writeBadRequest(w, "identity token carries no email")
		return
	}

	invs, err := h.InvitationService.ListPending(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := tenantsdk.ListPendingInvitationsResponse{
		Invitations: make([]tenantsdk.PendingInvitation, 0, len(invs)),
	}
	for _, inv := range invs {
		resp.Invitations = append(resp.Invitations, tenantsdk.PendingInvitation{
			ID:        inv.ID,
			Kind:      string(inv.Kind),
			Role:      string(inv.Role),
			AccountID: inv.AccountID,
			ExpiresAt: inv.ExpiresAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
