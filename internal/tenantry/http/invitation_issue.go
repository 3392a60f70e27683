package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/service"
	"github.com/aussiebroadwan/tenantry/pkg/httpx"
	"github.com/aussiebroadwan/tenantry/pkg/tenantsdk"
)

type InvitationIssueHandler struct {
	InvitationService *service.InvitationService
}

// ServeHTTP godoc
//
//	@Summary		Issue Invitation
//	@Description	Issue an invitation into an account. Owners may bind agency, agency members may bind client.
//	@Description	The raw token is only ever returned here.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Account ID"
//	@Param			request	body		tenantsdk.IssueInvitationRequest	true	"Invitation"
//	@Success		201		{object}	tenantsdk.IssueInvitationResponse
//	@Failure		400		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		503		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/accounts/{id}/invitations [post].
func (h *InvitationIssueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req tenantsdk.IssueInvitationRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	// Unknown roles are rejected by the service along with owner.
	role, _ := domain.ParseMemberRole(req.Role)

	issued, err := h.InvitationService.Issue(r.Context(), callerID(r), r.PathValue("id"), req.Email, role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	inv := issued.Invitation
	httpx.WriteJSON(w, http.StatusCreated, tenantsdk.IssueInvitationResponse{
		ID:        inv.ID,
		Token:     issued.Token,
		Kind:      string(inv.Kind),
		Email:     inv.Email,
		Role:      string(inv.Role),
		AccountID: inv.AccountID,
		ExpiresAt: inv.ExpiresAt,
	})
}
