package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/service"
	"github.com/aussiebroadwan/tenantry/pkg/httpx"
	"github.com/aussiebroadwan/tenantry/pkg/tenantsdk"
)

type InvitationValidateHandler struct {
	Validator *service.InvitationValidator
}

// ServeHTTP godoc
//
//	@Summary		Validate Invitation
//	@Description	Check whether a token can be used by an email right now. Nothing is consumed.
//	@Description	Definitive outcomes answer 200 with valid=false and an error of not_found, expired, email_mismatch or already_used.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tenantsdk.ValidateInvitationRequest	true	"Token and email"
//	@Success		200		{object}	tenantsdk.InvitationResult
//	@Failure		400		{object}	tenantsdk.ErrorResponse		"error, error_description"
//	@Failure		429		{object}	tenantsdk.ErrorResponse		"error, error_description"
//	@Failure		503		{object}	tenantsdk.InvitationResult	"store_unavailable"
//	@Router			/v1/invitations/validate [post].
func (h *InvitationValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req tenantsdk.ValidateInvitationRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Token == "" {
		writeBadRequest(w, "token is required")
		return
	}
	if req.Email == "" {
		writeBadRequest(w, "email is required")
		return
	}

	grant, err := h.Validator.Validate(r.Context(), req.Token, req.Email)
	writeResult(w, r, http.StatusOK, grant, err)
}
