package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/service"
	"github.com/aussiebroadwan/tenantry/pkg/httpx"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
	"github.com/aussiebroadwan/tenantry/pkg/tenantsdk"
)

type InvitationAcceptHandler struct {
	MembershipResolver *service.MembershipResolver
}

// ServeHTTP godoc
//
//	@Summary		Accept Invitation
//	@Description	Join the invitation's account with the role it binds. The email must match both the invitation and the caller's identity token.
//	@Description	Repeating a successful accept returns the same result.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tenantsdk.AcceptInvitationRequest	true	"Token, email and optional user_id"
//	@Success		200		{object}	tenantsdk.InvitationResult
//	@Failure		400		{object}	tenantsdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	tenantsdk.ErrorResponse		"error, error_description"
//	@Failure		403		{object}	tenantsdk.InvitationResult	"email_mismatch, unauthorized"
//	@Failure		404		{object}	tenantsdk.InvitationResult	"not_found"
//	@Failure		409		{object}	tenantsdk.InvitationResult	"already_used, role_conflict"
//	@Failure		410		{object}	tenantsdk.InvitationResult	"expired"
//	@Failure		503		{object}	tenantsdk.InvitationResult	"store_unavailable"
//	@Security		BearerAuth
//	@Router			/v1/invitations/accept [post].
func (h *InvitationAcceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req tenantsdk.AcceptInvitationRequest
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

	subject := callerID(r)
	if req.UserID != "" && req.UserID != subject {
		log.Warn("accept user_id does not match bearer subject")
		h.reject(w, r, domain.ErrUnauthorized)
		return
	}

	// The body email must be the caller's own, not just the invited one.
	if claimed := httpx.EmailFromContext(ctx); claimed != "" && !domain.EmailsMatch(claimed, req.Email) {
		log.Info("accept email does not match identity token", slogx.Email("email", req.Email))
		h.reject(w, r, domain.ErrEmailMismatch)
		return
	}

	grant, err := h.MembershipResolver.Accept(ctx, req.Token, subject, req.Email)
	if err != nil {
		h.reject(w, r, err)
		return
	}

	log.Debug("invitation accepted over http", slog.String("account_id", grant.AccountID))
	writeResult(w, r, http.StatusOK, grant, nil)
}

func (h *InvitationAcceptHandler) reject(w http.ResponseWriter, r *http.Request, err error) {
	writeResult(w, r, statusFor(domain.KindOf(err)), domain.Grant{}, err)
}
