package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/service"
	"github.com/aussiebroadwan/tenantry/pkg/httpx"
	"github.com/aussiebroadwan/tenantry/pkg/tenantsdk"
)

type SignupTokensHandler struct {
	SignupService *service.SignupService
}

// HandleIssue godoc
//
//	@Summary		Issue Signup Token
//	@Description	Mint a short-lived token that assigns a global role when redeemed. Admins may bind coach, agency or client; coaches may bind agency or client.
//	@Tags			Signup Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tenantsdk.IssueSignupTokenRequest	true	"Email and role"
//	@Success		201		{object}	tenantsdk.SignupTokenResponse
//	@Failure		400		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		503		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/signup-tokens [post].
func (h *SignupTokensHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	var req tenantsdk.IssueSignupTokenRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	role, ok := domain.ParseGlobalRole(req.Role)
	if !ok {
		writeBadRequest(w, "role must be coach, agency or client")
		return
	}

	token, err := h.SignupService.Issue(r.Context(), callerID(r), req.Email, role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, tenantsdk.SignupTokenResponse{
		Token: token,
		Email: domain.NormalizeEmail(req.Email),
		Role:  string(role),
	})
}

// HandleRedeem godoc
//
//	@Summary		Redeem Signup Token
//	@Description	Consume a signup token for the caller and raise their global role to the one it binds. Roles are never lowered.
//	@Tags			Signup Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tenantsdk.RedeemSignupTokenRequest	true	"Token and email"
//	@Success		200		{object}	tenantsdk.UserResponse
//	@Failure		400		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	tenantsdk.ErrorResponse	"email_mismatch, unauthorized"
//	@Failure		404		{object}	tenantsdk.ErrorResponse	"not_found"
//	@Failure		409		{object}	tenantsdk.ErrorResponse	"already_used"
//	@Failure		410		{object}	tenantsdk.ErrorResponse	"expired"
//	@Failure		503		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/signup-tokens/redeem [post].
func (h *SignupTokensHandler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tenantsdk.RedeemSignupTokenRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Token == "" {
		writeBadRequest(w, "token is required")
		return
	}

	if claimed := httpx.EmailFromContext(ctx); claimed != "" && !domain.EmailsMatch(claimed, req.Email) {
		writeError(w, r, domain.ErrEmailMismatch)
		return
	}

	u, err := h.SignupService.Redeem(ctx, req.Token, callerID(r), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tenantsdk.UserResponse{
		ID:    u.ID,
		Email: u.Email,
		Role:  string(u.Role),
	})
}
