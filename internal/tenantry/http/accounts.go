package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/service"
	"github.com/aussiebroadwan/tenantry/pkg/httpx"
	"github.com/aussiebroadwan/tenantry/pkg/tenantsdk"
)

type AccountsHandler struct {
	AccountService *service.AccountService
}

func toAccountResponse(a domain.Account) tenantsdk.AccountResponse {
	return tenantsdk.AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		OwnerID:   a.OwnerID,
		CreatedAt: a.CreatedAt,
	}
}

// HandleCreate godoc
//
//	@Summary		Create Account
//	@Description	Create an account owned by a coach, together with the owner's membership.
//	@Description	Coaches create accounts for themselves; admins may name another coach as owner.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tenantsdk.CreateAccountRequest	true	"Account"
//	@Success		201		{object}	tenantsdk.AccountResponse
//	@Failure		400		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		503		{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/accounts [post].
func (h *AccountsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req tenantsdk.CreateAccountRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	acct, err := h.AccountService.CreateAccount(r.Context(), callerID(r), req.Name, req.OwnerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toAccountResponse(acct))
}

// HandleListOwned godoc
//
//	@Summary		List Owned Accounts
//	@Description	List the accounts owned by the caller.
//	@Tags			Accounts
//	@Produce		json
//	@Success		200	{object}	tenantsdk.ListAccountsResponse
//	@Failure		401	{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		503	{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/accounts [get].
func (h *AccountsHandler) HandleListOwned(w http.ResponseWriter, r *http.Request) {
	accts, err := h.AccountService.ListOwned(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := tenantsdk.ListAccountsResponse{Accounts: make([]tenantsdk.AccountResponse, 0, len(accts))}
	for _, a := range accts {
		resp.Accounts = append(resp.Accounts, toAccountResponse(a))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet godoc
//
//	@Summary		Get Account
//	@Tags			Accounts
//	@Produce		json
//	@Param			id	path		string	true	"Account ID"
//	@Success		200	{object}	tenantsdk.AccountResponse
//	@Failure		403	{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/accounts/{id} [get].
func (h *AccountsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	acct, err := h.AccountService.GetAccount(r.Context(), callerID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccountResponse(acct))
}

// HandleListMembers godoc
//
//	@Summary		List Account Members
//	@Description	List the members of an account. Any member, or an admin, may call this.
//	@Tags			Accounts
//	@Produce		json
//	@Param			id	path		string	true	"Account ID"
//	@Success		200	{object}	tenantsdk.ListMembersResponse
//	@Failure		403	{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Failure		503	{object}	tenantsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/accounts/{id}/members [get].
func (h *AccountsHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("id")
	members, err := h.AccountService.ListMembers(r.Context(), callerID(r), accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := tenantsdk.ListMembersResponse{
		AccountID: accountID,
		Members:   make([]tenantsdk.MemberResponse, 0, len(members)),
	}
	for _, m := range members {
		resp.Members = append(resp.Members, tenantsdk.MemberResponse{
			UserID:    m.UserID,
			Role:      string(m.Role),
			CreatedAt: m.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
