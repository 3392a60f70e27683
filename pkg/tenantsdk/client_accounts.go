package tenantsdk

import (
	"context"
	"net/http"
	"net/url"
)

// CreateAccount creates an account owned by the caller, or by req.OwnerID
// when the caller is an admin.
func (s *Session) CreateAccount(ctx context.Context, req CreateAccountRequest) (*AccountResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/accounts", req)
	if err != nil {
		return nil, err
	}

	var out AccountResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMembers lists the members of an account the caller belongs to.
func (s *Session) ListMembers(ctx context.Context, accountID string) (*ListMembersResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/accounts/"+url.PathEscape(accountID)+"/members", nil)
	if err != nil {
		return nil, err
	}

	var out ListMembersResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAccount fetches an account the caller belongs to.
func (s *Session) GetAccount(ctx context.Context, accountID string) (*AccountResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/accounts/"+url.PathEscape(accountID), nil)
	if err != nil {
		return nil, err
	}

	var out AccountResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOwnedAccounts lists the accounts the caller owns.
func (s *Session) ListOwnedAccounts(ctx context.Context) (*ListAccountsResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/accounts", nil)
	if err != nil {
		return nil, err
	}

	var out ListAccountsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
