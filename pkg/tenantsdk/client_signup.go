package tenantsdk

import (
	"context"
	"net/http"
)

// IssueSignupToken mints a short-lived token that assigns a global role on
// redemption.
func (s *Session) IssueSignupToken(ctx context.Context, req IssueSignupTokenRequest) (*SignupTokenResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/signup-tokens", req)
	if err != nil {
		return nil, err
	}

	var out SignupTokenResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// RedeemSignupToken consumes a signup token for the caller and returns the
// caller's updated user record.
func (s *Session) RedeemSignupToken(ctx context.Context, req RedeemSignupTokenRequest) (*UserResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/signup-tokens/redeem", req)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
