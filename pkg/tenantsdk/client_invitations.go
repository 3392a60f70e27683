package tenantsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ValidateInvitation checks a token against an email without consuming it.
// This is a public endpoint. A definitive negative outcome is returned as
// both a result with Valid=false and an *APIError.
func (c *Client) ValidateInvitation(ctx context.Context, req ValidateInvitationRequest) (*InvitationResult, error) {
	resp, err := c.do(ctx, http.MethodPost, "/v1/invitations/validate", "", req)
	if err != nil {
		return nil, err
	}
	return decodeResult(resp)
}

// IssueInvitation creates an invitation into accountID. The raw token is in
// the response and nowhere else.
func (s *Session) IssueInvitation(
	ctx context.Context,
	accountID string,
	req IssueInvitationRequest,
) (*IssueInvitationResponse, error) {
	path := "/v1/accounts/" + url.PathEscape(accountID) + "/invitations"
	resp, err := s.do(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}

	var out IssueInvitationResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// AcceptInvitation joins the caller to the invitation's account. Repeating
// a successful call returns the same result.
func (s *Session) AcceptInvitation(ctx context.Context, req AcceptInvitationRequest) (*InvitationResult, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/invitations/accept", req)
	if err != nil {
		return nil, err
	}
	return decodeResult(resp)
}

// MarkInvitationUsed retires an invitation. It succeeds whatever state the
// invitation was in.
func (s *Session) MarkInvitationUsed(ctx context.Context, token string) error {
	resp, err := s.do(ctx, http.MethodPost, "/v1/invitations/mark-used", MarkUsedRequest{Token: token})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// ListPendingInvitations lists live invitations addressed to the caller's
// email.
func (s *Session) ListPendingInvitations(ctx context.Context) (*ListPendingInvitationsResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/invitations/pending", nil)
	if err != nil {
		return nil, err
	}

	var out ListPendingInvitationsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
