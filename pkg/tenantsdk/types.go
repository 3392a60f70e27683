package tenantsdk

import "time"

// ErrorResponse is the body of every non-2xx response except invitation
// results, which carry their error inside InvitationResult.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ============================================================================
// Accounts
// ============================================================================

type CreateAccountRequest struct {
	Name string `json:"name"`

	// OwnerID defaults to the caller. Only admins may create accounts for
	// another coach.
	OwnerID string `json:"owner_id,omitempty"`
}

type AccountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

type MemberResponse struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type ListMembersResponse struct {
	AccountID string           `json:"account_id"`
	Members   []MemberResponse `json:"members"`
}

// ============================================================================
// Invitations
// ============================================================================

type IssueInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"` // agency or client
}

// IssueInvitationResponse carries the raw token. It is shown once and cannot
// be recovered from the service afterwards.
type IssueInvitationResponse struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Kind      string    `json:"kind"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	AccountID string    `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ValidateInvitationRequest struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token"`
	Email string `json:"email"`

	// UserID is sent by registration flows. It must equal the bearer subject.
	UserID string `json:"user_id,omitempty"`
}

// InvitationResult is the outcome of a validation or acceptance. Role and
// AccountID are set only when Valid is true; Error only when it is false.
type InvitationResult struct {
	Valid     bool   `json:"valid"`
	Role      string `json:"role,omitempty"`
	AccountID string `json:"account_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// PendingInvitation describes a live invitation without its token.
type PendingInvitation struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Role      string    `json:"role"`
	AccountID string    `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ListPendingInvitationsResponse struct {
	Invitations []PendingInvitation `json:"invitations"`
}

type MarkUsedRequest struct {
	Token string `json:"token"`
}

// ============================================================================
// Signup tokens
// ============================================================================

type IssueSignupTokenRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"` // coach, agency or client
}

// SignupTokenResponse carries the raw token. It expires after the
// deployment's invite TTL.
type SignupTokenResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type RedeemSignupTokenRequest struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
