package domain

import "time"

// DefaultInviteTTL is the expiry window for invitations and signup tokens.
const DefaultInviteTTL = 7 * 24 * time.Hour

type InvitationKind string

const (
	KindAgencyInvitation InvitationKind = "agency"
	KindClientInvitation InvitationKind = "client"
)

// KindFor derives the invitation kind from the bound role.
func KindFor(role MemberRole) InvitationKind {
	if role == MemberAgency {
		return KindAgencyInvitation
	}
	return KindClientInvitation
}

type InvitationStatus string

const (
	StatusPending  InvitationStatus = "pending"
	StatusAccepted InvitationStatus = "accepted"
	StatusUsed     InvitationStatus = "used"
	StatusExpired  InvitationStatus = "expired"
)

// Terminal reports whether no further transition is allowed out of s.
func (s InvitationStatus) Terminal() bool {
	return s != StatusPending
}

// Invitation is a durable offer to join an account with a fixed role. Only
// the fingerprint of the token is stored.
type Invitation struct {
	ID         string
	Kind       InvitationKind
	TokenHash  string
	Email      string
	Role       MemberRole
	AccountID  string
	InvitedBy  string
	Status     InvitationStatus
	AcceptedBy string // empty until accepted
	ExpiresAt  time.Time
	AcceptedAt *time.Time
	UsedAt     *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// InviteToken is the ephemeral, non-audited variant used for signup role
// assignment.
type InviteToken struct {
	TokenHash string
	Email     string
	Role      GlobalRole
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Grant is what a successful validation or acceptance yields.
type Grant struct {
	AccountID string
	Role      MemberRole
}

// Check decides whether the invitation can be used by claimedEmail at now.
// The order matters: callers learn about the email before they learn whether
// the invitation is still alive, and an expired invitation reports expiry
// even after a sweep has marked it expired.
func (inv Invitation) Check(claimedEmail string, now time.Time) error {
	if !EmailsMatch(claimedEmail, inv.Email) {
		return ErrEmailMismatch
	}
	if !inv.ExpiresAt.After(now) {
		return ErrExpired
	}
	if inv.Status != StatusPending {
		return ErrAlreadyUsed
	}
	return nil
}
