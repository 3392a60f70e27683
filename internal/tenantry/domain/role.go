package domain

import "strings"

// GlobalRole is the single platform-wide role held by a user.
type GlobalRole string

const (
	GlobalAdmin  GlobalRole = "admin"
	GlobalCoach  GlobalRole = "coach"
	GlobalAgency GlobalRole = "agency"
	GlobalClient GlobalRole = "client"
)

// ParseGlobalRole normalises s and reports whether it names a global role.
func ParseGlobalRole(s string) (GlobalRole, bool) {
	r := GlobalRole(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Rank() > 0
}

// Rank orders global roles: admin > coach > agency > client. Unknown roles
// rank 0.
func (r GlobalRole) Rank() int {
	switch r {
	case GlobalClient:
		return 1
	case GlobalAgency:
		return 2
	case GlobalCoach:
		return 3
	case GlobalAdmin:
		return 4
	default:
		return 0
	}
}

// CanIssueSignup reports whether a holder of r may hand out a signup token
// binding target. Nobody can mint admins this way.
func (r GlobalRole) CanIssueSignup(target GlobalRole) bool {
	if target == GlobalAdmin || target.Rank() == 0 {
		return false
	}
	switch r {
	case GlobalAdmin:
		return true
	case GlobalCoach:
		return target == GlobalAgency || target == GlobalClient
	default:
		return false
	}
}

// MemberRole is a user's role inside a single account.
type MemberRole string

const (
	MemberOwner  MemberRole = "owner"
	MemberAgency MemberRole = "agency"
	MemberClient MemberRole = "client"
)

// ParseMemberRole normalises s and reports whether it names a member role.
func ParseMemberRole(s string) (MemberRole, bool) {
	r := MemberRole(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Rank() > 0
}

// Rank orders member roles: owner > agency > client. Global admin sits above
// all of them and is handled by the role gate, not here.
func (r MemberRole) Rank() int {
	switch r {
	case MemberClient:
		return 1
	case MemberAgency:
		return 2
	case MemberOwner:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether r satisfies required.
func (r MemberRole) AtLeast(required MemberRole) bool {
	return r.Rank() > 0 && r.Rank() >= required.Rank()
}

// IssuerRoleFor returns the membership role an issuer needs to bind role
// into an invitation. Owner cannot be bound.
func IssuerRoleFor(role MemberRole) (MemberRole, bool) {
	switch role {
	case MemberAgency:
		return MemberOwner, true
	case MemberClient:
		return MemberAgency, true
	default:
		return "", false
	}
}

// GlobalFor maps a membership role onto the global role it implies.
func (r MemberRole) GlobalFor() GlobalRole {
	switch r {
	case MemberOwner:
		return GlobalCoach
	case MemberAgency:
		return GlobalAgency
	default:
		return GlobalClient
	}
}
