package domain

import "time"

// Account is an agency's tenant boundary, owned by a coach.
type Account struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountMember binds a user to an account with one role. (AccountID, UserID)
// is unique.
type AccountMember struct {
	ID        string
	AccountID string
	UserID    string
	Role      MemberRole
	CreatedAt time.Time
	UpdatedAt time.Time
}
