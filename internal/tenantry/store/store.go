package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it and expose sub-repositories so a transaction-scoped
// Store hands out the same repositories bound to the transaction.
type Store interface {
	Users() Users
	Accounts() Accounts
	Members() Members
	Invitations() Invitations
	InviteTokens() InviteTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error, or ctx
	// is cancelled before commit, nothing fn wrote is kept.
	//
	// Inside fn only the repositories of tx may be used: the sqlite driver runs
	// on a single connection and would deadlock otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Users is the local view of the user directory.
type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser returns ErrAlreadyExists when the id or email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateRole sets the global role and bumps updated_at.
	UpdateRole(ctx context.Context, userID string, role domain.GlobalRole, at time.Time) error
}

type Accounts interface {
	CreateAccount(ctx context.Context, a domain.Account) error
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)
	ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error)
}

type Members interface {
	// CreateMember returns ErrAlreadyExists when (account_id, user_id) is taken.
	CreateMember(ctx context.Context, m domain.AccountMember) error
	GetMember(ctx context.Context, accountID, userID string) (domain.AccountMember, error)
	ListMembers(ctx context.Context, accountID string) ([]domain.AccountMember, error)
}

type Invitations interface {
	// CreateInvitation returns ErrAlreadyExists on a token hash collision.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error)
	GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error)

	// ListInvitationsByEmail returns invitations addressed to email in status.
	ListInvitationsByEmail(ctx context.Context, email string, status domain.InvitationStatus) ([]domain.Invitation, error)

	// MarkInvitationAccepted moves a pending invitation to accepted. It reports
	// false, not an error, when the row was no longer pending.
	MarkInvitationAccepted(ctx context.Context, id, userID string, at time.Time) (bool, error)

	// MarkInvitationUsed moves a pending invitation to used. Terminal rows
	// and unknown hashes are left alone and report false.
	MarkInvitationUsed(ctx context.Context, hash string, at time.Time) (bool, error)

	// ExpirePendingInvitations marks pending invitations with
	// expires_at <= now as expired and returns how many changed.
	ExpirePendingInvitations(ctx context.Context, now time.Time) (int64, error)
}

// InviteTokens backs the durable variant of the ephemeral token store.
type InviteTokens interface {
	CreateInviteToken(ctx context.Context, t domain.InviteToken) error
	GetInviteTokenByHash(ctx context.Context, hash string) (domain.InviteToken, error)

	// DeleteInviteToken reports whether a row was removed.
	DeleteInviteToken(ctx context.Context, hash string) (bool, error)

	// DeleteExpiredInviteTokens removes tokens with expires_at <= now.
	DeleteExpiredInviteTokens(ctx context.Context, now time.Time) (int64, error)
}
