package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s *Store) (coach domain.User, acct domain.Account) {
	t.Helper()
	ctx := context.Background()
	coach = domain.User{ID: "u-coach", Email: "Coach@Example.com", Role: domain.GlobalCoach, CreatedAt: t0, UpdatedAt: t0}
	require.NoError(t, s.Users().CreateUser(ctx, coach))
	acct = domain.Account{ID: "a-1", Name: "Acme", OwnerID: coach.ID, CreatedAt: t0, UpdatedAt: t0}
	require.NoError(t, s.Accounts().CreateAccount(ctx, acct))
	return coach, acct
}

func pendingInvitation(acct domain.Account, hash string) domain.Invitation {
	return domain.Invitation{
		ID:        "inv-" + hash,
		Kind:      domain.KindClientInvitation,
		TokenHash: hash,
		Email:     "client@example.com",
		Role:      domain.MemberClient,
		AccountID: acct.ID,
		InvitedBy: acct.OwnerID,
		Status:    domain.StatusPending,
		ExpiresAt: t0.Add(domain.DefaultInviteTTL),
		CreatedAt: t0,
		UpdatedAt: t0,
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	coach, _ := seed(t, s)

	got, err := s.Users().GetUserByEmail(ctx, "coach@example.com")
	require.NoError(t, err)
	require.Equal(t, coach.ID, got.ID)
	require.Equal(t, "coach@example.com", got.Email)
	require.True(t, got.CreatedAt.Equal(t0))

	dup := domain.User{ID: "u-other", Email: "COACH@example.com", Role: domain.GlobalClient, CreatedAt: t0, UpdatedAt: t0}
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	later := t0.Add(time.Hour)
	require.NoError(t, s.Users().UpdateRole(ctx, coach.ID, domain.GlobalAdmin, later))
	got, err = s.Users().GetUserByID(ctx, coach.ID)
	require.NoError(t, err)
	require.Equal(t, domain.GlobalAdmin, got.Role)
	require.True(t, got.UpdatedAt.Equal(later))

	require.ErrorIs(t, s.Users().UpdateRole(ctx, "ghost", domain.GlobalClient, later), store.ErrNotFound)
	_, err = s.Users().GetUserByID(ctx, "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestMembersUniquePerAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	coach, acct := seed(t, s)

	m := domain.AccountMember{ID: "m-1", AccountID: acct.ID, UserID: coach.ID, Role: domain.MemberOwner, CreatedAt: t0, UpdatedAt: t0}
	require.NoError(t, s.Members().CreateMember(ctx, m))

	m.ID = "m-2"
	m.Role = domain.MemberClient
	require.ErrorIs(t, s.Members().CreateMember(ctx, m), store.ErrAlreadyExists)

	got, err := s.Members().GetMember(ctx, acct.ID, coach.ID)
	require.NoError(t, err)
	require.Equal(t, domain.MemberOwner, got.Role)

	list, err := s.Members().ListMembers(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	owned, err := s.Accounts().ListAccountsByOwner(ctx, coach.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
}

func TestForeignKeysEnforced(t *testing.T) {
	s := newTestStore(t)
	err := s.Members().CreateMember(context.Background(), domain.AccountMember{
		ID: "m-x", AccountID: "missing", UserID: "missing", Role: domain.MemberClient, CreatedAt: t0, UpdatedAt: t0,
	})
	require.Error(t, err)
}

func TestInvitationLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, acct := seed(t, s)

	inv := pendingInvitation(acct, "h1")
	require.NoError(t, s.Invitations().CreateInvitation(ctx, inv))

	clash := pendingInvitation(acct, "h1")
	clash.ID = "inv-other"
	require.ErrorIs(t, s.Invitations().CreateInvitation(ctx, clash), store.ErrAlreadyExists)

	pending, err := s.Invitations().ListInvitationsByEmail(ctx, "Client@Example.com", domain.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	at := t0.Add(time.Minute)
	ok, err := s.Invitations().MarkInvitationAccepted(ctx, inv.ID, "u-client", at)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Invitations().MarkInvitationAccepted(ctx, inv.ID, "u-late", at)
	require.NoError(t, err)
	require.False(t, ok)

	got, err := s.Invitations().GetInvitationByTokenHash(ctx, "h1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusAccepted, got.Status)
	require.Equal(t, "u-client", got.AcceptedBy)
	require.NotNil(t, got.AcceptedAt)
	require.True(t, got.AcceptedAt.Equal(at))
	require.Nil(t, got.UsedAt)

	ok, err = s.Invitations().MarkInvitationUsed(ctx, "h1", at)
	require.NoError(t, err)
	require.False(t, ok, "terminal invitations stay put")

	_, err = s.Invitations().GetInvitationByTokenHash(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestExpirePendingInvitations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, acct := seed(t, s)

	require.NoError(t, s.Invitations().CreateInvitation(ctx, pendingInvitation(acct, "old")))
	fresh := pendingInvitation(acct, "fresh")
	fresh.ExpiresAt = t0.Add(30 * 24 * time.Hour)
	require.NoError(t, s.Invitations().CreateInvitation(ctx, fresh))

	n, err := s.Invitations().ExpirePendingInvitations(ctx, t0.Add(8*24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	old, err := s.Invitations().GetInvitationByTokenHash(ctx, "old")
	require.NoError(t, err)
	require.Equal(t, domain.StatusExpired, old.Status)

	stillFresh, err := s.Invitations().GetInvitationByTokenHash(ctx, "fresh")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, stillFresh.Status)
}

func TestInviteTokens(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := s.InviteTokens()

	tok := domain.InviteToken{TokenHash: "t1", Email: "a@example.com", Role: domain.GlobalAgency, ExpiresAt: t0.Add(time.Hour), CreatedAt: t0}
	require.NoError(t, repo.CreateInviteToken(ctx, tok))
	require.ErrorIs(t, repo.CreateInviteToken(ctx, tok), store.ErrAlreadyExists)

	got, err := repo.GetInviteTokenByHash(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, domain.GlobalAgency, got.Role)

	deleted, err := repo.DeleteInviteToken(ctx, "t1")
	require.NoError(t, err)
	require.True(t, deleted)
	deleted, err = repo.DeleteInviteToken(ctx, "t1")
	require.NoError(t, err)
	require.False(t, deleted)

	tok.TokenHash = "t2"
	require.NoError(t, repo.CreateInviteToken(ctx, tok))
	n, err := repo.DeleteExpiredInviteTokens(ctx, t0.Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestWithTxRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		u := domain.User{ID: "u-tx", Email: "tx@example.com", Role: domain.GlobalClient, CreatedAt: t0, UpdatedAt: t0}
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Users().GetUserByID(ctx, "u-tx")
	require.ErrorIs(t, err, store.ErrNotFound)
}
