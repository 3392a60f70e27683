package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
)

func TestCreateAccount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	admin := e.user(t, "u-admin", "admin@x.com", domain.GlobalAdmin)
	coach := e.user(t, "u-coach", "coach@x.com", domain.GlobalCoach)
	other := e.user(t, "u-coach2", "coach2@x.com", domain.GlobalCoach)
	agency := e.user(t, "u-agency", "agency@x.com", domain.GlobalAgency)

	t.Run("coach creates own account and becomes owner", func(t *testing.T) {
		acct, err := e.accounts.CreateAccount(ctx, coach.ID, "  Acme  ", "")
		require.NoError(t, err)
		require.Equal(t, "Acme", acct.Name)
		require.Equal(t, coach.ID, acct.OwnerID)

		m, err := e.store.Members().GetMember(ctx, acct.ID, coach.ID)
		require.NoError(t, err)
		require.Equal(t, domain.MemberOwner, m.Role)
	})

	t.Run("coach cannot create for another coach", func(t *testing.T) {
		_, err := e.accounts.CreateAccount(ctx, coach.ID, "Nope", other.ID)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("admin creates for a coach", func(t *testing.T) {
		acct, err := e.accounts.CreateAccount(ctx, admin.ID, "Managed", other.ID)
		require.NoError(t, err)
		require.Equal(t, other.ID, acct.OwnerID)
	})

	t.Run("owner must be a coach", func(t *testing.T) {
		_, err := e.accounts.CreateAccount(ctx, admin.ID, "Bad", agency.ID)
		require.ErrorIs(t, err, domain.ErrInvalidRequest)
		_, err = e.accounts.CreateAccount(ctx, admin.ID, "Bad", "")
		require.ErrorIs(t, err, domain.ErrInvalidRequest)
		_, err = e.accounts.CreateAccount(ctx, admin.ID, "Bad", "ghost")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("agency cannot create accounts", func(t *testing.T) {
		_, err := e.accounts.CreateAccount(ctx, agency.ID, "Mine", "")
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("name is required", func(t *testing.T) {
		_, err := e.accounts.CreateAccount(ctx, coach.ID, " ", "")
		require.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	owned, err := e.accounts.ListOwned(ctx, coach.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
}

func TestAccountReads(t *testing.T) {
	e := newEnv(t)
	w := e.world(t)
	ctx := context.Background()

	members, err := e.accounts.ListMembers(ctx, w.agency.ID, w.account.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	_, err = e.accounts.ListMembers(ctx, w.client.ID, w.account.ID)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	acct, err := e.accounts.GetAccount(ctx, w.coach.ID, w.account.ID)
	require.NoError(t, err)
	require.Equal(t, w.account.Name, acct.Name)

	_, err = e.accounts.GetAccount(ctx, w.admin.ID, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
