package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/service"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store"
)

// startPostgres runs a throwaway postgres container. Tests are skipped in
// -short mode or when no container runtime is reachable.
func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres driver tests need a container runtime")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "tenantry",
			"POSTGRES_PASSWORD": "tenantry",
			"POSTGRES_DB":       "tenantry",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://tenantry:tenantry@%s:%s/tenantry?sslmode=disable", host, port.Port())
}

func TestPostgresStore(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	s, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.ApplyMigrations())

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	coach := domain.User{ID: "u-coach", Email: "coach@example.com", Role: domain.GlobalCoach, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Users().CreateUser(ctx, coach))
	require.ErrorIs(t, s.Users().CreateUser(ctx, coach), store.ErrAlreadyExists)

	acct := domain.Account{ID: "a-1", Name: "Acme", OwnerID: coach.ID, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Accounts().CreateAccount(ctx, acct))

	inv := domain.Invitation{
		ID: "inv-1", Kind: domain.KindClientInvitation, TokenHash: "h1", Email: "client@example.com",
		Role: domain.MemberClient, AccountID: acct.ID, InvitedBy: coach.ID, Status: domain.StatusPending,
		ExpiresAt: now.Add(domain.DefaultInviteTTL), CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.Invitations().CreateInvitation(ctx, inv))

	got, err := s.Invitations().GetInvitationByTokenHash(ctx, "h1")
	require.NoError(t, err)
	require.True(t, got.ExpiresAt.Equal(inv.ExpiresAt))

	t.Run("conditional accept has one winner", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			u := domain.User{ID: fmt.Sprintf("u-%d", i), Email: fmt.Sprintf("c%d@example.com", i), Role: domain.GlobalClient, CreatedAt: now, UpdatedAt: now}
			require.NoError(t, s.Users().CreateUser(ctx, u))
		}

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				userID := fmt.Sprintf("u-%d", i)
				err := s.WithTx(ctx, func(tx store.Tx) error {
					if err := tx.Members().CreateMember(ctx, domain.AccountMember{
						ID: "m-" + userID, AccountID: acct.ID, UserID: userID, Role: domain.MemberClient, CreatedAt: now, UpdatedAt: now,
					}); err != nil {
						return err
					}
					ok, err := tx.Invitations().MarkInvitationAccepted(ctx, inv.ID, userID, now)
					if err != nil {
						return err
					}
					if !ok {
						return store.ErrNotFound
					}
					return nil
				})
				if err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()

		require.Equal(t, 1, wins)
		members, err := s.Members().ListMembers(ctx, acct.ID)
		require.NoError(t, err)
		require.Len(t, members, 1)
	})
}

// Under READ COMMITTED the losers either block on the invitation row and
// then miss the pending status, or trip the (account_id, user_id) index.
func TestConcurrentAcceptOnPostgres(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	s, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	const n = 8
	coach := domain.User{ID: "u-coach", Email: "coach@example.com", Role: domain.GlobalCoach, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Users().CreateUser(ctx, coach))
	for i := 0; i < n; i++ {
		u := domain.User{ID: fmt.Sprintf("u-%d", i), Email: fmt.Sprintf("c%d@example.com", i), Role: domain.GlobalClient, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, s.Users().CreateUser(ctx, u))
	}

	gate := &service.RoleGate{Store: s}
	accounts := &service.AccountService{Store: s, Gate: gate, Now: clock}
	invitations := &service.InvitationService{Store: s, Gate: gate, Now: clock}
	resolver := &service.MembershipResolver{Store: s, Now: clock}

	acct, err := accounts.CreateAccount(ctx, coach.ID, "Acme", "")
	require.NoError(t, err)
	issued, err := invitations.Issue(ctx, coach.ID, acct.ID, "invitee@example.com", domain.MemberClient)
	require.NoError(t, err)

	// Half the callers share one user id so both loss paths are exercised.
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		winners  = map[string]int{}
		failures = map[domain.ErrorKind]int{}
	)
	for i := 0; i < n; i++ {
		userID := fmt.Sprintf("u-%d", i)
		if i%2 == 0 {
			userID = "u-0"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := resolver.Accept(ctx, issued.Token, userID, "invitee@example.com")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners[userID]++
				return
			}
			failures[domain.KindOf(err)]++
		}()
	}
	wg.Wait()

	// Repeat wins can only be same-user retries of the one acceptance.
	require.Len(t, winners, 1)
	wins := 0
	for _, c := range winners {
		wins += c
	}
	require.Equal(t, n-wins, failures[domain.KindAlreadyUsed]+failures[domain.KindRoleConflict])

	members, err := s.Members().ListMembers(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, members, 2, "owner plus exactly one invitee")

	inv, err := invitations.FindByToken(ctx, issued.Token)
	require.NoError(t, err)
	require.Equal(t, domain.StatusAccepted, inv.Status)
}
