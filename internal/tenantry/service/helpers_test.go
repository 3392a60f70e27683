package service

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/obs"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/tokens"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Aliases let test doubles embed the store interfaces without the embedded
// field name shadowing the Tx method.
type (
	baseStore = store.Store
	baseTx    = store.Tx
)

// env wires every service onto one in-memory sqlite store.
type env struct {
	store   *sqlite.Store
	clock   *testClock
	metrics *obs.Metrics

	gate        *RoleGate
	validator   *InvitationValidator
	resolver    *MembershipResolver
	invitations *InvitationService
	accounts    *AccountService
	signup      *SignupService
	users       *UserService
	bootstrap   *BootstrapService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	clock := &testClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := obs.NewMetrics()
	gate := &RoleGate{Store: s, Metrics: m}

	return &env{
		store:       s,
		clock:       clock,
		metrics:     m,
		gate:        gate,
		validator:   &InvitationValidator{Store: s, Now: clock.Now},
		resolver:    &MembershipResolver{Store: s, Now: clock.Now, Metrics: m},
		invitations: &InvitationService{Store: s, Gate: gate, Now: clock.Now, Metrics: m},
		accounts:    &AccountService{Store: s, Gate: gate, Now: clock.Now},
		signup: &SignupService{
			Store:   s,
			Tokens:  tokens.NewMemoryStore(tokens.Options{Now: clock.Now}),
			Now:     clock.Now,
			Metrics: m,
		},
		users:     &UserService{Store: s, Now: clock.Now},
		bootstrap: &BootstrapService{Store: s, Now: clock.Now},
	}
}

func (e *env) user(t *testing.T, id, email string, role domain.GlobalRole) domain.User {
	t.Helper()
	now := e.clock.Now()
	u := domain.User{ID: id, Email: email, Role: role, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, e.store.Users().CreateUser(context.Background(), u))
	return u
}

// world is the usual cast: a coach owning one account with an agency
// member, plus a client with no membership yet.
type world struct {
	admin, coach, agency, client domain.User
	account                      domain.Account
}

func (e *env) world(t *testing.T) world {
	t.Helper()
	ctx := context.Background()
	w := world{
		admin:  e.user(t, "u-admin", "admin@x.com", domain.GlobalAdmin),
		coach:  e.user(t, "u-coach", "coach@x.com", domain.GlobalCoach),
		agency: e.user(t, "u-agency", "agency@x.com", domain.GlobalAgency),
		client: e.user(t, "u-client", "client@x.com", domain.GlobalClient),
	}

	acct, err := e.accounts.CreateAccount(ctx, w.coach.ID, "Acme Coaching", "")
	require.NoError(t, err)
	w.account = acct

	issued, err := e.invitations.Issue(ctx, w.coach.ID, acct.ID, w.agency.Email, domain.MemberAgency)
	require.NoError(t, err)
	_, err = e.resolver.Accept(ctx, issued.Token, w.agency.ID, w.agency.Email)
	require.NoError(t, err)
	return w
}

func (e *env) memberCount(t *testing.T, accountID string) int {
	t.Helper()
	members, err := e.store.Members().ListMembers(context.Background(), accountID)
	require.NoError(t, err)
	return len(members)
}

// captureLogs returns a context whose logger writes JSON lines to the buffer.
func captureLogs() (context.Context, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return slogx.WithContext(context.Background(), logger), &buf
}
