package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/obs"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/service"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/tokens"
	"github.com/aussiebroadwan/tenantry/pkg/jwtx"
)

const (
	testSecret = "test-secret"
	testIssuer = "test-idp"
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

type harness struct {
	t       *testing.T
	store   *sqlite.Store
	clock   *testClock
	metrics *obs.Metrics
	router  *Router
	signer  *jwtx.HMACSigner

	accounts *service.AccountService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	verifier, err := jwtx.NewHMACVerifier([]byte(testSecret), testIssuer, nil)
	require.NoError(t, err)
	signer, err := jwtx.NewHMACSigner([]byte(testSecret), testIssuer)
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := obs.NewMetrics()
	gate := &service.RoleGate{Store: s, Metrics: m}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := NewRouter(verifier, "test", s, m, logger)
	r.UserService = &service.UserService{Store: s, Now: clock.Now}
	r.AccountService = &service.AccountService{Store: s, Gate: gate, Now: clock.Now}
	r.InvitationService = &service.InvitationService{Store: s, Gate: gate, Now: clock.Now, Metrics: m}
	r.Validator = &service.InvitationValidator{Store: s, Now: clock.Now}
	r.MembershipResolver = &service.MembershipResolver{Store: s, Now: clock.Now, Metrics: m}
	r.SignupService = &service.SignupService{
		Store:   s,
		Tokens:  tokens.NewMemoryStore(tokens.Options{Now: clock.Now}),
		Now:     clock.Now,
		Metrics: m,
	}
	r.ApplyRoutes()

	return &harness{
		t:        t,
		store:    s,
		clock:    clock,
		metrics:  m,
		router:   r,
		signer:   signer,
		accounts: r.AccountService,
	}
}

// do sends body as JSON, or verbatim when it is a string. An empty sub sends
// no bearer token.
func (h *harness) do(method, path, sub, email string, body any) *httptest.ResponseRecorder {
	h.t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sub != "" {
		tok, err := h.signer.Sign(sub, email, time.Now(), time.Hour)
		require.NoError(h.t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) user(id, email string, role domain.GlobalRole) {
	h.t.Helper()
	now := h.clock.Now()
	require.NoError(h.t, h.store.Users().CreateUser(context.Background(), domain.User{
		ID: id, Email: email, Role: role, CreatedAt: now, UpdatedAt: now,
	}))
}

// coachAccount creates a coach with one account and returns its id.
func (h *harness) coachAccount() string {
	h.t.Helper()
	h.user("u-coach", "coach@x.com", domain.GlobalCoach)
	acct, err := h.accounts.CreateAccount(context.Background(), "u-coach", "Acme", "")
	require.NoError(h.t, err)
	return acct.ID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	require.Equal(t, code, rec.Code, "body: %s", rec.Body.String())
}

var _ http.Handler = (*Router)(nil)
