package http

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tenantry/pkg/tenantsdk"
)

func TestLivez(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/livez", "", "", nil)
	requireStatus(t, rec, http.StatusOK)
	health := decode[tenantsdk.HealthResponse](t, rec)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "test", health.Version)
	require.Nil(t, health.Checks)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestReadyz(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/readyz", "", "", nil)
	requireStatus(t, rec, http.StatusOK)
	require.Equal(t, "ok", decode[tenantsdk.HealthResponse](t, rec).Checks["database"])

	require.NoError(t, h.store.Close())

	rec = h.do(http.MethodGet, "/readyz", "", "", nil)
	requireStatus(t, rec, http.StatusServiceUnavailable)
	health := decode[tenantsdk.HealthResponse](t, rec)
	require.Equal(t, "degraded", health.Status)
	require.Contains(t, health.Checks["database"], "error")
}

func TestStoreOutageIsRetryable(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Close())

	rec := h.do(http.MethodPost, "/v1/invitations/validate", "", "",
		tenantsdk.ValidateInvitationRequest{Token: "t", Email: "a@x.com"})
	requireStatus(t, rec, http.StatusServiceUnavailable)
	require.Equal(t, "1", rec.Header().Get("Retry-After"))
	require.Equal(t, tenantsdk.InvitationResult{Error: "store_unavailable"}, decode[tenantsdk.InvitationResult](t, rec))
}

func TestMetricsUseRoutePatterns(t *testing.T) {
	h := newHarness(t)

	h.do(http.MethodGet, "/livez", "", "", nil)
	h.do(http.MethodGet, "/nowhere", "", "", nil)

	rec := h.do(http.MethodGet, "/metrics", "", "", nil)
	requireStatus(t, rec, http.StatusOK)
	body := rec.Body.String()
	require.Contains(t, body, `http_requests_total{method="GET",path="GET /livez",status="200"} 1`)
	require.Contains(t, body, `http_requests_total{method="GET",path="unmatched",status="404"} 1`)
}

func TestSwaggerDocIsServed(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/swagger/doc.json", "", "", nil)
	requireStatus(t, rec, http.StatusOK)
	b, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(b), "Tenantry Account Service API")
	require.Contains(t, string(b), "/v1/invitations/accept")
}
