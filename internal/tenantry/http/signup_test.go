package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/pkg/tenantsdk"
)

func TestSignupTokens(t *testing.T) {
	h := newHarness(t)
	h.user("u-admin", "admin@x.com", domain.GlobalAdmin)

	rec := h.do(http.MethodPost, "/v1/signup-tokens", "u-admin", "admin@x.com",
		tenantsdk.IssueSignupTokenRequest{Email: "New@x.com", Role: "coach"})
	requireStatus(t, rec, http.StatusCreated)
	tok := decode[tenantsdk.SignupTokenResponse](t, rec)
	require.Equal(t, "new@x.com", tok.Email)
	require.Equal(t, "coach", tok.Role)

	t.Run("email must match identity token", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/v1/signup-tokens/redeem", "u-new", "new@x.com",
			tenantsdk.RedeemSignupTokenRequest{Token: tok.Token, Email: "other@x.com"})
		requireStatus(t, rec, http.StatusForbidden)
		require.Equal(t, "email_mismatch", decode[tenantsdk.ErrorResponse](t, rec).Error)
	})

	rec = h.do(http.MethodPost, "/v1/signup-tokens/redeem", "u-new", "new@x.com",
		tenantsdk.RedeemSignupTokenRequest{Token: tok.Token, Email: "NEW@x.com"})
	requireStatus(t, rec, http.StatusOK)
	require.Equal(t, tenantsdk.UserResponse{ID: "u-new", Email: "new@x.com", Role: "coach"}, decode[tenantsdk.UserResponse](t, rec))

	rec = h.do(http.MethodPost, "/v1/signup-tokens/redeem", "u-new", "new@x.com",
		tenantsdk.RedeemSignupTokenRequest{Token: tok.Token, Email: "new@x.com"})
	require.Contains(t, []int{http.StatusNotFound, http.StatusConflict}, rec.Code)

	t.Run("nobody mints admins", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/v1/signup-tokens", "u-admin", "admin@x.com",
			tenantsdk.IssueSignupTokenRequest{Email: "root@x.com", Role: "admin"})
		requireStatus(t, rec, http.StatusForbidden)
	})

	t.Run("unknown role", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/v1/signup-tokens", "u-admin", "admin@x.com",
			tenantsdk.IssueSignupTokenRequest{Email: "x@x.com", Role: "superuser"})
		requireStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("clients cannot issue", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/v1/signup-tokens", "u-plain", "plain@x.com",
			tenantsdk.IssueSignupTokenRequest{Email: "x@x.com", Role: "client"})
		requireStatus(t, rec, http.StatusForbidden)
	})
}
