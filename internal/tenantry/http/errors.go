package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/pkg/httpx"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
	"github.com/aussiebroadwan/tenantry/pkg/tenantsdk"
)

// statusFor maps an error kind onto an HTTP status.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidRequest:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindExpired:
		return http.StatusGone
	case domain.KindEmailMismatch, domain.KindUnauthorized:
		return http.StatusForbidden
	case domain.KindAlreadyUsed, domain.KindRoleConflict:
		return http.StatusConflict
	case domain.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// describe returns the caller-facing text for err. Authorization failures
// all read the same so they reveal nothing about memberships.
func describe(err error) string {
	kind := domain.KindOf(err)
	switch kind {
	case domain.KindUnauthorized:
		return "not permitted"
	case domain.KindStoreUnavailable:
		return "temporarily unavailable, retry later"
	}
	var de *domain.Error
	if errors.As(err, &de) && de.Msg != "" {
		return de.Msg
	}
	return string(kind)
}

// writeError writes err as an ErrorResponse.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	if kind == domain.KindStoreUnavailable {
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		w.Header().Set("Retry-After", "1")
	}
	httpx.WriteJSON(w, statusFor(kind), tenantsdk.ErrorResponse{
		Error:            string(kind),
		ErrorDescription: describe(err),
	})
}

func writeBadRequest(w http.ResponseWriter, desc string) {
	httpx.WriteJSON(w, http.StatusBadRequest, tenantsdk.ErrorResponse{
		Error:            string(domain.KindInvalidRequest),
		ErrorDescription: desc,
	})
}

// writeResult answers the invitation endpoints, which always speak
// InvitationResult. Malformed requests still get an ErrorResponse.
func writeResult(w http.ResponseWriter, r *http.Request, status int, grant domain.Grant, err error) {
	if err == nil {
		httpx.WriteJSON(w, status, tenantsdk.InvitationResult{
			Valid:     true,
			Role:      string(grant.Role),
			AccountID: grant.AccountID,
		})
		return
	}

	kind := domain.KindOf(err)
	if kind == domain.KindInvalidRequest {
		writeError(w, r, err)
		return
	}
	if kind == domain.KindStoreUnavailable {
		slogx.FromContext(r.Context()).Error("invitation request failed", slog.Any("error", err))
		w.Header().Set("Retry-After", "1")
		status = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, status, tenantsdk.InvitationResult{
		Valid: false,
		Error: string(kind),
	})
}

// callerID returns the authenticated subject. Routes that call it are always
// behind AuthnMiddleware.
func callerID(r *http.Request) string {
	id, _ := httpx.UserIDFromContext(r.Context())
	return id
}
