package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/obs"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

// RoleGate decides whether a user may act on an account with at least a
// given membership role. Global admins pass every check; that override is
// logged at WARN and counted separately from ordinary passes.
type RoleGate struct {
	Store   store.Store
	Metrics *obs.Metrics
}

// Authorize reports whether userID holds required (or better) in accountID.
// Unknown users, non-members and unknown roles are plain denials; the only
// error is domain.ErrStoreUnavailable.
func (g *RoleGate) Authorize(ctx context.Context, userID, accountID string, required domain.MemberRole) (bool, error) {
	log := slogx.FromContext(ctx).With(
		slog.String("user_id", userID),
		slog.String("account_id", accountID),
		slog.String("required_role", string(required)),
	)

	user, err := g.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return g.deny(log, "unknown_user"), nil
	}
	if err != nil {
		log.Error("role gate: failed to load user", slog.Any("error", err))
		return false, domain.Unavailable(err)
	}

	if user.Role == domain.GlobalAdmin {
		log.Warn("admin override of account role check", slog.String("event", "authz_admin_override"))
		g.Metrics.Authz(obs.DecisionAdminOverride)
		return true, nil
	}

	if required.Rank() == 0 {
		return g.deny(log, "unknown_required_role"), nil
	}

	member, err := g.Store.Members().GetMember(ctx, accountID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return g.deny(log, "not_member"), nil
	}
	if err != nil {
		log.Error("role gate: failed to load membership", slog.Any("error", err))
		return false, domain.Unavailable(err)
	}

	if !member.Role.AtLeast(required) {
		return g.deny(log, "insufficient_role"), nil
	}

	log.Debug("account role check passed",
		slog.String("event", "authz_allowed"),
		slog.String("member_role", string(member.Role)),
	)
	g.Metrics.Authz(obs.DecisionAllowed)
	return true, nil
}

// Require is Authorize for callers that only need an error. Denials come back
// as domain.ErrUnauthorized with no hint of which check failed.
func (g *RoleGate) Require(ctx context.Context, userID, accountID string, required domain.MemberRole) error {
	ok, err := g.Authorize(ctx, userID, accountID, required)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUnauthorized
	}
	return nil
}

// deny logs the precise reason server-side only.
func (g *RoleGate) deny(log *slog.Logger, reason string) bool {
	log.Info("account role check denied",
		slog.String("event", "authz_denied"),
		slog.String("reason", reason),
	)
	g.Metrics.Authz(obs.DecisionDenied)
	return false
}
