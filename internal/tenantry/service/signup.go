package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/obs"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/tokens"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

// SignupService hands out ephemeral tokens that assign a global role on
// redemption. Unlike invitations they leave no audit row behind.
type SignupService struct {
	Store   store.Store
	Tokens  tokens.Store
	Now     func() time.Time
	Metrics *obs.Metrics
}

// Issue mints a token binding role for email. Admins may bind coach, agency
// or client; coaches may bind agency or client; nobody can bind admin.
func (s *SignupService) Issue(ctx context.Context, issuerID, email string, role domain.GlobalRole) (string, error) {
	log := slogx.FromContext(ctx).With(
		slog.String("issuer_id", issuerID),
		slog.String("role", string(role)),
	)

	issuer, err := s.Store.Users().GetUserByID(ctx, issuerID)
	if err != nil {
		return "", storeErr(err, domain.ErrUnauthorized)
	}
	if !issuer.Role.CanIssueSignup(role) {
		log.Info("signup token issue denied", slog.String("issuer_role", string(issuer.Role)))
		return "", domain.ErrUnauthorized
	}

	token, err := s.Tokens.Issue(ctx, email, role)
	if err != nil {
		return "", err
	}
	s.Metrics.SignupToken("issue")
	log.Info("signup token issued", slogx.Email("email", email))
	return token, nil
}

// Redeem consumes token for userID and raises their global role to the one
// the token binds. Roles are never lowered by a redemption. The token is only
// spent if the role change commits.
func (s *SignupService) Redeem(ctx context.Context, token, userID, claimedEmail string) (domain.User, error) {
	log := slogx.FromContext(ctx).With(
		slogx.Token("token", token),
		slog.String("user_id", userID),
	)

	rec, err := s.Tokens.Lookup(ctx, token)
	if err != nil {
		s.Metrics.SignupToken("redeem_" + string(domain.KindOf(err)))
		return domain.User{}, err
	}
	if !domain.EmailsMatch(rec.Email, claimedEmail) {
		s.Metrics.SignupToken("redeem_" + string(domain.KindEmailMismatch))
		return domain.User{}, domain.ErrEmailMismatch
	}

	var (
		user domain.User
		from domain.GlobalRole
		undo func()
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			return storeErr(err, domain.ErrUnauthorized)
		}

		claimed, release, err := s.Tokens.Claim(ctx, tx, token)
		if err != nil {
			return err
		}
		undo = release

		from = u.Role
		if claimed.Role != domain.GlobalAdmin && claimed.Role.Rank() > u.Role.Rank() {
			now := nowFrom(s.Now)
			if err := tx.Users().UpdateRole(ctx, userID, claimed.Role, now); err != nil {
				return domain.Unavailable(err)
			}
			u.Role = claimed.Role
			u.UpdatedAt = now
		}
		user = u
		return nil
	})
	if err != nil {
		if undo != nil {
			undo()
		}
		err = domain.Unavailable(err)
		s.Metrics.SignupToken("redeem_" + string(domain.KindOf(err)))
		if domain.KindOf(err) == domain.KindStoreUnavailable {
			log.Error("signup token redeem failed", slog.Any("error", err))
		}
		return domain.User{}, err
	}

	if user.Role != from {
		log.Info("global role assigned by signup token",
			slog.String("from", string(from)),
			slog.String("to", string(user.Role)),
		)
	}
	s.Metrics.SignupToken("redeem")
	return user, nil
}
