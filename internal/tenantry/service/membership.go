package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/obs"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store"
	"github.com/aussiebroadwan/tenantry/pkg/cryptox"
	"github.com/aussiebroadwan/tenantry/pkg/idx"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

// Acceptance outcomes as reported to metrics, beyond the error kinds.
const (
	outcomeAccepted   = "accepted"
	outcomeIdempotent = "idempotent"
)

// MembershipResolver turns a pending invitation into an account membership.
type MembershipResolver struct {
	Store   store.Store
	Now     func() time.Time
	Metrics *obs.Metrics
}

// Accept redeems token for userID. The role comes from the invitation and
// nothing else. claimedEmail is compared with the invited address only; tying
// it to the caller's identity is the transport's job.
//
// Validation, the membership insert, the status transition and any global
// role promotion commit together or not at all. The conditional
// pending→accepted update decides the winner among concurrent callers.
//
// Repeating a successful call with the same token and user returns the same
// grant and changes nothing.
func (r *MembershipResolver) Accept(ctx context.Context, token, userID, claimedEmail string) (domain.Grant, error) {
	log := slogx.FromContext(ctx).With(
		slogx.Token("token", token),
		slog.String("user_id", userID),
	)

	if token == "" {
		r.Metrics.Accept(string(domain.KindNotFound))
		return domain.Grant{}, domain.ErrNotFound
	}
	if userID == "" {
		r.Metrics.Accept(string(domain.KindInvalidRequest))
		return domain.Grant{}, domain.Invalid("user_id is required")
	}

	var (
		grant   domain.Grant
		outcome = outcomeAccepted
	)
	err := r.Store.WithTx(ctx, func(tx store.Tx) error {
		now := nowFrom(r.Now)

		inv, err := tx.Invitations().GetInvitationByTokenHash(ctx, cryptox.FingerprintToken(token))
		if err != nil {
			return storeErr(err, domain.ErrNotFound)
		}
		log = log.With(slog.String("invitation_id", inv.ID), slog.String("account_id", inv.AccountID))

		if err := inv.Check(claimedEmail, now); err != nil {
			if errors.Is(err, domain.ErrAlreadyUsed) && r.isReplay(ctx, tx, inv, userID) {
				grant = domain.Grant{AccountID: inv.AccountID, Role: inv.Role}
				outcome = outcomeIdempotent
				return nil
			}
			return err
		}

		user, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			return storeErr(err, domain.ErrUnauthorized)
		}

		member, err := tx.Members().GetMember(ctx, inv.AccountID, userID)
		switch {
		case err == nil:
			if member.Role != inv.Role {
				log.Info("existing membership conflicts with invitation",
					slog.String("member_role", string(member.Role)),
					slog.String("bound_role", string(inv.Role)),
				)
				return domain.ErrRoleConflict
			}
			// Same role already held: nothing to insert, but the invitation
			// is still consumed below.
		case errors.Is(err, store.ErrNotFound):
			err = tx.Members().CreateMember(ctx, domain.AccountMember{
				ID:        idx.NewAt(now).String(),
				AccountID: inv.AccountID,
				UserID:    userID,
				Role:      inv.Role,
				CreatedAt: now,
				UpdatedAt: now,
			})
			if errors.Is(err, store.ErrAlreadyExists) {
				return domain.ErrRoleConflict
			}
			if err != nil {
				return domain.Unavailable(err)
			}
		default:
			return domain.Unavailable(err)
		}

		won, err := tx.Invitations().MarkInvitationAccepted(ctx, inv.ID, userID, now)
		if err != nil {
			return domain.Unavailable(err)
		}
		if !won {
			return domain.ErrAlreadyUsed
		}

		if target := inv.Role.GlobalFor(); target.Rank() > user.Role.Rank() {
			if err := tx.Users().UpdateRole(ctx, userID, target, now); err != nil {
				return domain.Unavailable(err)
			}
			log.Info("global role promoted by invitation",
				slog.String("from", string(user.Role)),
				slog.String("to", string(target)),
			)
		}

		grant = domain.Grant{AccountID: inv.AccountID, Role: inv.Role}
		return nil
	})
	if err != nil {
		err = domain.Unavailable(err)
		r.Metrics.Accept(string(domain.KindOf(err)))
		if domain.KindOf(err) == domain.KindStoreUnavailable {
			log.Error("invitation accept failed", slog.Any("error", err))
		} else {
			log.Info("invitation accept rejected", slog.String("reason", string(domain.KindOf(err))))
		}
		return domain.Grant{}, err
	}

	r.Metrics.Accept(outcome)
	log.Info("invitation accepted",
		slog.String("role", string(grant.Role)),
		slog.Bool("replay", outcome == outcomeIdempotent),
	)
	return grant, nil
}

// isReplay reports whether inv was already accepted by userID and the
// membership it produced is still in place.
func (r *MembershipResolver) isReplay(ctx context.Context, tx store.Tx, inv domain.Invitation, userID string) bool {
	if inv.Status != domain.StatusAccepted || inv.AcceptedBy != userID {
		return false
	}
	member, err := tx.Members().GetMember(ctx, inv.AccountID, userID)
	return err == nil && member.Role == inv.Role
}
