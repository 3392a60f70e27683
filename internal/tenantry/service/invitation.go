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

// InvitationService issues durable invitations and handles the transitions
// that happen outside the accept flow.
type InvitationService struct {
	Store   store.Store
	Gate    *RoleGate
	TTL     time.Duration // defaults to domain.DefaultInviteTTL
	Now     func() time.Time
	Metrics *obs.Metrics
}

// IssuedInvitation carries the raw token, which is never stored and cannot
// be recovered later.
type IssuedInvitation struct {
	Token      string
	Invitation domain.Invitation
}

func (s *InvitationService) ttl() time.Duration {
	if s.TTL <= 0 {
		return domain.DefaultInviteTTL
	}
	return s.TTL
}

// Issue creates a pending invitation binding role in accountID for email.
// The issuer needs the membership role one step above the bound one: owner
// to invite agency members, agency to invite clients. Owner itself can never
// be bound.
func (s *InvitationService) Issue(
	ctx context.Context,
	issuerID string,
	accountID string,
	email string,
	role domain.MemberRole,
) (IssuedInvitation, error) {
	log := slogx.FromContext(ctx).With(
		slog.String("issuer_id", issuerID),
		slog.String("account_id", accountID),
		slog.String("role", string(role)),
	)

	// 1. Validate the request shape.
	needed, ok := domain.IssuerRoleFor(role)
	if !ok {
		log.Warn("attempted to issue invitation with unbindable role")
		return IssuedInvitation{}, domain.Invalid("role must be agency or client")
	}
	email = domain.NormalizeEmail(email)
	if email == "" {
		return IssuedInvitation{}, domain.Invalid("email is required")
	}

	// 2. The issuer must hold authority over the bound role in this account.
	if err := s.Gate.Require(ctx, issuerID, accountID, needed); err != nil {
		return IssuedInvitation{}, err
	}

	// 3. Admins bypass the gate, so the account may still be unknown.
	if _, err := s.Store.Accounts().GetAccountByID(ctx, accountID); err != nil {
		return IssuedInvitation{}, storeErr(err, errAccountNotFound)
	}

	// 4. Mint the token and persist its fingerprint.
	now := nowFrom(s.Now)
	inv := domain.Invitation{
		ID:        idx.NewAt(now).String(),
		Kind:      domain.KindFor(role),
		Email:     email,
		Role:      role,
		AccountID: accountID,
		InvitedBy: issuerID,
		Status:    domain.StatusPending,
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
		UpdatedAt: now,
	}

	for range tokenAttempts {
		token, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			log.Error("failed to generate invitation token", slog.Any("error", err))
			return IssuedInvitation{}, domain.Unavailable(err)
		}
		inv.TokenHash = cryptox.FingerprintToken(token)

		err = s.Store.Invitations().CreateInvitation(ctx, inv)
		if errors.Is(err, store.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			log.Error("failed to create invitation", slog.Any("error", err))
			return IssuedInvitation{}, domain.Unavailable(err)
		}

		s.Metrics.IssuedInvitation(string(inv.Kind))
		log.Info("invitation issued",
			slog.String("invitation_id", inv.ID),
			slog.String("kind", string(inv.Kind)),
			slogx.Email("email", email),
			slog.Time("expires_at", inv.ExpiresAt),
		)
		return IssuedInvitation{Token: token, Invitation: inv}, nil
	}
	return IssuedInvitation{}, domain.Unavailable(cryptox.ErrTokenCollision)
}

// FindByToken returns the invitation behind token regardless of its state.
func (s *InvitationService) FindByToken(ctx context.Context, token string) (domain.Invitation, error) {
	if token == "" {
		return domain.Invitation{}, domain.ErrNotFound
	}
	inv, err := s.Store.Invitations().GetInvitationByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		return domain.Invitation{}, storeErr(err, domain.ErrNotFound)
	}
	return inv, nil
}

// MarkUsed moves a pending invitation to used. Unknown tokens and terminal
// invitations are left alone and still succeed, so retries are harmless.
func (s *InvitationService) MarkUsed(ctx context.Context, token string) error {
	log := slogx.FromContext(ctx).With(slogx.Token("token", token))
	if token == "" {
		return nil
	}

	changed, err := s.Store.Invitations().MarkInvitationUsed(ctx, cryptox.FingerprintToken(token), nowFrom(s.Now))
	if err != nil {
		log.Error("failed to mark invitation used", slog.Any("error", err))
		return domain.Unavailable(err)
	}
	log.Debug("mark used", slog.Bool("changed", changed))
	return nil
}

// ListPending returns the invitations still waiting on email.
func (s *InvitationService) ListPending(ctx context.Context, email string) ([]domain.Invitation, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, domain.Invalid("email is required")
	}
	invs, err := s.Store.Invitations().ListInvitationsByEmail(ctx, email, domain.StatusPending)
	if err != nil {
		return nil, domain.Unavailable(err)
	}

	// Overdue rows the housekeeper has not reached yet are not pending.
	now := nowFrom(s.Now)
	out := invs[:0]
	for _, inv := range invs {
		if inv.ExpiresAt.After(now) {
			out = append(out, inv)
		}
	}
	return out, nil
}
