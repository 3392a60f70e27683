package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store"
	"github.com/aussiebroadwan/tenantry/pkg/cryptox"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

// InvitationValidator answers whether a token can be used by an email right
// now. It never writes, so UIs may call it as a pre-check.
type InvitationValidator struct {
	Store store.Store
	Now   func() time.Time
}

// Validate checks, in order: the token exists, the email matches, the
// invitation has not expired, and it is still pending.
func (v *InvitationValidator) Validate(ctx context.Context, token, claimedEmail string) (domain.Grant, error) {
	log := slogx.FromContext(ctx).With(slogx.Token("token", token), slogx.Email("email", claimedEmail))

	if token == "" {
		return domain.Grant{}, domain.ErrNotFound
	}

	inv, err := v.Store.Invitations().GetInvitationByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		err = storeErr(err, domain.ErrNotFound)
		log.Info("invitation validation failed", slog.String("reason", string(domain.KindOf(err))))
		return domain.Grant{}, err
	}

	if err := inv.Check(claimedEmail, nowFrom(v.Now)); err != nil {
		log.Info("invitation validation failed",
			slog.String("invitation_id", inv.ID),
			slog.String("reason", string(domain.KindOf(err))),
		)
		return domain.Grant{}, err
	}

	return domain.Grant{AccountID: inv.AccountID, Role: inv.Role}, nil
}
