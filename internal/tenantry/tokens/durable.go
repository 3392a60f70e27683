package tokens

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store"
	"github.com/aussiebroadwan/tenantry/pkg/cryptox"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

// DurableStore keeps tokens in the invite_tokens table. Single use is
// enforced by the database: only the delete that removes the row wins.
type DurableStore struct {
	Store store.Store
	opts  Options
}

func NewDurableStore(s store.Store, opts Options) *DurableStore {
	return &DurableStore{Store: s, opts: opts.withDefaults()}
}

func (s *DurableStore) Issue(ctx context.Context, email string, role domain.GlobalRole) (string, error) {
	email, err := validateIssue(email, role)
	if err != nil {
		return "", err
	}

	for range uniqueAttempts {
		token, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return "", err
		}
		now := s.opts.Now()
		err = s.Store.InviteTokens().CreateInviteToken(ctx, domain.InviteToken{
			TokenHash: fingerprint(token),
			Email:     email,
			Role:      role,
			ExpiresAt: now.Add(s.opts.TTL),
			CreatedAt: now,
		})
		if errors.Is(err, store.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return "", domain.Unavailable(err)
		}

		slogx.FromContext(ctx).Debug("invite token issued",
			slogx.Email("email", email),
			slog.String("role", string(role)),
			slog.String("store", string(ModeDurable)),
		)
		return token, nil
	}
	return "", cryptox.ErrTokenCollision
}

// Lookup runs read-and-maybe-expire in one transaction. The expiry delete is
// committed even though the caller gets an error back.
func (s *DurableStore) Lookup(ctx context.Context, token string) (domain.InviteToken, error) {
	fp := fingerprint(token)

	var (
		out    domain.InviteToken
		result error
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		t, err := tx.InviteTokens().GetInviteTokenByHash(ctx, fp)
		if errors.Is(err, store.ErrNotFound) {
			result = domain.ErrNotFound
			return nil
		}
		if err != nil {
			return err
		}
		if !alive(t, s.opts.Now()) {
			if _, err := tx.InviteTokens().DeleteInviteToken(ctx, fp); err != nil {
				return err
			}
			result = domain.ErrExpired
			return nil
		}
		out = t
		return nil
	})
	if err != nil {
		return domain.InviteToken{}, domain.Unavailable(err)
	}
	if result != nil {
		return domain.InviteToken{}, result
	}
	return out, nil
}

func (s *DurableStore) Consume(ctx context.Context, token string) (bool, error) {
	fp := fingerprint(token)

	var won bool
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		t, err := tx.InviteTokens().GetInviteTokenByHash(ctx, fp)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		deleted, err := tx.InviteTokens().DeleteInviteToken(ctx, fp)
		if err != nil {
			return err
		}
		won = deleted && alive(t, s.opts.Now())
		return nil
	})
	if err != nil {
		return false, domain.Unavailable(err)
	}
	return won, nil
}

// Claim deletes the row through tx, so a rollback restores it and undo has
// nothing to do.
func (s *DurableStore) Claim(ctx context.Context, tx store.Tx, token string) (domain.InviteToken, func(), error) {
	fp := fingerprint(token)

	t, err := tx.InviteTokens().GetInviteTokenByHash(ctx, fp)
	if errors.Is(err, store.ErrNotFound) {
		return domain.InviteToken{}, nil, domain.ErrAlreadyUsed
	}
	if err != nil {
		return domain.InviteToken{}, nil, domain.Unavailable(err)
	}
	deleted, err := tx.InviteTokens().DeleteInviteToken(ctx, fp)
	if err != nil {
		return domain.InviteToken{}, nil, domain.Unavailable(err)
	}
	if !deleted {
		return domain.InviteToken{}, nil, domain.ErrAlreadyUsed
	}
	if !alive(t, s.opts.Now()) {
		return domain.InviteToken{}, nil, domain.ErrExpired
	}
	return t, func() {}, nil
}

func (s *DurableStore) SweepExpired(ctx context.Context) (int, error) {
	n, err := s.Store.InviteTokens().DeleteExpiredInviteTokens(ctx, s.opts.Now())
	if err != nil {
		return 0, domain.Unavailable(err)
	}
	return int(n), nil
}
