// Package tokens manages ephemeral invite tokens: opaque strings bound to an
// email and a global role, valid for a fixed window and consumable once.
//
// Two implementations share one contract. MemoryStore keeps entries in a
// mutex-guarded map and is only correct for a single process. DurableStore
// keeps them in the invite_tokens table and is safe across instances.
package tokens

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store"
	"github.com/aussiebroadwan/tenantry/pkg/cryptox"
)

// Mode names a Store implementation in configuration.
type Mode string

const (
	ModeMemory  Mode = "memory"
	ModeDurable Mode = "durable"
)

// uniqueAttempts bounds how many draws Issue makes before giving up. With
// 256-bit tokens a second draw is already astronomically unlikely.
const uniqueAttempts = 3

type Store interface {
	// Issue mints a token for email and role, valid for the store's TTL.
	Issue(ctx context.Context, email string, role domain.GlobalRole) (string, error)

	// Lookup returns the live record for token. An expired record is removed
	// in the same step and reported as domain.ErrExpired; a missing one as
	// domain.ErrNotFound.
	Lookup(ctx context.Context, token string) (domain.InviteToken, error)

	// Consume removes a live record and reports whether this call removed it.
	// Among concurrent callers on one token at most one observes true.
	Consume(ctx context.Context, token string) (bool, error)

	// Claim removes a live record as part of tx. If tx does not commit the
	// caller must run the returned undo, which puts the record back when the
	// store lives outside tx. A record that is gone reports
	// domain.ErrAlreadyUsed; one past expiry reports domain.ErrExpired.
	Claim(ctx context.Context, tx store.Tx, token string) (domain.InviteToken, func(), error)

	// SweepExpired removes every expired record and returns how many went.
	SweepExpired(ctx context.Context) (int, error)
}

// Options are shared by both implementations.
type Options struct {
	TTL time.Duration    // defaults to domain.DefaultInviteTTL
	Now func() time.Time // defaults to time.Now
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = domain.DefaultInviteTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func validateIssue(email string, role domain.GlobalRole) (string, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return "", domain.Invalid("email is required")
	}
	if role.Rank() == 0 {
		return "", domain.Invalid("unknown role")
	}
	return email, nil
}

func alive(t domain.InviteToken, now time.Time) bool {
	return t.ExpiresAt.After(now)
}

func fingerprint(token string) string {
	return cryptox.FingerprintToken(token)
}

// New builds the Store selected by mode. s is only used in durable mode.
func New(mode Mode, s store.Store, opts Options) (Store, error) {
	switch mode {
	case ModeMemory, "":
		return NewMemoryStore(opts), nil
	case ModeDurable:
		if s == nil {
			return nil, fmt.Errorf("tokens: durable mode needs a store")
		}
		return NewDurableStore(s, opts), nil
	default:
		return nil, fmt.Errorf("tokens: unknown mode %q", mode)
	}
}
