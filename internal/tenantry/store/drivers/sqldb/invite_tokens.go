package sqldb

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
)

type inviteTokensRepo struct{ c conn }

func (r *inviteTokensRepo) CreateInviteToken(ctx context.Context, t domain.InviteToken) error {
	_, err := r.c.exec(ctx,
		`INSERT INTO invite_tokens (token_hash, email, role, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		t.TokenHash, domain.NormalizeEmail(t.Email), string(t.Role),
		toMillis(t.ExpiresAt), toMillis(t.CreatedAt))
	return err
}

func (r *inviteTokensRepo) GetInviteTokenByHash(ctx context.Context, hash string) (domain.InviteToken, error) {
	var (
		t                domain.InviteToken
		role             string
		expires, created int64
	)
	err := r.c.queryRow(ctx,
		`SELECT token_hash, email, role, expires_at, created_at FROM invite_tokens WHERE token_hash = ?`,
		hash).Scan(&t.TokenHash, &t.Email, &role, &expires, &created)
	if err != nil {
		return domain.InviteToken{}, mapNotFound(err)
	}
	t.Role = domain.GlobalRole(role)
	t.ExpiresAt = fromMillis(expires)
	t.CreatedAt = fromMillis(created)
	return t, nil
}

func (r *inviteTokensRepo) DeleteInviteToken(ctx context.Context, hash string) (bool, error) {
	res, err := r.c.exec(ctx, `DELETE FROM invite_tokens WHERE token_hash = ?`, hash)
	if err != nil {
		return false, err
	}
	n, err := rowsAffected(res)
	return n == 1, err
}

func (r *inviteTokensRepo) DeleteExpiredInviteTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.c.exec(ctx, `DELETE FROM invite_tokens WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return rowsAffected(res)
}
