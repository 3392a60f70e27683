package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
)

type invitationsRepo struct{ c conn }

const invitationColumns = `id, kind, token_hash, email, role, account_id, invited_by, status,
	accepted_by, expires_at, accepted_at, used_at, created_at, updated_at`

func scanInvitation(row interface{ Scan(...any) error }) (domain.Invitation, error) {
	var (
		inv                       domain.Invitation
		kind, role, status        string
		acceptedBy                sql.NullString
		expires, created, updated int64
		acceptedAt, usedAt        sql.NullInt64
	)
	err := row.Scan(&inv.ID, &kind, &inv.TokenHash, &inv.Email, &role, &inv.AccountID,
		&inv.InvitedBy, &status, &acceptedBy, &expires, &acceptedAt, &usedAt, &created, &updated)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	inv.Kind = domain.InvitationKind(kind)
	inv.Role = domain.MemberRole(role)
	inv.Status = domain.InvitationStatus(status)
	inv.AcceptedBy = fromNullString(acceptedBy)
	inv.ExpiresAt = fromMillis(expires)
	inv.AcceptedAt = fromNullMillis(acceptedAt)
	inv.UsedAt = fromNullMillis(usedAt)
	inv.CreatedAt = fromMillis(created)
	inv.UpdatedAt = fromMillis(updated)
	return inv, nil
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	status := inv.Status
	if status == "" {
		status = domain.StatusPending
	}
	_, err := r.c.exec(ctx,
		`INSERT INTO invitations (`+invitationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, string(inv.Kind), inv.TokenHash, domain.NormalizeEmail(inv.Email), string(inv.Role),
		inv.AccountID, inv.InvitedBy, string(status), nullString(inv.AcceptedBy),
		toMillis(inv.ExpiresAt), nullMillis(inv.AcceptedAt), nullMillis(inv.UsedAt),
		toMillis(inv.CreatedAt), toMillis(inv.UpdatedAt))
	return err
}

func (r *invitationsRepo) GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error) {
	return scanInvitation(r.c.queryRow(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token_hash = ?`, hash))
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error) {
	return scanInvitation(r.c.queryRow(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = ?`, id))
}

func (r *invitationsRepo) ListInvitationsByEmail(ctx context.Context, email string, status domain.InvitationStatus) ([]domain.Invitation, error) {
	rows, err := r.c.query(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE email = ? AND status = ? ORDER BY created_at, id`,
		domain.NormalizeEmail(email), string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invitationsRepo) MarkInvitationAccepted(ctx context.Context, id, userID string, at time.Time) (bool, error) {
	ms := toMillis(at)
	res, err := r.c.exec(ctx,
		`UPDATE invitations
		 SET status = 'accepted', accepted_by = ?, accepted_at = ?, updated_at = ?
		 WHERE id = ? AND status = 'pending'`,
		userID, ms, ms, id)
	if err != nil {
		return false, err
	}
	n, err := rowsAffected(res)
	return n == 1, err
}

func (r *invitationsRepo) MarkInvitationUsed(ctx context.Context, hash string, at time.Time) (bool, error) {
	ms := toMillis(at)
	res, err := r.c.exec(ctx,
		`UPDATE invitations
		 SET status = 'used', used_at = ?, updated_at = ?
		 WHERE token_hash = ? AND status = 'pending'`,
		ms, ms, hash)
	if err != nil {
		return false, err
	}
	n, err := rowsAffected(res)
	return n == 1, err
}

func (r *invitationsRepo) ExpirePendingInvitations(ctx context.Context, now time.Time) (int64, error) {
	ms := toMillis(now)
	res, err := r.c.exec(ctx,
		`UPDATE invitations SET status = 'expired', updated_at = ?
		 WHERE status = 'pending' AND expires_at <= ?`,
		ms, ms)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res)
}
