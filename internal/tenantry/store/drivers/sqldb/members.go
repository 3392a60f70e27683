package sqldb

import (
	"context"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
)

type membersRepo struct{ c conn }

const memberColumns = `id, account_id, user_id, role, created_at, updated_at`

func scanMember(row interface{ Scan(...any) error }) (domain.AccountMember, error) {
	var (
		m                domain.AccountMember
		role             string
		created, updated int64
	)
	if err := row.Scan(&m.ID, &m.AccountID, &m.UserID, &role, &created, &updated); err != nil {
		return domain.AccountMember{}, mapNotFound(err)
	}
	m.Role = domain.MemberRole(role)
	m.CreatedAt = fromMillis(created)
	m.UpdatedAt = fromMillis(updated)
	return m, nil
}

func (r *membersRepo) CreateMember(ctx context.Context, m domain.AccountMember) error {
	_, err := r.c.exec(ctx,
		`INSERT INTO account_members (`+memberColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.AccountID, m.UserID, string(m.Role), toMillis(m.CreatedAt), toMillis(m.UpdatedAt))
	return err
}

func (r *membersRepo) GetMember(ctx context.Context, accountID, userID string) (domain.AccountMember, error) {
	return scanMember(r.c.queryRow(ctx,
		`SELECT `+memberColumns+` FROM account_members WHERE account_id = ? AND user_id = ?`,
		accountID, userID))
}

func (r *membersRepo) ListMembers(ctx context.Context, accountID string) ([]domain.AccountMember, error) {
	rows, err := r.c.query(ctx,
		`SELECT `+memberColumns+` FROM account_members WHERE account_id = ? ORDER BY created_at, id`,
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AccountMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
