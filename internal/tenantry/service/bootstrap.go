package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

// BootstrapService seeds the first platform admin from configuration.
type BootstrapService struct {
	Store store.Store
	Now   func() time.Time
}

// EnsureAdmin makes sure userID exists and holds the admin role. It is safe
// to run on every start.
func (s *BootstrapService) EnsureAdmin(ctx context.Context, userID, email string) error {
	l := slogx.FromContext(ctx).With(slog.String("user_id", userID))
	now := nowFrom(s.Now)

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	switch {
	case err == nil:
		if u.Role == domain.GlobalAdmin {
			l.Debug("bootstrap admin already present")
			return nil
		}
		if err := s.Store.Users().UpdateRole(ctx, userID, domain.GlobalAdmin, now); err != nil {
			return domain.Unavailable(err)
		}
		l.Warn("bootstrap admin promoted", slog.String("from", string(u.Role)))
		return nil

	case errors.Is(err, store.ErrNotFound):
		email = domain.NormalizeEmail(email)
		if email == "" {
			return domain.Invalid("bootstrap admin email is required")
		}
		err := s.Store.Users().CreateUser(ctx, domain.User{
			ID:        userID,
			Email:     email,
			Role:      domain.GlobalAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return domain.Unavailable(err)
		}
		l.Warn("bootstrap admin created", slogx.Email("email", email))
		return nil

	default:
		return domain.Unavailable(err)
	}
}
