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

type UserService struct {
	Store store.Store
	Now   func() time.Time
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, storeErr(err, errUserNotFound)
	}
	return u, nil
}

// Ensure mirrors an authenticated caller into the directory the first time
// they are seen, with the lowest global role. Existing users are returned
// untouched.
func (s *UserService) Ensure(ctx context.Context, userID, email string) (domain.User, error) {
	if userID == "" {
		return domain.User{}, domain.Invalid("user id is required")
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, domain.Unavailable(err)
	}

	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.Invalid("email is required")
	}

	now := nowFrom(s.Now)
	u = domain.User{ID: userID, Email: email, Role: domain.GlobalClient, CreatedAt: now, UpdatedAt: now}
	err = s.Store.Users().CreateUser(ctx, u)
	if errors.Is(err, store.ErrAlreadyExists) {
		// Either a concurrent request won the insert or the email belongs
		// to somebody else.
		existing, getErr := s.Store.Users().GetUserByID(ctx, userID)
		if getErr == nil {
			return existing, nil
		}
		return domain.User{}, domain.Invalid("email already registered")
	}
	if err != nil {
		return domain.User{}, domain.Unavailable(err)
	}

	slogx.FromContext(ctx).Info("user registered",
		slog.String("user_id", userID),
		slogx.Email("email", email),
	)
	return u, nil
}
