package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store"
	"github.com/aussiebroadwan/tenantry/pkg/idx"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

type AccountService struct {
	Store store.Store
	Gate  *RoleGate
	Now   func() time.Time
}

// CreateAccount creates an account owned by ownerID together with the
// owner's membership. Admins may create accounts for any coach; a coach may
// only create accounts for themselves. An empty ownerID means the caller.
func (s *AccountService) CreateAccount(ctx context.Context, callerID, name, ownerID string) (domain.Account, error) {
	log := slogx.FromContext(ctx).With(slog.String("caller_id", callerID))

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Account{}, domain.Invalid("name is required")
	}
	if ownerID == "" {
		ownerID = callerID
	}

	caller, err := s.Store.Users().GetUserByID(ctx, callerID)
	if err != nil {
		return domain.Account{}, storeErr(err, domain.ErrUnauthorized)
	}
	switch {
	case caller.Role == domain.GlobalAdmin:
		log.Warn("admin creating account", slog.String("owner_id", ownerID))
	case caller.Role == domain.GlobalCoach && ownerID == callerID:
	default:
		log.Info("account creation denied", slog.String("caller_role", string(caller.Role)))
		return domain.Account{}, domain.ErrUnauthorized
	}

	owner := caller
	if ownerID != callerID {
		owner, err = s.Store.Users().GetUserByID(ctx, ownerID)
		if err != nil {
			return domain.Account{}, storeErr(err, errUserNotFound)
		}
	}
	if owner.Role != domain.GlobalCoach {
		return domain.Account{}, domain.Invalid("account owner must be a coach")
	}

	now := nowFrom(s.Now)
	acct := domain.Account{
		ID:        idx.NewAt(now).String(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().CreateAccount(ctx, acct); err != nil {
			return err
		}
		return tx.Members().CreateMember(ctx, domain.AccountMember{
			ID:        idx.NewAt(now).String(),
			AccountID: acct.ID,
			UserID:    ownerID,
			Role:      domain.MemberOwner,
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	if err != nil {
		log.Error("failed to create account", slog.Any("error", err))
		return domain.Account{}, domain.Unavailable(err)
	}

	log.Info("account created",
		slog.String("account_id", acct.ID),
		slog.String("owner_id", ownerID),
	)
	return acct, nil
}

// GetAccount returns the account if callerID is at least a client in it.
func (s *AccountService) GetAccount(ctx context.Context, callerID, accountID string) (domain.Account, error) {
	if err := s.Gate.Require(ctx, callerID, accountID, domain.MemberClient); err != nil {
		return domain.Account{}, err
	}
	acct, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return domain.Account{}, storeErr(err, errAccountNotFound)
	}
	return acct, nil
}

func (s *AccountService) ListMembers(ctx context.Context, callerID, accountID string) ([]domain.AccountMember, error) {
	if err := s.Gate.Require(ctx, callerID, accountID, domain.MemberClient); err != nil {
		return nil, err
	}
	members, err := s.Store.Members().ListMembers(ctx, accountID)
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return members, nil
}

// ListOwned returns the accounts owned by ownerID.
func (s *AccountService) ListOwned(ctx context.Context, ownerID string) ([]domain.Account, error) {
	accts, err := s.Store.Accounts().ListAccountsByOwner(ctx, ownerID)
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return accts, nil
}
