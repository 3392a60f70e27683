package tokens

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store"
	"github.com/aussiebroadwan/tenantry/pkg/cryptox"
	"github.com/aussiebroadwan/tenantry/pkg/slogx"
)

// MemoryStore is a process-local Store. Entries are keyed by the token
// fingerprint so the raw token is never held after Issue returns.
type MemoryStore struct {
	opts Options

	mu      sync.Mutex
	entries map[string]domain.InviteToken
}

func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		opts:    opts.withDefaults(),
		entries: make(map[string]domain.InviteToken),
	}
}

func (s *MemoryStore) Issue(ctx context.Context, email string, role domain.GlobalRole) (string, error) {
	email, err := validateIssue(email, role)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	token, fp, err := cryptox.GenerateUniqueToken(cryptox.TokenSize256, uniqueAttempts, func(fp string) bool {
		_, taken := s.entries[fp]
		return taken
	})
	if err != nil {
		return "", err
	}

	now := s.opts.Now()
	s.entries[fp] = domain.InviteToken{
		TokenHash: fp,
		Email:     email,
		Role:      role,
		ExpiresAt: now.Add(s.opts.TTL),
		CreatedAt: now,
	}

	slogx.FromContext(ctx).Debug("invite token issued",
		slogx.Email("email", email),
		slog.String("role", string(role)),
		slog.String("store", string(ModeMemory)),
	)
	return token, nil
}

// Lookup reads and, if needed, expires the entry under one lock hold.
func (s *MemoryStore) Lookup(ctx context.Context, token string) (domain.InviteToken, error) {
	fp := fingerprint(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.entries[fp]
	if !ok {
		return domain.InviteToken{}, domain.ErrNotFound
	}
	if !alive(t, s.opts.Now()) {
		delete(s.entries, fp)
		return domain.InviteToken{}, domain.ErrExpired
	}
	return t, nil
}

func (s *MemoryStore) Consume(ctx context.Context, token string) (bool, error) {
	fp := fingerprint(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.entries[fp]
	if !ok {
		return false, nil
	}
	delete(s.entries, fp)
	return alive(t, s.opts.Now()), nil
}

// Claim ignores tx; undo re-inserts the entry.
func (s *MemoryStore) Claim(ctx context.Context, _ store.Tx, token string) (domain.InviteToken, func(), error) {
	fp := fingerprint(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.entries[fp]
	if !ok {
		return domain.InviteToken{}, nil, domain.ErrAlreadyUsed
	}
	delete(s.entries, fp)
	if !alive(t, s.opts.Now()) {
		return domain.InviteToken{}, nil, domain.ErrExpired
	}

	undo := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, taken := s.entries[fp]; !taken {
			s.entries[fp] = t
		}
	}
	return t, undo, nil
}

func (s *MemoryStore) SweepExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Now()
	n := 0
	for fp, t := range s.entries {
		if !alive(t, now) {
			delete(s.entries, fp)
			n++
		}
	}
	return n, nil
}

// Len reports the number of entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
