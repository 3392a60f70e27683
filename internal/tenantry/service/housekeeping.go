package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/obs"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/tokens"
)

// HousekeepingService periodically moves overdue invitations to expired and
// sweeps expired signup tokens. Validation already treats overdue records as
// expired, so this only keeps status columns honest and memory bounded.
type HousekeepingService struct {
	Store    store.Store
	Tokens   tokens.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time
	Metrics  *obs.Metrics

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(s store.Store, t tokens.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HousekeepingService{
		Store:    s,
		Tokens:   t,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.RunOnce(ctx)
	for {
		select {
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-s.stopCh:
			return
		}
	}
}

// RunOnce performs one cleanup pass. Each task is independent: a failure in
// one does not skip the other.
func (s *HousekeepingService) RunOnce(ctx context.Context) (expired int64, swept int) {
	now := nowFrom(s.Now)

	expired, err := s.Store.Invitations().ExpirePendingInvitations(ctx, now)
	s.Metrics.Housekeeping("expire_invitations", err)
	if err != nil {
		s.Logger.Error("failed to expire pending invitations", "error", err)
	} else if expired > 0 {
		s.Logger.Info("expired pending invitations", "count", expired)
	}

	if s.Tokens != nil {
		swept, err = s.Tokens.SweepExpired(ctx)
		s.Metrics.Housekeeping("sweep_tokens", err)
		if err != nil {
			s.Logger.Error("failed to sweep expired tokens", "error", err)
		} else if swept > 0 {
			s.Logger.Info("swept expired tokens", "count", swept)
		}
	}

	return expired, swept
}
