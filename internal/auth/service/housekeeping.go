package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/ccauth/internal/auth/store"
)

// HousekeepingService periodically samples the store and publishes client
// and token counts as gauges. It never deletes or modifies records: expired
// tokens are kept so introspection can report them as inactive.
type HousekeepingService struct {
	Store    store.Store
	Metrics  *Metrics
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 minute.
func NewHousekeepingService(s store.Store, metrics *Metrics, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}

	return &HousekeepingService{
		Store:    s,
		Metrics:  metrics,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress sampling.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sample immediately on startup
	s.refresh(context.Background())

	for {
		select {
		case <-ticker.C:
			s.refresh(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// refresh updates the store gauges. A failed count leaves the previous
// values in place.
func (s *HousekeepingService) refresh(ctx context.Context) {
	clients, err := s.Store.Clients().CountClients(ctx)
	if err != nil {
		s.Logger.Error("failed to count clients", "error", err)
		return
	}

	tokens, err := s.Store.Tokens().CountTokens(ctx, s.Now())
	if err != nil {
		s.Logger.Error("failed to count tokens", "error", err)
		return
	}

	s.Metrics.storeStats(clients, tokens)
	s.Logger.Debug("housekeeping sample",
		"clients", clients,
		"tokens", tokens.Total,
		"expired_tokens", tokens.Expired,
	)
}
