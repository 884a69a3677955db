// Package syncer periodically pulls the external source's current state
// and feeds it through the reconciliation service.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"weekcal/gateway"
	"weekcal/merge"
)

const fetchTimeout = 2 * time.Minute

// Syncer drives auto-sync on a fixed interval. A failed fetch leaves the
// synced bucket at its last successful state; no partial merge happens.
type Syncer struct {
	source  gateway.BatchSource
	service *merge.Service
	cron    *cron.Cron
	logger  *slog.Logger
}

// New schedules a sync every interval.
func New(source gateway.BatchSource, service *merge.Service, interval time.Duration, logger *slog.Logger) (*Syncer, error) {
	if source == nil || service == nil {
		return nil, fmt.Errorf("source and service are required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Syncer{
		source:  source,
		service: service,
		cron:    cron.New(),
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), s.tick); err != nil {
		return nil, fmt.Errorf("schedule sync: %w", err)
	}
	return s, nil
}

// Start begins the schedule and runs one sync immediately.
func (s *Syncer) Start() {
	s.tick()
	s.cron.Start()
}

// Stop halts the schedule, waiting for a running tick to finish.
func (s *Syncer) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Syncer) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	batch, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.Error("sync fetch failed, keeping previous synced state", "err", err)
		return
	}

	merged, err := s.service.Sync(ctx, batch)
	if err != nil {
		s.logger.Error("sync merge failed", "err", err)
		return
	}
	s.logger.Info("sync completed", "batch", len(batch), "total", len(merged))
}
