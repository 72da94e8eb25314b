package scheduler

import (
	"context"
	"time"

	"github.com/pharmaterm/pos-core/internal/application/ports"
	"github.com/pharmaterm/pos-core/internal/application/use_cases"
	"github.com/pharmaterm/pos-core/internal/pkg/logger"
)

// Drainer runs one drain pass over the offline queue.
type Drainer interface {
	Handle(ctx context.Context) (*use_cases.SyncReport, error)
}

// SyncScheduler drives offline queue drains: periodically while the ledger
// answers pings, immediately on an offline-to-online transition, and on
// explicit request. Passes never overlap because everything runs on the
// scheduler's own goroutine.
type SyncScheduler struct {
	sync     Drainer
	ledger   ports.Ledger
	log      *logger.Logger
	interval time.Duration

	triggerChan chan struct{}
	stopChan    chan struct{}
	online      bool
}

func NewSyncScheduler(
	sync Drainer,
	ledger ports.Ledger,
	log *logger.Logger,
	interval time.Duration,
) *SyncScheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SyncScheduler{
		sync:        sync,
		ledger:      ledger,
		log:         log,
		interval:    interval,
		triggerChan: make(chan struct{}, 1),
		stopChan:    make(chan struct{}),
	}
}

func (s *SyncScheduler) Start(ctx context.Context) {
	s.log.Info("Starting sync scheduler", "interval", s.interval.String())

	s.pass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Sync scheduler stopped")
			return
		case <-s.stopChan:
			s.log.Info("Sync scheduler stopped")
			return
		case <-ticker.C:
			s.pass(ctx)
		case <-s.triggerChan:
			s.pass(ctx)
		}
	}
}

func (s *SyncScheduler) Stop() {
	close(s.stopChan)
}

// TriggerSync requests a drain pass without waiting for the next tick.
// Non-blocking; a pending trigger is enough.
func (s *SyncScheduler) TriggerSync() {
	select {
	case s.triggerChan <- struct{}{}:
	default:
	}
}

func (s *SyncScheduler) pass(ctx context.Context) {
	wasOnline := s.online
	err := s.ledger.Ping(ctx)
	s.online = err == nil

	if err != nil {
		if wasOnline {
			s.log.Warn("Ledger went offline", "error", err.Error())
		}
		return
	}

	if !wasOnline {
		s.log.Info("Ledger connectivity restored")
	}

	if _, err := s.sync.Handle(ctx); err != nil {
		s.log.Warn("Drain pass did not complete", "error", err.Error())
	}
}
