package commands

import (
	"context"

	"github.com/pharmaterm/pos-core/internal/application/use_cases"
	"github.com/pharmaterm/pos-core/internal/infrastructure/monitoring"
	"github.com/pharmaterm/pos-core/internal/pkg/logger"
)

// SyncHandler backs the explicit "sync now" action and the scheduler's
// automatic passes.
type SyncHandler struct {
	sync *use_cases.SyncUseCase
	log  *logger.Logger
}

func NewSyncHandler(sync *use_cases.SyncUseCase, log *logger.Logger) *SyncHandler {
	return &SyncHandler{
		sync: sync,
		log:  log,
	}
}

func (h *SyncHandler) Handle(ctx context.Context) (*use_cases.SyncReport, error) {
	report, err := h.sync.Drain(ctx)
	if err != nil {
		if report != nil {
			monitoring.RecordSyncPass("partial", report.Synced, report.Skipped)
			monitoring.UpdateQueueDepth(report.Remaining)
		} else {
			monitoring.RecordSyncPass("failed", 0, 0)
		}
		return report, err
	}

	monitoring.RecordSyncPass("completed", report.Synced, report.Skipped)
	monitoring.UpdateQueueDepth(report.Remaining)

	if report.Synced > 0 || report.Skipped > 0 {
		h.log.Info("Offline queue drain finished",
			"synced", report.Synced,
			"remaining", report.Remaining,
			"skipped", report.Skipped,
		)
	}

	return report, nil
}
