package use_cases

import (
	"context"

	"github.com/pharmaterm/pos-core/internal/application/ports"
	domainErrors "github.com/pharmaterm/pos-core/internal/domain/errors"
	"github.com/pharmaterm/pos-core/internal/pkg/logger"
)

// SyncReport is what a drain pass tells its caller: how many pending
// transactions committed, how many are still queued, and how many corrupt
// entries were passed over.
type SyncReport struct {
	Synced    int
	Remaining int
	Skipped   int
}

// SyncUseCase drains the offline queue through the same commit path the
// interactive checkout uses. A pass is fail-fast: the first commit failure
// keeps its entry and everything after it, so a still-degraded connection
// is not hammered with the rest of the queue.
type SyncUseCase struct {
	checkout *CheckoutUseCase
	queue    ports.OfflineQueue
	log      *logger.Logger
}

func NewSyncUseCase(checkout *CheckoutUseCase, queue ports.OfflineQueue, log *logger.Logger) *SyncUseCase {
	return &SyncUseCase{
		checkout: checkout,
		queue:    queue,
		log:      log,
	}
}

// Drain replays pending transactions in capture order. Corrupt entries are
// logged and skipped but never removed. On a commit failure the partial
// report is returned along with the error.
func (uc *SyncUseCase) Drain(ctx context.Context) (*SyncReport, error) {
	entries, err := uc.queue.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{Remaining: len(entries)}
	if len(entries) == 0 {
		return report, nil
	}

	uc.log.Info("Draining offline queue", "pending", len(entries))

	for _, entry := range entries {
		if entry.Corrupt != nil {
			corruption := &domainErrors.QueueCorruptionError{OfflineID: entry.OfflineID, Err: entry.Corrupt}
			uc.log.Error("Skipping corrupt pending transaction", "offline_id", entry.OfflineID, "error", corruption.Error())
			report.Skipped++
			continue
		}

		if err := uc.checkout.Replay(ctx, entry.Payload); err != nil {
			report.Remaining = len(entries) - report.Synced
			uc.log.Warn("Sync pass stopped",
				"offline_id", entry.OfflineID,
				"reference", entry.Payload.Reference,
				"synced", report.Synced,
				"remaining", report.Remaining,
				"error", err.Error(),
			)
			return report, err
		}

		if err := uc.queue.Remove(ctx, entry.OfflineID); err != nil {
			// The commit applied but the entry could not be removed. The
			// next pass will replay it and the ledger's idempotency keys
			// will absorb the repeat.
			report.Remaining = len(entries) - report.Synced
			uc.log.Error("Failed to remove synced transaction", "offline_id", entry.OfflineID, "error", err.Error())
			return report, err
		}

		report.Synced++
		uc.log.Info("Pending transaction synced",
			"offline_id", entry.OfflineID,
			"reference", entry.Payload.Reference,
		)
	}

	report.Remaining = len(entries) - report.Synced
	return report, nil
}
