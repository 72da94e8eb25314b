package ports

import (
	"context"
	"time"

	"github.com/pharmaterm/pos-core/internal/domain/pos"
)

// PendingTransaction is a finalized checkout waiting for the ledger to come
// back. Corrupt is set when the stored payload could not be decoded; the
// entry stays in the queue so nothing is dropped without a record.
type PendingTransaction struct {
	OfflineID  int64
	Payload    *pos.CheckoutPayload
	CapturedAt time.Time
	OrgScope   string
	Corrupt    error
}

// OfflineQueue is the durable, process-local store of deferred checkouts.
// Entries are never deduplicated: two identical carts checked out twice are
// two sales.
type OfflineQueue interface {
	Enqueue(ctx context.Context, payload *pos.CheckoutPayload) (int64, error)
	List(ctx context.Context) ([]PendingTransaction, error)
	Remove(ctx context.Context, offlineID int64) error
	Clear(ctx context.Context) error
	Depth(ctx context.Context) (int, error)
}
