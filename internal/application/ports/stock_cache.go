package ports

import (
	"context"
	"time"

	"github.com/pharmaterm/pos-core/internal/domain/pos"
)

// StockCache holds the advisory product snapshots the cart validates
// against. Staleness is expected; the cache exists for fail-fast UX, the
// ledger's decrement is the correctness mechanism.
type StockCache interface {
	GetProduct(ctx context.Context, productID string) (*pos.Product, bool, error)
	SetProduct(ctx context.Context, p *pos.Product, ttl time.Duration) error
	Invalidate(ctx context.Context, productID string) error
}
