package use_cases

import (
	"context"
	"time"

	"github.com/pharmaterm/pos-core/internal/application/ports"
	"github.com/pharmaterm/pos-core/internal/domain/pos"
	"github.com/pharmaterm/pos-core/internal/pkg/logger"
)

// ProductLookupUseCase is the read-through path that feeds the cart its
// advisory stock snapshots: cache first, then the ledger, writing back with
// a TTL so a busy terminal does not hit the ledger on every scan.
type ProductLookupUseCase struct {
	ledger ports.Ledger
	cache  ports.StockCache
	ttl    time.Duration
	log    *logger.Logger
}

func NewProductLookupUseCase(ledger ports.Ledger, cache ports.StockCache, ttl time.Duration, log *logger.Logger) *ProductLookupUseCase {
	return &ProductLookupUseCase{
		ledger: ledger,
		cache:  cache,
		ttl:    ttl,
		log:    log,
	}
}

func (uc *ProductLookupUseCase) Lookup(ctx context.Context, productID string) (*pos.Product, error) {
	if uc.cache != nil {
		p, ok, err := uc.cache.GetProduct(ctx, productID)
		if err != nil {
			uc.log.Warn("Product cache read failed", "product_id", productID, "error", err.Error())
		} else if ok {
			return p, nil
		}
	}

	p, err := uc.ledger.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.SetProduct(ctx, p, uc.ttl); err != nil {
			uc.log.Warn("Product cache write failed", "product_id", productID, "error", err.Error())
		}
	}

	return p, nil
}
