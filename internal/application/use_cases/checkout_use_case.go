package use_cases

import (
	"context"
	"fmt"

	"github.com/pharmaterm/pos-core/internal/application/ports"
	domainErrors "github.com/pharmaterm/pos-core/internal/domain/errors"
	"github.com/pharmaterm/pos-core/internal/domain/pos"
	"github.com/pharmaterm/pos-core/internal/pkg/logger"
)

// CheckoutUseCase commits a finalized cart as a durable sale, or defers it
// to the offline queue. The commit is three sequential ledger calls with no
// surrounding transaction; each phase is idempotent on the payload
// reference so a replay can skip what already applied.
type CheckoutUseCase struct {
	ledger   ports.Ledger
	queue    ports.OfflineQueue
	cache    ports.StockCache
	settings pos.Settings
	log      *logger.Logger
}

func NewCheckoutUseCase(
	ledger ports.Ledger,
	queue ports.OfflineQueue,
	cache ports.StockCache,
	settings pos.Settings,
	log *logger.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		ledger:   ledger,
		queue:    queue,
		cache:    cache,
		settings: settings,
		log:      log,
	}
}

// Execute is the interactive path. A transport failure before the invoice
// exists is absorbed into the offline queue and reported as a deferred
// success; the terminal keeps selling. Any failure after the invoice was
// created is surfaced — some of the sale may already be recorded remotely
// and needs human attention.
func (uc *CheckoutUseCase) Execute(ctx context.Context, payload *pos.CheckoutPayload) (*pos.Receipt, error) {
	invoiceID, err := uc.ledger.CreateInvoice(ctx, invoiceInput(payload))
	if err != nil {
		if domainErrors.IsTransport(err) {
			offlineID, qErr := uc.queue.Enqueue(ctx, payload)
			if qErr != nil {
				return nil, fmt.Errorf("ledger unreachable and offline enqueue failed: %w", qErr)
			}
			uc.log.Warn("Ledger unreachable, checkout deferred",
				"reference", payload.Reference,
				"offline_id", offlineID,
				"error", err.Error(),
			)
			return pos.NewReceipt(0, payload, uc.settings, true), nil
		}
		uc.log.Error("Invoice creation rejected", "reference", payload.Reference, "error", err.Error())
		return nil, err
	}

	if err := uc.commitAfterInvoice(ctx, invoiceID, payload); err != nil {
		uc.log.Error("Checkout left partially committed",
			"reference", payload.Reference,
			"invoice_id", invoiceID,
			"error", err.Error(),
		)
		return nil, err
	}

	uc.invalidateSnapshots(ctx, payload)

	uc.log.Info("Checkout committed",
		"reference", payload.Reference,
		"invoice_id", invoiceID,
		"lines", len(payload.Lines),
		"total_cents", payload.TotalCents,
	)

	return pos.NewReceipt(invoiceID, payload, uc.settings, false), nil
}

// Replay runs the same commit for a queued payload. Nothing is re-deferred
// here: every failure bubbles up so the sync pass can stop and keep the
// entry.
func (uc *CheckoutUseCase) Replay(ctx context.Context, payload *pos.CheckoutPayload) error {
	invoiceID, err := uc.ledger.CreateInvoice(ctx, invoiceInput(payload))
	if err != nil {
		return err
	}

	if err := uc.commitAfterInvoice(ctx, invoiceID, payload); err != nil {
		return err
	}

	uc.invalidateSnapshots(ctx, payload)
	return nil
}

func (uc *CheckoutUseCase) commitAfterInvoice(ctx context.Context, invoiceID int64, payload *pos.CheckoutPayload) error {
	if err := uc.ledger.InsertSaleLines(ctx, invoiceID, saleLines(payload)); err != nil {
		return &domainErrors.PartialCommitError{
			InvoiceID: invoiceID,
			Reference: payload.Reference,
			Phase:     "insert_sale_lines",
			Err:       err,
		}
	}

	for _, line := range payload.Lines {
		if _, err := uc.ledger.DecrementStock(ctx, line.ProductID, line.BaseUnits, invoiceID); err != nil {
			return &domainErrors.PartialCommitError{
				InvoiceID: invoiceID,
				Reference: payload.Reference,
				Phase:     "decrement_stock",
				Err:       err,
			}
		}
	}

	return nil
}

// invalidateSnapshots drops cached stock for products the sale just
// decremented. Best effort: the cache is advisory.
func (uc *CheckoutUseCase) invalidateSnapshots(ctx context.Context, payload *pos.CheckoutPayload) {
	if uc.cache == nil {
		return
	}
	for _, line := range payload.Lines {
		if err := uc.cache.Invalidate(ctx, line.ProductID); err != nil {
			uc.log.Warn("Failed to invalidate product snapshot", "product_id", line.ProductID, "error", err.Error())
		}
	}
}

func invoiceInput(payload *pos.CheckoutPayload) ports.InvoiceInput {
	return ports.InvoiceInput{
		Reference:     payload.Reference,
		OrgScope:      payload.OrgScope,
		CustomerID:    payload.CustomerID,
		TotalCents:    payload.TotalCents,
		DiscountCents: payload.DiscountCents,
		PaymentMethod: payload.PaymentMethod,
		SaleDate:      payload.SaleDate,
	}
}

func saleLines(payload *pos.CheckoutPayload) []ports.SaleLineInput {
	lines := make([]ports.SaleLineInput, 0, len(payload.Lines))
	for _, line := range payload.Lines {
		lines = append(lines, ports.SaleLineInput{
			ProductID:      line.ProductID,
			Quantity:       line.Quantity,
			Unit:           line.Unit,
			UnitPriceCents: line.UnitPriceCents,
			ItemsPerBox:    line.ItemsPerBox,
			BaseUnits:      line.BaseUnits,
		})
	}
	return lines
}
