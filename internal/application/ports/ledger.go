package ports

import (
	"context"
	"time"

	"github.com/pharmaterm/pos-core/internal/domain/pos"
)

type InvoiceInput struct {
	Reference     string
	OrgScope      string
	CustomerID    string
	TotalCents    int64
	DiscountCents int64
	PaymentMethod string
	SaleDate      time.Time
}

type SaleLineInput struct {
	ProductID      string
	Quantity       int
	Unit           pos.Unit
	UnitPriceCents int64
	ItemsPerBox    int
	BaseUnits      int
}

// Ledger is the system of record for stock, invoices and sale lines. The
// core holds no transaction across these calls; each one must be
// individually idempotent so a replay after partial failure skips phases
// that already applied:
//
//   - CreateInvoice is keyed on the payload reference and returns the
//     existing invoice id on a repeat.
//   - InsertSaleLines replaces the full line set for the invoice.
//   - DecrementStock applies at most once per (invoice, product); the
//     ledger, not the terminal's cached snapshot, decides whether stock
//     would go negative.
//
// Implementations must return a TransportError whenever a call produced no
// authoritative answer, timeouts included.
type Ledger interface {
	CreateInvoice(ctx context.Context, in InvoiceInput) (int64, error)
	InsertSaleLines(ctx context.Context, invoiceID int64, lines []SaleLineInput) error
	DecrementStock(ctx context.Context, productID string, baseUnits int, invoiceID int64) (int, error)
	GetProduct(ctx context.Context, productID string) (*pos.Product, error)
	Ping(ctx context.Context) error
}
