package pos

import (
	"time"
)

// PayloadLine is a cart line frozen for commit. ItemsPerBox is captured so
// a replay months later decrements what was actually sold, not what the
// product record says by then.
type PayloadLine struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	Unit           Unit   `json:"unit"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	ItemsPerBox    int    `json:"items_per_box"`
	BaseUnits      int    `json:"base_units"`
}

// CheckoutPayload is the immutable snapshot produced by Cart.Finalize. The
// reference identifies this checkout across retries, offline replay and
// partial-commit reconciliation.
type CheckoutPayload struct {
	Reference     string        `json:"reference"`
	OrgScope      string        `json:"org_scope"`
	CustomerID    string        `json:"customer_id,omitempty"`
	DiscountCents int64         `json:"discount_cents"`
	PaymentMethod string        `json:"payment_method"`
	SaleDate      time.Time     `json:"sale_date"`
	Lines         []PayloadLine `json:"lines"`
	TotalCents    int64         `json:"total_cents"`
}

// Receipt describes a committed (or deferred) sale for display and
// printing. Deferred receipts have no invoice id yet; the sync engine will
// create it later.
type Receipt struct {
	InvoiceID      int64
	Reference      string
	Lines          []PayloadLine
	TotalCents     int64
	FormattedTotal string
	Deferred       bool
}

func NewReceipt(invoiceID int64, payload *CheckoutPayload, settings Settings, deferred bool) *Receipt {
	return &Receipt{
		InvoiceID:      invoiceID,
		Reference:      payload.Reference,
		Lines:          payload.Lines,
		TotalCents:     payload.TotalCents,
		FormattedTotal: settings.FormatCents(payload.TotalCents),
		Deferred:       deferred,
	}
}
