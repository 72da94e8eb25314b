package pos

import (
	"time"

	domainErrors "github.com/pharmaterm/pos-core/internal/domain/errors"
	"github.com/pharmaterm/pos-core/internal/pkg/clock"
)

// CartLine is one priced position of the order being built. Quantity is in
// the line's own unit; BaseUnits normalizes it for stock checks.
type CartLine struct {
	Product         Product
	Quantity        int
	Unit            Unit
	UnitPriceCents  int64
	PriceOverridden bool
}

func (l CartLine) LineTotalCents() int64 {
	return int64(l.Quantity) * l.UnitPriceCents
}

func (l CartLine) BaseUnits() int {
	return l.Quantity * ConversionFactor(l.Product, l.Unit)
}

// Cart is the in-memory order a single operator is building. It is not safe
// for concurrent use: the terminal's event loop owns it, and the UI must
// keep mutations disabled while a checkout for it is in flight.
type Cart struct {
	settings Settings
	clk      clock.Clock

	lines         []CartLine
	customerID    string
	discountCents int64
	paymentMethod string
	saleDate      time.Time
}

func NewCart(settings Settings, clk clock.Clock) *Cart {
	return &Cart{
		settings: settings,
		clk:      clk,
	}
}

func (c *Cart) Len() int {
	return len(c.lines)
}

// Lines returns a copy; mutations go through the cart's own operations so
// the stock bound is always re-checked.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// AddLine merges into an existing (product, unit) line or appends a new one
// at quantity 1. The stock bound is checked against the snapshot passed in,
// summed over every line of the same product; a violation rejects the
// mutation and leaves the cart exactly as it was.
func (c *Cart) AddLine(p Product, u Unit) error {
	if !p.AllowsUnit(u) {
		return domainErrors.ErrUnitNotSellable
	}

	idx := c.findLine(p.ID, u)

	prospective := ConversionFactor(p, u)
	for _, line := range c.lines {
		if line.Product.ID == p.ID {
			prospective += line.Quantity * ConversionFactor(line.Product, line.Unit)
		}
	}

	if prospective > p.Stock {
		return domainErrors.NewStockValidation(p.ID, p.Name, prospective, p.Stock)
	}

	// Keep every line of this product on the freshest snapshot we have.
	for i := range c.lines {
		if c.lines[i].Product.ID == p.ID {
			c.lines[i].Product = p
		}
	}

	if idx >= 0 {
		c.lines[idx].Quantity++
		return nil
	}

	c.lines = append(c.lines, CartLine{
		Product:        p,
		Quantity:       1,
		Unit:           u,
		UnitPriceCents: ResolveUnitPrice(p, u),
	})
	return nil
}

func (c *Cart) UpdateLineQuantity(index, quantity int) error {
	if index < 0 || index >= len(c.lines) {
		return domainErrors.ErrLineNotFound
	}
	if quantity <= 0 {
		return domainErrors.ErrInvalidQuantity
	}

	line := c.lines[index]
	requested := c.productBaseUnits(line.Product.ID, index) +
		quantity*ConversionFactor(line.Product, line.Unit)
	if requested > line.Product.Stock {
		return domainErrors.NewStockValidation(line.Product.ID, line.Product.Name, requested, line.Product.Stock)
	}

	c.lines[index].Quantity = quantity
	return nil
}

// UpdateLineUnit switches a line between item and box pricing. The unit
// price is re-derived and any manual override is reset, so the line cannot
// keep an item price while decrementing box quantities.
func (c *Cart) UpdateLineUnit(index int, u Unit) error {
	if index < 0 || index >= len(c.lines) {
		return domainErrors.ErrLineNotFound
	}

	line := c.lines[index]
	if line.Unit == u {
		return nil
	}
	if !line.Product.AllowsUnit(u) {
		return domainErrors.ErrUnitNotSellable
	}
	if other := c.findLine(line.Product.ID, u); other >= 0 && other != index {
		return domainErrors.ErrDuplicateLine
	}

	requested := c.productBaseUnits(line.Product.ID, index) +
		line.Quantity*ConversionFactor(line.Product, u)
	if requested > line.Product.Stock {
		return domainErrors.NewStockValidation(line.Product.ID, line.Product.Name, requested, line.Product.Stock)
	}

	c.lines[index].Unit = u
	c.lines[index].UnitPriceCents = ResolveUnitPrice(line.Product, u)
	c.lines[index].PriceOverridden = false
	return nil
}

func (c *Cart) SetLinePrice(index int, cents int64) error {
	if index < 0 || index >= len(c.lines) {
		return domainErrors.ErrLineNotFound
	}
	if cents < 0 {
		return domainErrors.ErrInvalidPrice
	}
	c.lines[index].UnitPriceCents = cents
	c.lines[index].PriceOverridden = true
	return nil
}

func (c *Cart) RemoveLine(index int) error {
	if index < 0 || index >= len(c.lines) {
		return domainErrors.ErrLineNotFound
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return nil
}

func (c *Cart) SetDiscount(cents int64) error {
	if cents < 0 {
		return domainErrors.ErrInvalidDiscount
	}
	c.discountCents = cents
	return nil
}

func (c *Cart) SetCustomer(id string) {
	c.customerID = id
}

func (c *Cart) SetPaymentMethod(method string) {
	c.paymentMethod = method
}

func (c *Cart) SetSaleDate(t time.Time) {
	c.saleDate = t
}

// TotalCents is Σ line totals − discount. A discount larger than the
// subtotal goes through as a negative total; the ledger decides what to do
// with it.
func (c *Cart) TotalCents() int64 {
	var sum int64
	for _, line := range c.lines {
		sum += line.LineTotalCents()
	}
	return sum - c.discountCents
}

// Finalize snapshots the cart into an immutable checkout payload. The cart
// itself is untouched; the caller clears it once the checkout is committed
// or deferred.
func (c *Cart) Finalize(reference string) (*CheckoutPayload, error) {
	if len(c.lines) == 0 {
		return nil, domainErrors.ErrEmptyCart
	}

	saleDate := c.saleDate
	if saleDate.IsZero() {
		saleDate = c.clk.Now()
	}

	lines := make([]PayloadLine, 0, len(c.lines))
	for _, line := range c.lines {
		lines = append(lines, PayloadLine{
			ProductID:      line.Product.ID,
			ProductName:    line.Product.Name,
			Quantity:       line.Quantity,
			Unit:           line.Unit,
			UnitPriceCents: line.UnitPriceCents,
			ItemsPerBox:    line.Product.ItemsPerBox,
			BaseUnits:      line.BaseUnits(),
		})
	}

	return &CheckoutPayload{
		Reference:     reference,
		OrgScope:      c.settings.OrgScope,
		CustomerID:    c.customerID,
		DiscountCents: c.discountCents,
		PaymentMethod: c.paymentMethod,
		SaleDate:      saleDate,
		Lines:         lines,
		TotalCents:    c.TotalCents(),
	}, nil
}

func (c *Cart) Clear() {
	c.lines = nil
	c.customerID = ""
	c.discountCents = 0
	c.paymentMethod = ""
	c.saleDate = time.Time{}
}

func (c *Cart) findLine(productID string, u Unit) int {
	for i, line := range c.lines {
		if line.Product.ID == productID && line.Unit == u {
			return i
		}
	}
	return -1
}

// productBaseUnits sums the base units of every line of the product except
// the one at the excluded index.
func (c *Cart) productBaseUnits(productID string, exclude int) int {
	total := 0
	for i, line := range c.lines {
		if i == exclude || line.Product.ID != productID {
			continue
		}
		total += line.BaseUnits()
	}
	return total
}
