package pos

// Unit is the granularity a cart line is priced and decremented at.
type Unit string

const (
	UnitItem Unit = "item"
	UnitBox  Unit = "box"
)

// SellingMode restricts which units a product may be sold in.
type SellingMode string

const (
	SellItemOnly SellingMode = "item"
	SellBoxOnly  SellingMode = "box"
	SellBoth     SellingMode = "both"
)

// Product is a read-cached snapshot of the ledger's product record. Stock
// here is advisory: the ledger mutates the authoritative count, the core
// only validates requests against the last value it saw.
type Product struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Stock          int         `json:"stock"`
	ItemsPerBox    int         `json:"items_per_box"`
	UnitPriceCents int64       `json:"unit_price_cents"`
	BoxPriceCents  int64       `json:"box_price_cents"`
	Mode           SellingMode `json:"selling_mode"`
}

func (p Product) AllowsUnit(u Unit) bool {
	switch p.Mode {
	case SellItemOnly:
		return u == UnitItem
	case SellBoxOnly:
		return u == UnitBox
	default:
		return u == UnitItem || u == UnitBox
	}
}
