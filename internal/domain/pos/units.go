package pos

// ConversionFactor returns how many base (item) units one line unit
// represents. A missing or nonsensical items-per-box falls back to 1 so the
// factor can never zero out a stock decrement.
func ConversionFactor(p Product, u Unit) int {
	if u != UnitBox {
		return 1
	}
	if p.ItemsPerBox < 1 {
		return 1
	}
	return p.ItemsPerBox
}

// ResolveUnitPrice returns the effective per-unit price for a product sold
// in the given unit. A box price of zero means "not set", in which case the
// box price derives from the item price.
func ResolveUnitPrice(p Product, u Unit) int64 {
	if u != UnitBox {
		return p.UnitPriceCents
	}
	if p.BoxPriceCents > 0 {
		return p.BoxPriceCents
	}
	return p.UnitPriceCents * int64(ConversionFactor(p, u))
}
