package pos

import (
	"fmt"
)

// Settings carries terminal-level configuration that feeds price display.
// It is injected at construction so nothing in the domain reads mutable
// global state.
type Settings struct {
	CurrencySymbol string
	OrgScope       string
}

func (s Settings) FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, s.CurrencySymbol, cents/100, cents%100)
}
