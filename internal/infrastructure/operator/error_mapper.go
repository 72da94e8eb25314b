package operator

import (
	"errors"
	"fmt"

	domainErrors "github.com/pharmaterm/pos-core/internal/domain/errors"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Outcome is what the sales screen shows the operator when something goes
// wrong. Detail names the offending product or invoice so the operator
// knows which line to fix.
type Outcome struct {
	Severity Severity
	Message  string
	Detail   string
}

var errorMappings = map[error]Outcome{
	domainErrors.ErrOutOfStock: {
		Severity: SeverityWarning,
		Message:  "Not enough stock for this line",
	},
	domainErrors.ErrInvalidQuantity: {
		Severity: SeverityWarning,
		Message:  "Quantity must be greater than zero",
	},
	domainErrors.ErrInvalidDiscount: {
		Severity: SeverityWarning,
		Message:  "Discount cannot be negative",
	},
	domainErrors.ErrInvalidPrice: {
		Severity: SeverityWarning,
		Message:  "Price cannot be negative",
	},
	domainErrors.ErrUnitNotSellable: {
		Severity: SeverityWarning,
		Message:  "This product is not sold in that unit",
	},
	domainErrors.ErrDuplicateLine: {
		Severity: SeverityWarning,
		Message:  "This product is already in the cart in that unit",
	},
	domainErrors.ErrLineNotFound: {
		Severity: SeverityWarning,
		Message:  "The selected line no longer exists",
	},
	domainErrors.ErrEmptyCart: {
		Severity: SeverityWarning,
		Message:  "Add at least one product before checking out",
	},
	domainErrors.ErrProductNotFound: {
		Severity: SeverityWarning,
		Message:  "Product not found in the catalog",
	},
	domainErrors.ErrRejectedByLedger: {
		Severity: SeverityError,
		Message:  "The sale was refused; adjust the cart and retry",
	},
	domainErrors.ErrLedgerUnavailable: {
		Severity: SeverityInfo,
		Message:  "Working offline; the sale will sync when the connection returns",
	},
	domainErrors.ErrQueueCorrupted: {
		Severity: SeverityError,
		Message:  "A stored offline sale could not be read; contact support",
	},
}

// Map turns an engine error into an operator-visible outcome. Typed errors
// contribute line-identifying detail on top of the sentinel's message.
func Map(err error) Outcome {
	outcome := Outcome{
		Severity: SeverityError,
		Message:  "Something went wrong; the sale was not recorded",
	}

	for sentinel, mapped := range errorMappings {
		if errors.Is(err, sentinel) {
			outcome = mapped
			break
		}
	}

	var partial *domainErrors.PartialCommitError
	if errors.As(err, &partial) {
		outcome.Severity = SeverityError
		outcome.Message = "The sale was only partially recorded and needs manual review"
		outcome.Detail = fmt.Sprintf("invoice %d (%s) stopped during %s", partial.InvoiceID, partial.Reference, partial.Phase)
		return outcome
	}

	var rejection *domainErrors.StockRejectionError
	if errors.As(err, &rejection) {
		name := rejection.ProductName
		if name == "" {
			name = rejection.ProductID
		}
		outcome.Detail = fmt.Sprintf("%s: requested %d units, %d available", name, rejection.Requested, rejection.Available)
	}

	return outcome
}
