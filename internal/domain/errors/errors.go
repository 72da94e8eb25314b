package errors

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfStock      = errors.New("requested quantity exceeds known stock")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidDiscount = errors.New("discount cannot be negative")
	ErrInvalidPrice    = errors.New("price cannot be negative")
	ErrUnitNotSellable = errors.New("product is not sold in this unit")
	ErrDuplicateLine   = errors.New("cart already has a line for this product and unit")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrEmptyCart       = errors.New("cart has no lines")

	ErrProductNotFound = errors.New("product not found")

	ErrRejectedByLedger  = errors.New("operation rejected by ledger")
	ErrLedgerUnavailable = errors.New("ledger unreachable")
	ErrQueueCorrupted    = errors.New("pending transaction cannot be decoded")
)

// StockRejectionError carries enough detail to tell the operator which
// product and line caused a stock check to fail, whether the check was the
// cart's advisory one or the ledger's authoritative decrement.
type StockRejectionError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
	sentinel    error
}

func NewStockValidation(productID, productName string, requested, available int) *StockRejectionError {
	return &StockRejectionError{
		ProductID:   productID,
		ProductName: productName,
		Requested:   requested,
		Available:   available,
		sentinel:    ErrOutOfStock,
	}
}

func NewStockRejection(productID, productName string, requested, available int) *StockRejectionError {
	return &StockRejectionError{
		ProductID:   productID,
		ProductName: productName,
		Requested:   requested,
		Available:   available,
		sentinel:    ErrRejectedByLedger,
	}
}

func (e *StockRejectionError) Error() string {
	return fmt.Sprintf("%v: product %s requested %d units, %d available",
		e.sentinel, e.ProductID, e.Requested, e.Available)
}

func (e *StockRejectionError) Unwrap() error {
	return e.sentinel
}

// TransportError marks a ledger call that never produced an authoritative
// answer. Timeouts land here too: an ambiguous call is treated as failed,
// never as success.
type TransportError struct {
	Op  string
	Err error
}

func NewTransport(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrLedgerUnavailable, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrLedgerUnavailable
}

// PartialCommitError reports a commit that failed after the invoice was
// already created remotely. There is no compensating rollback; the invoice
// id is kept for manual reconciliation.
type PartialCommitError struct {
	InvoiceID int64
	Reference string
	Phase     string
	Err       error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("partial commit of %s (invoice %d) during %s: %v",
		e.Reference, e.InvoiceID, e.Phase, e.Err)
}

func (e *PartialCommitError) Unwrap() error {
	return e.Err
}

type QueueCorruptionError struct {
	OfflineID int64
	Err       error
}

func (e *QueueCorruptionError) Error() string {
	return fmt.Sprintf("%v: offline id %d: %v", ErrQueueCorrupted, e.OfflineID, e.Err)
}

func (e *QueueCorruptionError) Unwrap() error {
	return e.Err
}

func (e *QueueCorruptionError) Is(target error) bool {
	return target == ErrQueueCorrupted
}

// IsTransport reports whether the error means the ledger was unreachable,
// which is the only condition that routes a checkout to the offline queue.
func IsTransport(err error) bool {
	return errors.Is(err, ErrLedgerUnavailable)
}

// IsValidation reports whether the error was caught locally before any
// ledger call was constructed.
func IsValidation(err error) bool {
	return errors.Is(err, ErrOutOfStock) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidDiscount) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrUnitNotSellable) ||
		errors.Is(err, ErrDuplicateLine) ||
		errors.Is(err, ErrLineNotFound) ||
		errors.Is(err, ErrEmptyCart)
}
