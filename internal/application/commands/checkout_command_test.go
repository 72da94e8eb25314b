package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaterm/pos-core/internal/application/ports"
	"github.com/pharmaterm/pos-core/internal/application/use_cases"
	domainErrors "github.com/pharmaterm/pos-core/internal/domain/errors"
	"github.com/pharmaterm/pos-core/internal/domain/pos"
	"github.com/pharmaterm/pos-core/internal/pkg/clock"
	"github.com/pharmaterm/pos-core/internal/pkg/generator"
	"github.com/pharmaterm/pos-core/internal/pkg/logger"
)

var handlerSettings = pos.Settings{CurrencySymbol: "$", OrgScope: "main-branch"}

// scriptedLedger answers the commit phases with whatever errors the test
// plants; everything else succeeds.
type scriptedLedger struct {
	createErr    error
	insertErr    error
	decrementErr error
	nextID       int64
}

func (l *scriptedLedger) CreateInvoice(context.Context, ports.InvoiceInput) (int64, error) {
	if l.createErr != nil {
		return 0, l.createErr
	}
	l.nextID++
	return l.nextID, nil
}

func (l *scriptedLedger) InsertSaleLines(context.Context, int64, []ports.SaleLineInput) error {
	return l.insertErr
}

func (l *scriptedLedger) DecrementStock(context.Context, string, int, int64) (int, error) {
	if l.decrementErr != nil {
		return 0, l.decrementErr
	}
	return 0, nil
}

func (l *scriptedLedger) GetProduct(context.Context, string) (*pos.Product, error) {
	return nil, domainErrors.ErrProductNotFound
}

func (l *scriptedLedger) Ping(context.Context) error {
	return nil
}

type memoryQueue struct {
	nextID  int64
	entries []*pos.CheckoutPayload
}

func (q *memoryQueue) Enqueue(_ context.Context, payload *pos.CheckoutPayload) (int64, error) {
	q.nextID++
	q.entries = append(q.entries, payload)
	return q.nextID, nil
}

func (q *memoryQueue) List(context.Context) ([]ports.PendingTransaction, error) {
	return nil, nil
}

func (q *memoryQueue) Remove(context.Context, int64) error { return nil }

func (q *memoryQueue) Clear(context.Context) error { return nil }

func (q *memoryQueue) Depth(context.Context) (int, error) {
	return len(q.entries), nil
}

func newHandlerFixture(ledger *scriptedLedger, queue *memoryQueue) *CheckoutHandler {
	log := logger.NewLoggerWithOutput(io.Discard)
	checkout := use_cases.NewCheckoutUseCase(ledger, queue, nil, handlerSettings, log)
	return NewCheckoutHandler(checkout, generator.NewReferenceGenerator("T01"), log)
}

func cartWithOneLine(t *testing.T) *pos.Cart {
	t.Helper()
	cart := pos.NewCart(handlerSettings, clock.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	p := pos.Product{ID: "A", Name: "Paracetamol 500mg", Stock: 100, ItemsPerBox: 1, UnitPriceCents: 5000, Mode: pos.SellBoth}
	require.NoError(t, cart.AddLine(p, pos.UnitItem))
	return cart
}

func TestCheckoutHandler_CommitClearsCart(t *testing.T) {
	handler := newHandlerFixture(&scriptedLedger{}, &memoryQueue{})
	cart := cartWithOneLine(t)

	receipt, err := handler.Handle(context.Background(), cart)

	require.NoError(t, err)
	assert.False(t, receipt.Deferred)
	assert.Equal(t, int64(1), receipt.InvoiceID)
	assert.Equal(t, 0, cart.Len())
}

func TestCheckoutHandler_DeferredClearsCart(t *testing.T) {
	ledger := &scriptedLedger{createErr: domainErrors.NewTransport("create_invoice", io.EOF)}
	queue := &memoryQueue{}
	handler := newHandlerFixture(ledger, queue)
	cart := cartWithOneLine(t)

	receipt, err := handler.Handle(context.Background(), cart)

	require.NoError(t, err)
	assert.True(t, receipt.Deferred)
	assert.Equal(t, 0, cart.Len())

	// the payload was captured exactly once before the cart was cleared
	require.Len(t, queue.entries, 1)
	assert.Equal(t, receipt.Reference, queue.entries[0].Reference)
	require.Len(t, queue.entries[0].Lines, 1)
}

func TestCheckoutHandler_RejectionKeepsCart(t *testing.T) {
	ledger := &scriptedLedger{createErr: errors.New("duplicate key value violates unique constraint")}
	queue := &memoryQueue{}
	handler := newHandlerFixture(ledger, queue)
	cart := cartWithOneLine(t)

	receipt, err := handler.Handle(context.Background(), cart)

	require.Error(t, err)
	assert.Nil(t, receipt)
	assert.Equal(t, 1, cart.Len())
	assert.Empty(t, queue.entries)
}

func TestCheckoutHandler_PartialCommitKeepsCart(t *testing.T) {
	ledger := &scriptedLedger{insertErr: errors.New("connection reset mid-statement")}
	handler := newHandlerFixture(ledger, &memoryQueue{})
	cart := cartWithOneLine(t)

	receipt, err := handler.Handle(context.Background(), cart)

	require.Error(t, err)
	assert.Nil(t, receipt)

	var partial *domainErrors.PartialCommitError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 1, cart.Len())
}

func TestCheckoutHandler_StockRejectionKeepsCart(t *testing.T) {
	ledger := &scriptedLedger{decrementErr: domainErrors.NewStockRejection("A", "Paracetamol 500mg", 1, 0)}
	handler := newHandlerFixture(ledger, &memoryQueue{})
	cart := cartWithOneLine(t)

	_, err := handler.Handle(context.Background(), cart)

	require.Error(t, err)
	assert.ErrorIs(t, err, domainErrors.ErrRejectedByLedger)
	assert.Equal(t, 1, cart.Len())
}

func TestCheckoutHandler_EmptyCart(t *testing.T) {
	handler := newHandlerFixture(&scriptedLedger{}, &memoryQueue{})
	cart := pos.NewCart(handlerSettings, clock.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))

	receipt, err := handler.Handle(context.Background(), cart)

	assert.ErrorIs(t, err, domainErrors.ErrEmptyCart)
	assert.Nil(t, receipt)
}

func TestFailureReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"partial commit",
			&domainErrors.PartialCommitError{InvoiceID: 1, Reference: "ref", Phase: "decrement_stock", Err: errors.New("reset")},
			"partial_commit",
		},
		{
			"partial commit wins over its transport cause",
			&domainErrors.PartialCommitError{InvoiceID: 1, Reference: "ref", Phase: "insert_sale_lines",
				Err: domainErrors.NewTransport("insert_sale_lines", io.EOF)},
			"partial_commit",
		},
		{
			"ledger stock rejection",
			domainErrors.NewStockRejection("A", "Paracetamol", 10, 3),
			"rejected_by_ledger",
		},
		{
			"transport",
			domainErrors.NewTransport("create_invoice", io.EOF),
			"transport",
		},
		{
			"validation",
			fmt.Errorf("checkout: %w", domainErrors.ErrEmptyCart),
			"validation",
		},
		{
			"anything else",
			errors.New("disk full"),
			"other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failureReason(tt.err))
		})
	}
}
